package catalog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeCard(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDecodeCard_Layouts(t *testing.T) {
	cases := []struct {
		path, body string
		name       string
		msgs       []string
	}{
		{"a.json", `{"name":"Alice","data":{"first_mes":"![p](http://x/1.png)"}}`, "Alice", []string{"![p](http://x/1.png)"}},
		{"b.json", `{"name":"Bob","first_mes":["one","two"]}`, "Bob", []string{"one", "two"}},
		{"c.yaml", "data:\n  name: Carol\n  first_mes: hello\n", "Carol", []string{"hello"}},
		{"d.yml", "name: Dan\n", "Dan", nil},
		{"e.json", `{}`, "Unknown", nil},
	}
	for _, tc := range cases {
		c, err := DecodeCard(tc.path, []byte(tc.body))
		if err != nil {
			t.Fatalf("DecodeCard(%s): %v", tc.path, err)
		}
		if c.DisplayName() != tc.name {
			t.Errorf("%s: name = %q, want %q", tc.path, c.DisplayName(), tc.name)
		}
		if len(tc.msgs) == 0 && len(c.Data.FirstMes) == 0 {
			continue
		}
		if !reflect.DeepEqual([]string(c.Data.FirstMes), tc.msgs) {
			t.Errorf("%s: messages = %#v, want %#v", tc.path, c.Data.FirstMes, tc.msgs)
		}
	}
}

func TestDecodeCard_Unsupported(t *testing.T) {
	if _, err := DecodeCard("card.png", []byte("x")); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestSync_IndexesAndRemoves(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()
	writeCard(t, dir, "alice.json", `{"name":"Alice","data":{"first_mes":["![a](http://h/a.png)"]}}`)
	writeCard(t, dir, "sub/bob.yaml", "name: Bob\ndata:\n  first_mes: \"[b](https://h/b.jpg)\"\n")
	writeCard(t, dir, "broken.json", `{"name":`)
	writeCard(t, dir, "notes.txt", "ignored")

	if err := Sync(db, dir, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	names, err := db.Names(context.Background())
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	if want := []string{"Alice", "Bob"}; !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}

	chars, err := db.Characters(context.Background())
	if err != nil {
		t.Fatalf("Characters: %v", err)
	}
	if len(chars) != 2 || chars[1].Data.FirstMes[0] != "[b](https://h/b.jpg)" {
		t.Errorf("characters = %+v", chars)
	}

	if err := os.Remove(filepath.Join(dir, "alice.json")); err != nil {
		t.Fatal(err)
	}
	if err := Sync(db, dir, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	names, _ = db.Names(context.Background())
	if want := []string{"Bob"}; !reflect.DeepEqual(names, want) {
		t.Errorf("names after removal = %v, want %v", names, want)
	}
}

func TestSync_UpdatesChangedCard(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()
	writeCard(t, dir, "alice.json", `{"name":"Alice","data":{"first_mes":"v1"}}`)
	_ = Sync(db, dir, quietLogger())
	writeCard(t, dir, "alice.json", `{"name":"Alice","data":{"first_mes":"v2"}}`)
	_ = Sync(db, dir, quietLogger())

	chars, _ := db.Characters(context.Background())
	if len(chars) != 1 || chars[0].Data.FirstMes[0] != "v2" {
		t.Errorf("characters = %+v", chars)
	}
}

func TestNames_EmptyCatalog(t *testing.T) {
	db := testDB(t)
	names, err := db.Names(context.Background())
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	if names == nil || len(names) != 0 {
		t.Errorf("names = %#v, want empty non-nil", names)
	}
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_NewAndRemovedCards(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var kinds []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, db, dir, quietLogger(), func(kind, _ string) {
			mu.Lock()
			kinds = append(kinds, kind)
			mu.Unlock()
		})
	}()
	time.Sleep(100 * time.Millisecond)

	writeCard(t, dir, "eve.json", `{"name":"Eve","data":{"first_mes":"hi"}}`)
	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		names, _ := db.Names(context.Background())
		return len(names) == 1 && names[0] == "Eve"
	}, "new card was not indexed")

	_ = os.Remove(filepath.Join(dir, "eve.json"))
	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		names, _ := db.Names(context.Background())
		return len(names) == 0
	}, "removed card still indexed")

	cancel()
	<-done
	mu.Lock()
	defer mu.Unlock()
	if len(kinds) == 0 {
		t.Error("expected watcher callbacks")
	}
}
