// Package parser extracts image and link targets from Markdown-like text.
package parser

import (
	"regexp"
	"strings"
)

// DefaultFilename is used when a link has no usable final path segment.
const DefaultFilename = "image.png"

// linkRe matches ![alt](target) or [text](target). Exactly one of the two
// groups is set per match.
var linkRe = regexp.MustCompile(`!\[[^\]]*\]\((.*?)\)|\[[^\]]*\]\((.*?)\)`)

// ExtractLinks returns every http(s) target referenced by a Markdown image or
// link in text, left to right. Duplicates are kept.
func ExtractLinks(text string) []string {
	var out []string
	for _, m := range linkRe.FindAllStringSubmatch(text, -1) {
		target := m[1]
		if target == "" {
			target = m[2]
		}
		if target == "" || !strings.HasPrefix(target, "http") {
			continue
		}
		out = append(out, target)
	}
	return out
}

// ExtractAll runs ExtractLinks over each message and flattens the results,
// preserving message order.
func ExtractAll(messages []string) []string {
	var out []string
	for _, m := range messages {
		out = append(out, ExtractLinks(m)...)
	}
	return out
}

// Filename derives the stored filename for a link: the last path segment
// with any query string cut off.
func Filename(link string) string {
	name := link
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "?"); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return DefaultFilename
	}
	return name
}
