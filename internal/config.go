package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/imgbackup/internal/storage"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Storage drivers.
const (
	DriverFS    = "fs"
	DriverHTTP  = "http"
	DriverMinio = "minio"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Catalog CatalogConfig     `yaml:"catalog"`
	Storage StorageConfig     `yaml:"storage"`
	Fetch   FetchConfig       `yaml:"fetch"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Fetch.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CatalogConfig locates the character cards and their SQLite index.
type CatalogConfig struct {
	CardsDir   string `yaml:"cards_dir"`
	SQLitePath string `yaml:"sqlite_path"`
	Watch      bool   `yaml:"watch"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CardsDir, validation.Required),
		validation.Field(&c.SQLitePath, validation.Required),
	)
}

// StorageConfig selects and configures the image store.
type StorageConfig struct {
	Driver    string       `yaml:"driver"`
	Namespace string       `yaml:"namespace"`
	FS        FSConfig     `yaml:"fs"`
	HTTP      RemoteConfig `yaml:"http"`
	Minio     MinioConfig  `yaml:"minio"`
}

// Validate validates the storage configuration and the selected driver.
func (c *StorageConfig) Validate() error {
	if c.Namespace == "" {
		c.Namespace = storage.DefaultNamespace
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(DriverFS, DriverHTTP, DriverMinio)),
	); err != nil {
		return err
	}
	switch c.Driver {
	case DriverHTTP:
		return c.HTTP.Validate()
	case DriverMinio:
		return c.Minio.Validate()
	default:
		return c.FS.Validate()
	}
}

// FSConfig is the local folder store.
type FSConfig struct {
	Root string `yaml:"root"`
}

// Validate validates the FS configuration.
func (c *FSConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	)
}

// RemoteConfig points at a remote file API.
//
// Mode selects the upload encoding:
//   - "multipart" (default): raw bytes in a multipart form, folder in field "path".
//   - "json": base64 bytes in a JSON envelope with the full destination path.
type RemoteConfig struct {
	BaseURL string `yaml:"base_url"`
	Mode    string `yaml:"mode"`
	Token   string `yaml:"token"`
}

// Validate validates the remote configuration.
func (c *RemoteConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = storage.ModeMultipart
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.Mode, validation.In(storage.ModeMultipart, storage.ModeJSON)),
	)
}

// MinioConfig configures an S3-compatible bucket.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Secure    bool   `yaml:"secure"`
}

// Validate validates the MinIO configuration.
func (c *MinioConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Endpoint, validation.Required),
		validation.Field(&c.Bucket, validation.Required),
		validation.Field(&c.AccessKey, validation.Required),
		validation.Field(&c.SecretKey, validation.Required),
	)
}

// FetchConfig bounds remote downloads.
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"max_bytes"`
	UserAgent string        `yaml:"user_agent"`
}

// Validate validates the fetch configuration.
func (c *FetchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxBytes, validation.Min(int64(0))),
	)
}

// AuthConfig holds authentication configuration for the HTTP API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Catalog: CatalogConfig{
			CardsDir:   "./characters",
			SQLitePath: "./imgbackup.db",
			Watch:      true,
		},
		Storage: StorageConfig{
			Driver:    DriverFS,
			Namespace: storage.DefaultNamespace,
			FS: FSConfig{
				Root: "./data",
			},
			HTTP: RemoteConfig{
				Mode: storage.ModeMultipart,
			},
		},
		Fetch: FetchConfig{
			Timeout:   30 * time.Second,
			MaxBytes:  50 << 20,
			UserAgent: "imgbackup/1.0",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
