package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for tclock.
type Config struct {
	KioskID    string           `toml:"kiosk_id"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Soap       SoapConfig       `toml:"soap"`
	Storage    StorageConfig    `toml:"storage"`
	Photos     PhotoConfig      `toml:"photos"`
	Encryption EncryptionConfig `toml:"encryption"`
	Agent      AgentConfig      `toml:"agent"`
}

// SoapConfig holds the remote time-tracking service settings. The
// credentials ride in a header on every call.
type SoapConfig struct {
	Endpoint       string `toml:"endpoint"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	ClientID       int    `toml:"client_id"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// StorageConfig represents configuration for the offline punch queue.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StorageConfig struct {
	Type string `toml:"type"` // "file", "sqlite", or "memory"

	// File-specific fields (only used when Type == "file")
	QueuePath string `toml:"queue_path,omitempty"`

	// SQLite-specific fields (only used when Type == "sqlite")
	DataDir string `toml:"data_dir,omitempty"`

	RetentionDays     int `toml:"retention_days"`
	MaxOfflineRecords int `toml:"max_offline_records"`
}

// PhotoConfig represents configuration for the punch photo backup store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type PhotoConfig struct {
	Type string `toml:"type"` // "filesystem" or "s3"

	// Filesystem-specific fields (only used when Type == "filesystem")
	Dir     string `toml:"dir,omitempty"`
	Encrypt bool   `toml:"encrypt,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket string `toml:"s3_bucket,omitempty"`
	S3Prefix string `toml:"s3_prefix,omitempty"`
	S3Region string `toml:"s3_region,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used for photo
// backups at rest.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// AgentConfig holds the background task intervals for the long-running
// kiosk agent, in seconds.
type AgentConfig struct {
	ReconnectIntervalSeconds int `toml:"reconnect_interval_seconds"`
	SyncIntervalSeconds      int `toml:"sync_interval_seconds"`
	CleanupIntervalSeconds   int `toml:"cleanup_interval_seconds"`
}

// Defaults applied when a field is zero.
const (
	DefaultTimeoutSeconds    = 30
	DefaultRetentionDays     = 30
	DefaultMaxOfflineRecords = 1000
	DefaultReconnectSeconds  = 60
	DefaultSyncSeconds       = 300
	DefaultCleanupSeconds    = 86400
)

// NewConfig creates a new Config with the provided values and default paths.
func NewConfig(kioskID, baseDir string) *Config {
	return &Config{
		KioskID: kioskID,
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Soap: SoapConfig{
			Endpoint:       "http://msiwebtrax.com/",
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Storage: StorageConfig{
			Type:              "file",
			QueuePath:         filepath.Join(baseDir, "data", "punches.json"),
			RetentionDays:     DefaultRetentionDays,
			MaxOfflineRecords: DefaultMaxOfflineRecords,
		},
		Photos: PhotoConfig{
			Type: "filesystem",
			Dir:  filepath.Join(baseDir, "photos"),
		},
		Encryption: EncryptionConfig{
			PublicKeyPath:  filepath.Join(baseDir, "keys", "tclock.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "tclock.key"),
		},
		Agent: AgentConfig{
			ReconnectIntervalSeconds: DefaultReconnectSeconds,
			SyncIntervalSeconds:      DefaultSyncSeconds,
			CleanupIntervalSeconds:   DefaultCleanupSeconds,
		},
	}
}

// ApplyDefaults fills zero-valued interval and limit fields so a
// hand-trimmed config file keeps working.
func (c *Config) ApplyDefaults() {
	if c.Soap.TimeoutSeconds <= 0 {
		c.Soap.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.Storage.RetentionDays <= 0 {
		c.Storage.RetentionDays = DefaultRetentionDays
	}
	if c.Storage.MaxOfflineRecords <= 0 {
		c.Storage.MaxOfflineRecords = DefaultMaxOfflineRecords
	}
	if c.Agent.ReconnectIntervalSeconds <= 0 {
		c.Agent.ReconnectIntervalSeconds = DefaultReconnectSeconds
	}
	if c.Agent.SyncIntervalSeconds <= 0 {
		c.Agent.SyncIntervalSeconds = DefaultSyncSeconds
	}
	if c.Agent.CleanupIntervalSeconds <= 0 {
		c.Agent.CleanupIntervalSeconds = DefaultCleanupSeconds
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
