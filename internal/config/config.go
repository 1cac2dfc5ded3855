// Package config loads the client's settings from defaults, a config file,
// SECUREPASS_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SECUREPASS_SERVER_URL.
const EnvPrefix = "SECUREPASS"

// Options holds the configuration values for the client.
type Options struct {
	// ServerURL is the base address of the vault service.
	ServerURL string `mapstructure:"server_url"`

	// Username is the account to sign in as and the owner label for exports.
	Username string `mapstructure:"username"`

	// CAFile is an optional PEM bundle to trust for HTTPS.
	CAFile string `mapstructure:"ca_file"`

	// Timeout bounds every request to the service.
	Timeout time.Duration `mapstructure:"timeout"`

	// PasswordLength is the default length of generated passwords.
	PasswordLength int `mapstructure:"password_length"`

	// AlertTTL is how long dashboard alerts stay visible.
	AlertTTL time.Duration `mapstructure:"alert_ttl"`

	// ExportDir is where recovery keys are saved. Empty means the download directory.
	ExportDir string `mapstructure:"export_dir"`

	// LogLevel is a zap level name.
	LogLevel string `mapstructure:"log_level"`

	// LogFile receives logs. The terminal UI owns stderr, so it defaults to a file.
	LogFile string `mapstructure:"log_file"`

	// ConfigFile is the file the values were read from, if any.
	ConfigFile string `mapstructure:"-"`
}

// Defaults returns the built-in values.
func Defaults() map[string]any {
	return map[string]any{
		"server_url":      "http://localhost:5000",
		"username":        "",
		"ca_file":         "",
		"timeout":         10 * time.Second,
		"password_length": 16,
		"alert_ttl":       5 * time.Second,
		"export_dir":      "",
		"log_level":       "info",
		"log_file":        filepath.Join(xdg.StateHome, "securepass", "client.log"),
	}
}

// flagNames maps config keys to the flag that overrides them.
var flagNames = map[string]string{
	"server_url":      "server",
	"username":        "user",
	"ca_file":         "ca-file",
	"timeout":         "timeout",
	"password_length": "length",
	"alert_ttl":       "alert-ttl",
	"export_dir":      "export-dir",
	"log_level":       "log-level",
	"log_file":        "log-file",
}

// RegisterFlags adds the override flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String("config", "", "path to config file (json or yaml)")
	fs.StringP("server", "s", d["server_url"].(string), "vault service address")
	fs.StringP("user", "u", "", "account name")
	fs.String("ca-file", "", "PEM file with extra CA certificates")
	fs.Duration("timeout", d["timeout"].(time.Duration), "request timeout")
	fs.Int("length", d["password_length"].(int), "generated password length")
	fs.Duration("alert-ttl", d["alert_ttl"].(time.Duration), "how long alerts stay visible")
	fs.String("export-dir", "", "directory for exported recovery keys")
	fs.String("log-level", d["log_level"].(string), "log level (debug, info, warn, error)")
	fs.String("log-file", d["log_file"].(string), "log file path")
}

// Load resolves Options. Only flags the user actually set override the
// file and environment; fs may be nil.
func Load(fs *pflag.FlagSet) (*Options, error) {
	v := viper.New()
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName("securepass")
	v.AddConfigPath(filepath.Join(xdg.ConfigHome, "securepass"))
	v.AddConfigPath(".")

	var explicit string
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			explicit = f.Value.String()
		}
	}
	if explicit != "" {
		v.SetConfigFile(explicit)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error while reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for key, name := range flagNames {
			f := fs.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	opts := &Options{}
	if err := v.Unmarshal(opts); err != nil {
		return nil, fmt.Errorf("error while parsing config: %w", err)
	}
	opts.ConfigFile = v.ConfigFileUsed()
	opts.ServerURL = strings.TrimRight(strings.TrimSpace(opts.ServerURL), "/")

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Validate rejects values the client cannot run with.
func (o *Options) Validate() error {
	switch {
	case o.ServerURL == "":
		return errors.New("server_url must not be empty")
	case !strings.HasPrefix(o.ServerURL, "http://") && !strings.HasPrefix(o.ServerURL, "https://"):
		return fmt.Errorf("server_url %q must start with http:// or https://", o.ServerURL)
	case o.Timeout <= 0:
		return errors.New("timeout must be positive")
	case o.PasswordLength <= 0:
		return errors.New("password_length must be positive")
	}
	return nil
}
