package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var (
	errMissingRegistrationURL = errors.New("api.registration_url is required")
	errInvalidWorkers         = errors.New("provisioning.workers must be positive")
	errInvalidTokenAttempts   = errors.New("provisioning.token_attempts must be positive")
	errInvalidMaxQuota        = errors.New("provisioning.max_quota must be positive")
	errSameAssetDirs          = errors.New("assets.uploads_dir and assets.tickets_dir must differ")
)

type AppConfig struct {
	API          *APIConfig          `mapstructure:"api"`
	Gin          *GinConfig          `mapstructure:"gin"`
	Postgres     *PostgresConfig     `mapstructure:"postgres"`
	Assets       *AssetsConfig       `mapstructure:"assets"`
	Provisioning *ProvisioningConfig `mapstructure:"provisioning"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	RegistrationURL    string        `mapstructure:"registration_url"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DB              string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// AssetsConfig describes the public file tree. UploadsDir and TicketsDir
// are relative to PublicRoot and double as the URL prefix of stored files.
type AssetsConfig struct {
	PublicRoot            string `mapstructure:"public_root"`
	UploadsDir            string `mapstructure:"uploads_dir"`
	TicketsDir            string `mapstructure:"tickets_dir"`
	MaxDesignBytes        int64  `mapstructure:"max_design_bytes"`
	CleanupOrphanedAssets bool   `mapstructure:"cleanup_orphaned_assets"`
}

type ProvisioningConfig struct {
	Workers       int           `mapstructure:"workers"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxQuota      int           `mapstructure:"max_quota"`
	TokenAttempts int           `mapstructure:"token_attempts"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:3000"})
	v.SetDefault("api.registration_url", "http://localhost:3000/register")
	v.SetDefault("api.shutdown_timeout", 10*time.Second)

	v.SetDefault("gin.mode", "debug")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db_name", "event_management")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 10)
	v.SetDefault("postgres.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("assets.public_root", "./public")
	v.SetDefault("assets.uploads_dir", "uploads")
	v.SetDefault("assets.tickets_dir", "tickets")
	v.SetDefault("assets.max_design_bytes", 10<<20)
	v.SetDefault("assets.cleanup_orphaned_assets", false)

	v.SetDefault("provisioning.workers", 4)
	v.SetDefault("provisioning.timeout", 2*time.Minute)
	v.SetDefault("provisioning.max_quota", 10000)
	v.SetDefault("provisioning.token_attempts", 3)
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the yml file at configPath and overlays environment variables,
// e.g. API_PORT overrides api.port.
func Load(configPath string) (*AppConfig, error) {
	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.API.RegistrationURL) == "" {
		return errMissingRegistrationURL
	}
	if c.Provisioning.Workers < 1 {
		return errInvalidWorkers
	}
	if c.Provisioning.TokenAttempts < 1 {
		return errInvalidTokenAttempts
	}
	if c.Provisioning.MaxQuota < 1 {
		return errInvalidMaxQuota
	}
	if c.Assets.UploadsDir == c.Assets.TicketsDir {
		return errSameAssetDirs
	}

	return nil
}

// Watch re-reads the config file whenever it changes on disk and hands the
// decoded result to onChange. Files that fail to decode are passed as an
// error instead.
func Watch(configPath string, onChange func(*AppConfig, error)) error {
	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(decode(v))
	})
	v.WatchConfig()

	return nil
}
