package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const envPrefix = "AGRIMARKET_"

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
	Seed     bool   `yaml:"seed"` // demo data on an empty database
}

// WebConfig web server configuration
type WebConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	PortRetries int    `yaml:"port_retries"`
	Secret      string `yaml:"secret"`
	SessionAge  int    `yaml:"session_age"` // seconds
	BodyLimit   string `yaml:"body_limit"`
}

// DBConfig database configuration
type DBConfig struct {
	Type     string `yaml:"type"` // postgres | sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// LogConfig logger configuration
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"` // relative names live under <workdir>/logs
}

// UploadConfig managed upload directory
type UploadConfig struct {
	Dir     string `yaml:"dir"`
	MaxSize int64  `yaml:"max_size"` // bytes
}

// JobsConfig scheduled jobs
type JobsConfig struct {
	SweepSpec  string `yaml:"sweep_spec"`
	SweepGrace int    `yaml:"sweep_grace"` // seconds
}

type AppConfig struct {
	System   SysConfig    `yaml:"system"`
	Web      WebConfig    `yaml:"web"`
	Database DBConfig     `yaml:"database"`
	Logger   LogConfig    `yaml:"logger"`
	Upload   UploadConfig `yaml:"upload"`
	Jobs     JobsConfig   `yaml:"jobs"`
}

// GetUploadDir returns the managed upload directory, relative paths resolved against the workdir.
func (c *AppConfig) GetUploadDir() string {
	if filepath.IsAbs(c.Upload.Dir) {
		return c.Upload.Dir
	}
	return filepath.Join(c.System.Workdir, c.Upload.Dir)
}

func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

// GetLogFile returns the rotating log file path.
func (c *AppConfig) GetLogFile() string {
	name := c.Logger.Filename
	if name == "" {
		name = c.System.Appid + ".log"
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.GetLogDir(), name)
}

// GetDatabaseFile returns the sqlite database path.
func (c *AppConfig) GetDatabaseFile() string {
	return filepath.Join(c.System.Workdir, c.Database.Name+".db")
}

// DefaultAppConfig returns the built-in configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "agrimarket",
			Location: "Asia/Kolkata",
			Workdir:  "./data",
			Seed:     true,
		},
		Web: WebConfig{
			Host:        "0.0.0.0",
			Port:        4001,
			PortRetries: 10,
			Secret:      "agri-tech-secret",
			SessionAge:  60 * 60 * 24,
			BodyLimit:   "12M",
		},
		Database: DBConfig{
			Type:     "sqlite",
			Host:     "127.0.0.1",
			Port:     5432,
			Name:     "agrimarket",
			User:     "postgres",
			Passwd:   "postgres",
			MaxConn:  50,
			IdleConn: 10,
		},
		Logger: LogConfig{
			Mode:     "development",
			Filename: "agrimarket.log",
		},
		Upload: UploadConfig{
			Dir:     "uploads",
			MaxSize: 5 * 1024 * 1024,
		},
		Jobs: JobsConfig{
			SweepSpec:  "@every 1h",
			SweepGrace: 3600,
		},
	}
}

// LoadConfig reads the YAML file (if any), then applies .env and environment overrides.
// A missing file is not an error: defaults are used.
func LoadConfig(cfile string) (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := DefaultAppConfig()
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrapf(err, "parse config %s", cfile)
			}
		case os.IsNotExist(err):
		default:
			return nil, errors.Wrapf(err, "read config %s", cfile)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	setString(&cfg.System.Workdir, "SYSTEM_WORKDIR")
	setString(&cfg.System.Location, "SYSTEM_LOCATION")
	setBool(&cfg.System.Debug, "SYSTEM_DEBUG")
	setBool(&cfg.System.Seed, "SYSTEM_SEED")

	setString(&cfg.Web.Host, "WEB_HOST")
	setInt(&cfg.Web.Port, "WEB_PORT")
	setInt(&cfg.Web.PortRetries, "WEB_PORT_RETRIES")
	setString(&cfg.Web.Secret, "WEB_SECRET")

	setString(&cfg.Database.Type, "DB_TYPE")
	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Passwd, "DB_PWD")
	setBool(&cfg.Database.Debug, "DB_DEBUG")

	setString(&cfg.Logger.Mode, "LOGGER_MODE")
	setBool(&cfg.Logger.FileEnable, "LOGGER_FILE_ENABLE")
	setString(&cfg.Logger.Filename, "LOGGER_FILENAME")

	setString(&cfg.Upload.Dir, "UPLOAD_DIR")
	if v, ok := lookup("UPLOAD_MAX_SIZE"); ok {
		if n, err := cast.ToInt64E(v); err == nil && n > 0 {
			cfg.Upload.MaxSize = n
		}
	}

	setString(&cfg.Jobs.SweepSpec, "JOBS_SWEEP_SPEC")
	setInt(&cfg.Jobs.SweepGrace, "JOBS_SWEEP_GRACE")

	// bare PORT and SESSION_SECRET are honoured as well
	if v := os.Getenv("PORT"); v != "" {
		if n, err := cast.ToIntE(v); err == nil {
			cfg.Web.Port = n
		}
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.Web.Secret = v
	}
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func setString(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

func setInt(dst *int, name string) {
	if v, ok := lookup(name); ok {
		if n, err := cast.ToIntE(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, name string) {
	if v, ok := lookup(name); ok {
		if b, err := cast.ToBoolE(v); err == nil {
			*dst = b
		}
	}
}
