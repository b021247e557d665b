package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	OAuth    OAuthConfig    `yaml:"oauth"`
	Email    EmailConfig    `yaml:"email"`
	Storage  StorageConfig  `yaml:"storage"`
	Upload   UploadConfig   `yaml:"upload"`
	Redis    RedisConfig    `yaml:"redis"`
	Google   GoogleConfig   `yaml:"google"`
	OCR      OCRConfig      `yaml:"ocr"`
	Regions  RegionsConfig  `yaml:"regions"`
	Workers  WorkersConfig  `yaml:"workers"`

	FirstAdminEmail    string `yaml:"first_admin_email"`
	FirstAdminPassword string `yaml:"first_admin_password"`
}

type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	Env         string   `yaml:"env"`
	CORSOrigins []string `yaml:"cors_origins"`
	PublicURL   string   `yaml:"public_url"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // postgres, mysql, sqlite
	DSN    string `yaml:"url"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	TTL        int    `yaml:"ttl"`         // access token, minutes
	RefreshTTL int    `yaml:"refresh_ttl"` // hours
}

type OAuthConfig struct {
	Google struct {
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
		RedirectURL  string `yaml:"redirect_url"`
	} `yaml:"google"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUsername string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
	FromName     string `yaml:"from_name"`
}

type StorageConfig struct {
	Type       string `yaml:"type"`      // local, s3
	BasePath   string `yaml:"base_path"` // local only
	BaseURL    string `yaml:"base_url"`
	Bucket     string `yaml:"bucket"`
	Region     string `yaml:"region"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Endpoint   string `yaml:"endpoint"`
	UseSSL     bool   `yaml:"use_ssl"`
	PathStyle  bool   `yaml:"path_style"`
	PublicRead bool   `yaml:"public_read"`
}

type UploadConfig struct {
	MaxSize      int64    `yaml:"max_size"`
	AllowedTypes []string `yaml:"allowed_types"`
	ImageQuality int      `yaml:"image_quality"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type GoogleConfig struct {
	CredentialsFile     string `yaml:"credentials_file"`
	CredentialsJSON     string `yaml:"credentials_json"`
	ItikafSpreadsheetID string `yaml:"itikaf_spreadsheet_id"`
	FinanceSpreadsheet  string `yaml:"finance_spreadsheet_id"`
}

func (g GoogleConfig) SheetsEnabled() bool {
	return g.CredentialsFile != "" || g.CredentialsJSON != ""
}

type OCRConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Language string `yaml:"language"`
}

type RegionsConfig struct {
	DatasetPath string `yaml:"dataset_path"`
}

type WorkersConfig struct {
	JobCloseInterval   time.Duration `yaml:"job_close_interval"`
	ItikafSyncInterval time.Duration `yaml:"itikaf_sync_interval"`
}

// Defaults returns a config that runs locally without any external service.
func Defaults() *Config {
	cfg := &Config{}
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 4000
	cfg.Server.Env = "development"
	cfg.Server.CORSOrigins = []string{"*"}
	cfg.Database.Driver = "postgres"
	cfg.JWT.TTL = 60
	cfg.JWT.RefreshTTL = 24 * 30
	cfg.Email.SMTPPort = 587
	cfg.Email.FromEmail = "no-reply@portal.local"
	cfg.Email.FromName = "Portal"
	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./uploads"
	cfg.Storage.BaseURL = "/api/files"
	cfg.Upload.MaxSize = 10 * 1024 * 1024
	cfg.Upload.AllowedTypes = []string{
		"image/jpeg", "image/png", "image/webp", "application/pdf",
	}
	cfg.Upload.ImageQuality = 85
	cfg.OCR.Language = "ind"
	cfg.Workers.JobCloseInterval = time.Hour
	cfg.Workers.ItikafSyncInterval = 15 * time.Minute
	return cfg
}

// Load reads .env (if present), the YAML file at CONFIG_PATH (if present) and then
// applies environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	if err := loadFile(configPath, cfg); err != nil {
		return nil, err
	}

	applyEnv(cfg)

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required (JWT_SECRET)")
	}
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database url is required (DATABASE_URL)")
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open config file at %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config file at %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Env, "SERVER_ENV")
	setString(&cfg.Server.Host, "SERVER_HOST")
	setInt(&cfg.Server.Port, "SERVER_PORT")
	setString(&cfg.Server.PublicURL, "PUBLIC_URL")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = strings.Split(v, ",")
	}

	setString(&cfg.Database.DSN, "DATABASE_URL")
	setString(&cfg.Database.Driver, "DATABASE_DRIVER")

	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setInt(&cfg.JWT.TTL, "JWT_TTL")

	setString(&cfg.OAuth.Google.ClientID, "GOOGLE_CLIENT_ID")
	setString(&cfg.OAuth.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&cfg.OAuth.Google.RedirectURL, "GOOGLE_REDIRECT_URL")

	setString(&cfg.Email.SMTPHost, "SMTP_HOST")
	setInt(&cfg.Email.SMTPPort, "SMTP_PORT")
	setString(&cfg.Email.SMTPUsername, "SMTP_USER")
	setString(&cfg.Email.SMTPPassword, "SMTP_PASSWORD")
	setString(&cfg.Email.FromEmail, "SMTP_FROM")

	setString(&cfg.Storage.Type, "STORAGE_TYPE")
	setString(&cfg.Storage.Bucket, "STORAGE_BUCKET")
	setString(&cfg.Storage.Endpoint, "STORAGE_ENDPOINT")
	setString(&cfg.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "STORAGE_SECRET_KEY")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")

	setString(&cfg.Google.CredentialsFile, "GOOGLE_CREDENTIALS_FILE")
	setString(&cfg.Google.CredentialsJSON, "GOOGLE_CREDENTIALS_JSON")
	setString(&cfg.Google.ItikafSpreadsheetID, "ITIKAF_SPREADSHEET_ID")
	setString(&cfg.Google.FinanceSpreadsheet, "FINANCE_SPREADSHEET_ID")

	setString(&cfg.OCR.Endpoint, "OCR_ENDPOINT")
	setString(&cfg.OCR.APIKey, "OCR_API_KEY")

	setString(&cfg.Regions.DatasetPath, "REGIONS_DATASET")

	setString(&cfg.FirstAdminEmail, "FIRST_ADMIN_EMAIL")
	setString(&cfg.FirstAdminPassword, "FIRST_ADMIN_PASSWORD")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
