package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAppNamespace = "default-quiz-app"
	DefaultCatalogURL   = "http://127.0.0.1:8080"
	DefaultGA4Endpoint  = "https://www.google-analytics.com/mp/collect"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" validate:"omitempty,numeric"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic"`
		Format string `yaml:"format" validate:"omitempty,oneof=json pretty"`
	} `yaml:"log"`
	Services struct {
		// Credentials is a JSON blob of ServiceCredentials.
		Credentials         string `yaml:"credentials"`
		AppNamespace        string `yaml:"app_namespace" validate:"required"`
		InitialSessionToken string `yaml:"initial_session_token"`
	} `yaml:"services"`
	Catalog struct {
		BaseURL    string `yaml:"base_url" validate:"required,url"`
		Timeout    string `yaml:"timeout"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"catalog"`
	Redis struct {
		Addr     string `yaml:"addr" validate:"omitempty,hostname_port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db" validate:"gte=0"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" validate:"omitempty,url"`
	} `yaml:"postgres"`
	Mongo struct {
		URI          string `yaml:"uri" validate:"omitempty,url"`
		Database     string `yaml:"database" validate:"required_with=URI"`
		PollInterval string `yaml:"poll_interval"`
	} `yaml:"mongo"`
	Analytics struct {
		MeasurementID string `yaml:"measurement_id"`
		APISecret     string `yaml:"api_secret"`
		Endpoint      string `yaml:"endpoint" validate:"omitempty,url"`
		AMQPURL       string `yaml:"amqp_url" validate:"omitempty,url"`
		Exchange      string `yaml:"exchange" validate:"required_with=AMQPURL"`
		QueueSize     int    `yaml:"queue_size" validate:"gte=0"`
	} `yaml:"analytics"`
	Quiz struct {
		TTL string `yaml:"ttl"`
	} `yaml:"quiz"`

	// Warnings collects non-fatal problems found while loading.
	Warnings []string `yaml:"-"`
}

// ServiceCredentials is the shape of Services.Credentials.
type ServiceCredentials struct {
	MeasurementID string `json:"measurementId"`
	APISecret     string `json:"apiSecret"`
	MongoURI      string `json:"mongoUri"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Log.Level = "info"
	cfg.Log.Format = "pretty"
	cfg.Services.AppNamespace = DefaultAppNamespace
	cfg.Catalog.BaseURL = DefaultCatalogURL
	cfg.Catalog.Timeout = "5s"
	cfg.Redis.TTL = "10m"
	cfg.Mongo.Database = "quizapp"
	cfg.Mongo.PollInterval = "2s"
	cfg.Analytics.Endpoint = DefaultGA4Endpoint
	cfg.Analytics.Exchange = "quiz.analytics"
	cfg.Analytics.QueueSize = 256
	cfg.Quiz.TTL = "10m"
	return cfg
}

// Load reads YAML config from path on top of Default, then applies .env and
// environment overrides and validates the result. A missing file is not an
// error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("config file %s not found, using defaults", path))
		default:
			return cfg, err
		}
	}

	applyEnv(&cfg)
	cfg.applyCredentials()

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	override(&cfg.Server.Port, "PORT")
	override(&cfg.Log.Level, "LOG_LEVEL")
	override(&cfg.Log.Format, "LOG_FORMAT")
	override(&cfg.Services.AppNamespace, "QUIZ_APP_ID")
	override(&cfg.Services.InitialSessionToken, "QUIZ_INITIAL_AUTH_TOKEN")
	override(&cfg.Services.Credentials, "QUIZ_SERVICE_CREDENTIALS")
	override(&cfg.Catalog.BaseURL, "CATALOG_URL")
	override(&cfg.Redis.Addr, "REDIS_ADDR")
	override(&cfg.Postgres.URL, "POSTGRES_URL")
	override(&cfg.Mongo.URI, "MONGO_URI")
	override(&cfg.Analytics.AMQPURL, "AMQP_URL")
	if v := os.Getenv("ANALYTICS_QUEUE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analytics.QueueSize = n
		}
	}
}

func override(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// applyCredentials merges Services.Credentials into the analytics and mongo
// sections. A malformed blob is reported as a warning and ignored.
func (c *Config) applyCredentials() {
	raw := strings.TrimSpace(c.Services.Credentials)
	if raw == "" {
		return
	}
	var creds ServiceCredentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		c.Warnings = append(c.Warnings, fmt.Sprintf("invalid service credentials, falling back to configured values: %v", err))
		return
	}
	if creds.MeasurementID != "" {
		c.Analytics.MeasurementID = creds.MeasurementID
	}
	if creds.APISecret != "" {
		c.Analytics.APISecret = creds.APISecret
	}
	if creds.MongoURI != "" {
		c.Mongo.URI = creds.MongoURI
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
	trans        ut.Translator
)

func setupValidator() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, trans)
}

// Validate checks cfg and returns one error listing every invalid field.
func Validate(cfg Config) error {
	validateOnce.Do(setupValidator)

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Translate(trans)))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
