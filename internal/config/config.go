package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	StoreDriverDynamoDB = "dynamodb"
	StoreDriverSQLite   = "sqlite"
)

// Config holds all configuration values. Every key can be set through the
// environment (see .env.example) or a config.yaml in ./ or ./config.
type Config struct {
	Env      string `mapstructure:"APP_ENV"`
	Port     int    `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	StoreDriver string `mapstructure:"STORE_DRIVER"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`

	AWSRegion            string `mapstructure:"AWS_REGION"`
	AWSAccessKeyID       string `mapstructure:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey   string `mapstructure:"AWS_SECRET_ACCESS_KEY"`
	DynamoDBEndpoint     string `mapstructure:"DYNAMODB_ENDPOINT"`
	ServiceRequestsTable string `mapstructure:"SERVICE_REQUESTS_TABLE"`
	LeadsTable           string `mapstructure:"LEADS_TABLE"`
	QuotesTable          string `mapstructure:"QUOTES_TABLE"`
	AppointmentsTable    string `mapstructure:"APPOINTMENTS_TABLE"`
	ReferralFeesTable    string `mapstructure:"REFERRAL_FEES_TABLE"`
	ProfilesTable        string `mapstructure:"PROFILES_TABLE"`

	LockDuration             time.Duration `mapstructure:"LOCK_DURATION"`
	ConfirmationTimerMinutes int           `mapstructure:"CONFIRMATION_TIMER_MINUTES"`
	ReferralFeePercent       string        `mapstructure:"REFERRAL_FEE_PERCENT"`

	SweepSchedule  string        `mapstructure:"SWEEP_SCHEDULE"`
	SweepBatchSize int           `mapstructure:"SWEEP_BATCH_SIZE"`
	SweepLockTTL   time.Duration `mapstructure:"SWEEP_LOCK_TTL"`
	SweepToken     string        `mapstructure:"SWEEP_TOKEN"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	NotificationsEnabled bool   `mapstructure:"NOTIFICATIONS_ENABLED"`
	NotifierConcurrency  int    `mapstructure:"NOTIFIER_CONCURRENCY"`
	SMTPHost             string `mapstructure:"SMTP_HOST"`
	SMTPPort             int    `mapstructure:"SMTP_PORT"`
	SMTPUsername         string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword         string `mapstructure:"SMTP_PASSWORD"`
	MailFrom             string `mapstructure:"MAIL_FROM"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	MercadoPagoAccessToken string `mapstructure:"MERCADOPAGO_ACCESS_TOKEN"`
	MercadoPagoTestEmail   string `mapstructure:"MERCADOPAGO_TEST_PAYER_EMAIL"`
	PaymentGatewayMock     bool   `mapstructure:"PAYMENT_GATEWAY_MOCK"`
}

var defaults = map[string]any{
	"APP_ENV":   "development",
	"PORT":      8080,
	"LOG_LEVEL": "info",

	"STORE_DRIVER": StoreDriverDynamoDB,
	"SQLITE_PATH":  "automarket.db",

	"AWS_REGION":             "us-east-1",
	"AWS_ACCESS_KEY_ID":      "local",
	"AWS_SECRET_ACCESS_KEY":  "local",
	"DYNAMODB_ENDPOINT":      "",
	"SERVICE_REQUESTS_TABLE": "service_requests",
	"LEADS_TABLE":            "leads",
	"QUOTES_TABLE":           "quotes",
	"APPOINTMENTS_TABLE":     "appointments",
	"REFERRAL_FEES_TABLE":    "referral_fees",
	"PROFILES_TABLE":         "profiles",

	"LOCK_DURATION":              "24h",
	"CONFIRMATION_TIMER_MINUTES": 30,
	"REFERRAL_FEE_PERCENT":       "0",

	"SWEEP_SCHEDULE":   "@every 1m",
	"SWEEP_BATCH_SIZE": 100,
	"SWEEP_LOCK_TTL":   "50s",
	"SWEEP_TOKEN":      "",

	"REDIS_ADDR":     "localhost:6379",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,

	"NOTIFICATIONS_ENABLED": true,
	"NOTIFIER_CONCURRENCY":  10,
	"SMTP_HOST":             "",
	"SMTP_PORT":             587,
	"SMTP_USERNAME":         "",
	"SMTP_PASSWORD":         "",
	"MAIL_FROM":             "no-reply@automarket.local",

	"JWT_SECRET": "",

	"MERCADOPAGO_ACCESS_TOKEN":     "",
	"MERCADOPAGO_TEST_PAYER_EMAIL": "",
	"PAYMENT_GATEWAY_MOCK":         false,
}

// Load reads configuration from env and an optional config file.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch strings.ToLower(c.StoreDriver) {
	case StoreDriverDynamoDB, StoreDriverSQLite:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.LockDuration <= 0 {
		return fmt.Errorf("LOCK_DURATION must be positive")
	}
	if c.ConfirmationTimerMinutes < 1 || c.ConfirmationTimerMinutes > 24*60 {
		return fmt.Errorf("CONFIRMATION_TIMER_MINUTES must be within 1..1440")
	}
	if c.SweepBatchSize < 1 {
		return fmt.Errorf("SWEEP_BATCH_SIZE must be positive")
	}
	if _, err := c.FeePercent(); err != nil {
		return err
	}
	return nil
}

// FeePercent parses REFERRAL_FEE_PERCENT; zero means fees are priced by staff.
func (c Config) FeePercent() (decimal.Decimal, error) {
	raw := strings.TrimSpace(c.ReferralFeePercent)
	if raw == "" {
		return decimal.Zero, nil
	}
	p, err := decimal.NewFromString(raw)
	if err != nil || p.IsNegative() || p.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, fmt.Errorf("REFERRAL_FEE_PERCENT must be a number within 0..100")
	}
	return p, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}
