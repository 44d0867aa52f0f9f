package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"parcelshare/internal/core/application/usecases/commands"

	"github.com/spf13/viper"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	HTTPPort   string `mapstructure:"HTTP_PORT"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSslMode  string `mapstructure:"DB_SSLMODE"`

	LogLevel string `mapstructure:"LOG_LEVEL"`

	JWTSecret string `mapstructure:"JWT_SECRET"`
	JWTIssuer string `mapstructure:"JWT_ISSUER"`

	// An empty GatewayURL selects the in-process sandbox gateway.
	GatewayURL           string        `mapstructure:"GATEWAY_URL"`
	GatewayAPIKey        string        `mapstructure:"GATEWAY_API_KEY"`
	GatewayWebhookSecret string        `mapstructure:"GATEWAY_WEBHOOK_SECRET"`
	GatewayMaxTries      uint          `mapstructure:"GATEWAY_MAX_TRIES"`
	GatewayRetryInitial  time.Duration `mapstructure:"GATEWAY_RETRY_INITIAL"`
	GatewayRetryMax      time.Duration `mapstructure:"GATEWAY_RETRY_MAX"`

	PlatformFeeBps int64 `mapstructure:"PLATFORM_FEE_BPS"`
	GatewayFeeBps  int64 `mapstructure:"GATEWAY_FEE_BPS"`

	// An empty RabbitMQURL logs events instead of publishing them.
	RabbitMQURL      string `mapstructure:"RABBITMQ_URL"`
	RabbitMQExchange string `mapstructure:"RABBITMQ_EXCHANGE"`

	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
	RedisPassword    string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB          int           `mapstructure:"REDIS_DB"`
	CallbackDedupTTL time.Duration `mapstructure:"CALLBACK_DEDUP_TTL"`

	OutboxSchedule         string        `mapstructure:"OUTBOX_SCHEDULE"`
	OutboxBatch            int           `mapstructure:"OUTBOX_BATCH"`
	ProposalExpirySchedule string        `mapstructure:"PROPOSAL_EXPIRY_SCHEDULE"`
	ProposalTTL            time.Duration `mapstructure:"PROPOSAL_TTL"`
	ProposalExpiryBatch    int           `mapstructure:"PROPOSAL_EXPIRY_BATCH"`

	OperationRecoverySchedule string        `mapstructure:"OPERATION_RECOVERY_SCHEDULE"`
	StalledOperationAfter     time.Duration `mapstructure:"STALLED_OPERATION_AFTER"`
	OperationRecoveryBatch    int           `mapstructure:"OPERATION_RECOVERY_BATCH"`
}

var configDefaults = map[string]any{
	"HTTP_PORT":                "8080",
	"DB_HOST":                  "localhost",
	"DB_PORT":                  "5432",
	"DB_USER":                  "postgres",
	"DB_PASSWORD":              "",
	"DB_NAME":                  "parcelshare",
	"DB_SSLMODE":               "disable",
	"LOG_LEVEL":                "info",
	"JWT_SECRET":               "",
	"JWT_ISSUER":               "",
	"GATEWAY_URL":              "",
	"GATEWAY_API_KEY":          "",
	"GATEWAY_WEBHOOK_SECRET":   "",
	"GATEWAY_MAX_TRIES":        4,
	"GATEWAY_RETRY_INITIAL":    "200ms",
	"GATEWAY_RETRY_MAX":        "2s",
	"PLATFORM_FEE_BPS":         1000,
	"GATEWAY_FEE_BPS":          290,
	"RABBITMQ_URL":             "",
	"RABBITMQ_EXCHANGE":        "parcelshare.assignments",
	"REDIS_ADDR":               "localhost:6379",
	"REDIS_PASSWORD":           "",
	"REDIS_DB":                 0,
	"CALLBACK_DEDUP_TTL":       "24h",
	"OUTBOX_SCHEDULE":          "*/2 * * * * *",
	"OUTBOX_BATCH":             50,
	"PROPOSAL_EXPIRY_SCHEDULE": "0 */5 * * * *",
	"PROPOSAL_TTL":             "72h",
	"PROPOSAL_EXPIRY_BATCH":    100,

	"OPERATION_RECOVERY_SCHEDULE": "30 * * * * *",
	"STALLED_OPERATION_AFTER":     "10m",
	"OPERATION_RECOVERY_BATCH":    20,
}

// LoadConfig reads the environment. envFile is merged first when it exists;
// real environment variables win over it.
func LoadConfig(envFile string) (Config, error) {
	v := viper.New()
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("read %s: %w", envFile, err)
			}
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errList []error
	if c.JWTSecret == "" {
		errList = append(errList, errors.New("JWT_SECRET is required"))
	}
	if c.GatewayWebhookSecret == "" {
		errList = append(errList, errors.New("GATEWAY_WEBHOOK_SECRET is required"))
	}
	if c.ProposalTTL <= 0 {
		errList = append(errList, errors.New("PROPOSAL_TTL must be positive"))
	}
	if c.OutboxBatch <= 0 || c.ProposalExpiryBatch <= 0 || c.OperationRecoveryBatch <= 0 {
		errList = append(errList, errors.New("OUTBOX_BATCH, PROPOSAL_EXPIRY_BATCH and OPERATION_RECOVERY_BATCH must be positive"))
	}
	// a shorter threshold would resume operations whose request is still running
	if c.StalledOperationAfter < commands.OperationTimeout {
		errList = append(errList, fmt.Errorf("STALLED_OPERATION_AFTER must be at least %s", commands.OperationTimeout))
	}
	if c.GatewayMaxTries == 0 {
		errList = append(errList, errors.New("GATEWAY_MAX_TRIES must be at least 1"))
	}
	return errors.Join(errList...)
}

// DSN is the gorm/pgx connection string.
func (c Config) DSN() string {
	return c.dsn(c.DBName)
}

// MaintenanceDSN connects to the postgres database, used to create DBName.
func (c Config) MaintenanceDSN() string {
	return c.dsn("postgres")
}

func (c Config) dsn(database string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + database,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSslMode),
	}
	return u.String()
}
