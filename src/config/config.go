package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

// Config carries every tunable the service reads. It is built once in main
// and handed to the components that need it; nothing mutates it afterwards.
type Config struct {
	Env         string
	AppHost     string
	DatabaseDSN string
	RedisURL    string
	KafkaBroker string

	StripeSecretKey string
	WebhookSecret   string
	GatewayMode     string

	BankAccountName   string
	BankAccountNumber string

	SessionTTL           time.Duration
	ReconcileMaxAttempts int
	ReconcileDelay       time.Duration
	ReconcileQueue       string

	SMTPFrom   string
	EmailQueue string
	JWTSecret  string
}

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

// Load reads the environment and returns the assembled Config. The webhook
// secret falls back to Secrets Manager when the env var is unset outside of
// local runs.
func Load() (*Config, error) {
	cfg := &Config{
		Env:                  envOr("API_ENV", "local"),
		AppHost:              os.Getenv("APP_HOST"),
		DatabaseDSN:          GetDSN(),
		RedisURL:             os.Getenv("REDIS_HOST"),
		KafkaBroker:          os.Getenv("KAFKA_BROKER"),
		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		WebhookSecret:        os.Getenv("PAYMENT_WEBHOOK_SECRET"),
		GatewayMode:          envOr("GATEWAY_MODE", "checkout"),
		BankAccountName:      os.Getenv("BANK_ACCOUNT_NAME"),
		BankAccountNumber:    os.Getenv("BANK_ACCOUNT_NUMBER"),
		SessionTTL:           time.Duration(intOr("SESSION_TTL_MINUTES", 30)) * time.Minute,
		ReconcileMaxAttempts: intOr("RECONCILE_MAX_ATTEMPTS", 5),
		ReconcileDelay:       time.Duration(intOr("RECONCILE_DELAY_SECONDS", 3)) * time.Second,
		ReconcileQueue:       envOr("RECONCILE_QUEUE", "PendingReconciliations"),
		SMTPFrom:             envOr("SMTP_FROM", "noreply@localhost"),
		EmailQueue:           envOr("EMAIL_QUEUE", "Emails"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
	}
	if cfg.WebhookSecret == "" && cfg.Env != "local" {
		secret, err := fetchSecret(os.Getenv("PAYMENT_WEBHOOK_SECRET_ID"))
		if err != nil {
			return nil, fmt.Errorf("webhook secret unavailable: %w", err)
		}
		cfg.WebhookSecret = secret
	}
	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("PAYMENT_WEBHOOK_SECRET is required")
	}
	return cfg, nil
}

func fetchSecret(secretId string) (string, error) {
	if secretId == "" {
		return "", fmt.Errorf("no secret id configured")
	}
	awscfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Printf("Could not load default config: %s\n", err.Error())
		return "", err
	}
	svc := secretsmanager.NewFromConfig(awscfg)
	out, err := svc.GetSecretValue(context.TODO(), &secretsmanager.GetSecretValueInput{
		SecretId: &secretId,
	})
	if err != nil {
		log.Printf("Error retrieving secret [%s]: %s\n", secretId, err.Error())
		return "", err
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret [%s] has no string value", secretId)
	}
	return *out.SecretString, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	atoi, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return atoi
}

