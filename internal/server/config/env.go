package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv loads the dotenv file named by -env (or ./.env when present)
// into the process environment without overriding variables that are
// already set, then overlays every recognised variable onto config.
func parseEnv(config *Config) error {
	_, envFile := flagx.SourceFiles(args())
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	var errs []error

	envString(&config.HTTPAddr, "HTTP_ADDR")
	envString(&config.GRPCAddr, "GRPC_ADDR")
	envString(&config.DatabaseDSN, "DATABASE_URL")
	errs = append(errs, envInt(&config.DatabaseMaxConns, "DATABASE_MAX_CONNS"))
	envString(&config.SecretKey, "HMAC_KEY")
	errs = append(errs, envDuration(&config.SessionTokenValidityDuration, "SESSION_TTL"))
	errs = append(errs, envDuration(&config.CSRFTokenValidityDuration, "CSRF_TTL"))
	envString(&config.MailSender, "MAIL_SENDER")
	envString(&config.MailFrom, "MAIL_FROM")
	envString(&config.MailHost, "MAIL_HOST")
	errs = append(errs, envInt(&config.MailPort, "MAIL_PORT"))
	envString(&config.MailUsername, "MAIL_USERNAME")
	envString(&config.MailPassword, "MAIL_PASSWORD")
	errs = append(errs, envInt(&config.MailPoolSize, "MAIL_POOL_SIZE"))
	errs = append(errs, envDuration(&config.MailTimeout, "MAIL_TIMEOUT"))
	envString(&config.VerificationBaseURL, "VERIFICATION_BASE_URL")
	envString(&config.QueueRedisURL, "QUEUE_REDIS_URL")
	envString(&config.CORSAllowedOrigins, "CORS_ALLOWED_ORIGINS")
	envString(&config.MetricsAddr, "METRICS_ADDR")
	errs = append(errs, envBool(&config.SecureCookies, "SECURE_COOKIES"))
	envString(&config.LogLevel, "LOG_LEVEL")

	return errors.Join(errs...)
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func envBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}
