package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations accept
// Go duration strings ("168h") or integer nanoseconds.
type JsonConfig struct {
	HTTPAddr                     string         `json:"http_addr"`
	GRPCAddr                     string         `json:"grpc_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	DatabaseMaxConns             int            `json:"database_max_conns"`
	SecretKey                    string         `json:"secret_key"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration"`
	CSRFTokenValidityDuration    timex.Duration `json:"csrf_token_validity_duration"`
	MailSender                   string         `json:"mail_sender"`
	MailFrom                     string         `json:"mail_from"`
	MailHost                     string         `json:"mail_host"`
	MailPort                     int            `json:"mail_port"`
	MailUsername                 string         `json:"mail_username"`
	MailPassword                 string         `json:"mail_password"`
	MailPoolSize                 int            `json:"mail_pool_size"`
	MailTimeout                  timex.Duration `json:"mail_timeout"`
	VerificationBaseURL          string         `json:"verification_base_url"`
	QueueRedisURL                string         `json:"queue_redis_url"`
	CORSAllowedOrigins           string         `json:"cors_allowed_origins"`
	MetricsAddr                  string         `json:"metrics_addr"`
	SecureCookies                *bool          `json:"secure_cookies"`
	LogLevel                     string         `json:"log_level"`
}

// parseJson overlays values from the JSON file given by -c/-config onto
// config. Only keys present with a non-zero value replace the current
// setting. An unreadable or malformed file panics.
func parseJson(config *Config) {
	path, _ := flagx.SourceFiles(args())
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlayString(&config.HTTPAddr, c.HTTPAddr)
	overlayString(&config.GRPCAddr, c.GRPCAddr)
	overlayString(&config.DatabaseDSN, c.DatabaseDSN)
	overlayInt(&config.DatabaseMaxConns, c.DatabaseMaxConns)
	overlayString(&config.SecretKey, c.SecretKey)
	overlayDuration(&config.SessionTokenValidityDuration, c.SessionTokenValidityDuration)
	overlayDuration(&config.CSRFTokenValidityDuration, c.CSRFTokenValidityDuration)
	overlayString(&config.MailSender, c.MailSender)
	overlayString(&config.MailFrom, c.MailFrom)
	overlayString(&config.MailHost, c.MailHost)
	overlayInt(&config.MailPort, c.MailPort)
	overlayString(&config.MailUsername, c.MailUsername)
	overlayString(&config.MailPassword, c.MailPassword)
	overlayInt(&config.MailPoolSize, c.MailPoolSize)
	overlayDuration(&config.MailTimeout, c.MailTimeout)
	overlayString(&config.VerificationBaseURL, c.VerificationBaseURL)
	overlayString(&config.QueueRedisURL, c.QueueRedisURL)
	overlayString(&config.CORSAllowedOrigins, c.CORSAllowedOrigins)
	overlayString(&config.MetricsAddr, c.MetricsAddr)
	overlayString(&config.LogLevel, c.LogLevel)
	if c.SecureCookies != nil {
		config.SecureCookies = *c.SecureCookies
	}
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overlayInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func overlayDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
