package shared

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string `envconfig:"APP_ENV" default:"prod"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	// empty DSN selects the in-memory store
	MySQLDSN string `envconfig:"MYSQL_DSN"`

	RedisAddr string        `envconfig:"REDIS_ADDR"`
	RedisPass string        `envconfig:"REDIS_PASSWORD"`
	RedisDB   int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"15m"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	JWTIssuer string        `envconfig:"JWT_ISSUER" default:"hostbook"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	MailerBase        string `envconfig:"MAILER_BASE_URL" default:"https://api.emailjs.com/api/v1.0"`
	MailerServiceID   string `envconfig:"MAILER_SERVICE_ID"`
	MailerTemplateID  string `envconfig:"MAILER_TEMPLATE_ID"`
	MailerPublicKey   string `envconfig:"MAILER_PUBLIC_KEY"`
	MailerAccessToken string `envconfig:"MAILER_ACCESS_TOKEN"`
	MailerRPS         int    `envconfig:"MAILER_RPS" default:"2"`

	WarmWorkers  int    `envconfig:"WARM_WORKERS" default:"8"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// MailerEnabled reports whether enough is configured to send real email.
func (c Config) MailerEnabled() bool {
	return c.MailerServiceID != "" && c.MailerTemplateID != "" && c.MailerPublicKey != ""
}

func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, err
	}
	if c.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if c.MySQLDSN == "" {
		log.Warn().Msg("MYSQL_DSN is empty; using in-memory store")
	}
	if !c.MailerEnabled() {
		log.Warn().Msg("mailer not configured; confirmations will only be logged")
	}
	return c, nil
}
