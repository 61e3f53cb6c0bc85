package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort   string `env:"HTTP_PORT" envDefault:"8080"`
	AppEnv     string `env:"APP_ENV" envDefault:"production"`
	AppVersion string `env:"APP_VERSION" envDefault:"0.1.0"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	Debug      bool   `env:"DEBUG" envDefault:"false"`

	// Throttling del path de check-in (sliding window por cliente).
	RateLimitCapacity      int `env:"RATE_LIMIT_CAPACITY" envDefault:"5"`
	RateLimitWindowSeconds int `env:"RATE_LIMIT_WINDOW_SECONDS" envDefault:"10"`

	// Piso de observaciones antes de emitir un score.
	RiskMinCheckins int `env:"RISK_MIN_CHECKINS" envDefault:"3"`

	// Sal para derivar claves de cliente anonimizadas. Cambiar en producción.
	ClientKeySalt string `env:"CLIENT_KEY_SALT" envDefault:"dev-salt-change-me"`

	JWTSecret            string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"15"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	CSPReportOnly  bool     `env:"CSP_REPORT_ONLY" envDefault:"false"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	EnableFamilySharing    bool `env:"ENABLE_FAMILY_SHARING" envDefault:"false"`
	EnableCrisisAlerts     bool `env:"ENABLE_CRISIS_ALERTS" envDefault:"true"`
	EnableSMSNotifications bool `env:"ENABLE_SMS_NOTIFICATIONS" envDefault:"true"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
