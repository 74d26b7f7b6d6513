package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	JWTSecret         string `env:"JWT_SECRET,required"`
	JWTAccessTTLMin   int    `env:"JWT_ACCESS_TTL_MIN" envDefault:"15"`
	JWTRefreshTTLDays int    `env:"JWT_REFRESH_TTL_DAYS" envDefault:"7"`

	OTPLength       int `env:"OTP_LENGTH" envDefault:"6"`
	OTPExpiryMin    int `env:"OTP_EXPIRY_MIN" envDefault:"10"`
	OTPRateLimitMax int `env:"OTP_RATE_LIMIT_MAX" envDefault:"0"`

	TwoFactorAPIKey string `env:"TWO_FACTOR_API_KEY"`
	SMSDelivery     string `env:"SMS_DELIVERY" envDefault:"sms"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
