package config

import (
	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"auth-sessions"`

	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	Auth   AuthConfig
	Email  EmailConfig
	Jaeger JaegerConfig
}

type ServerConfig struct {
	Mode   string `env:"SERVER_MODE"   envDefault:"dev"`
	Scheme string `env:"SERVER_SCHEME" envDefault:"http"`
	Domain string `env:"SERVER_DOMAIN" envDefault:"localhost"`
	Port   int    `env:"SERVER_PORT"   envDefault:"8080"`
}

type DBConfig struct {
	Host     string `env:"DB_HOST"     envDefault:"localhost"`
	Port     int    `env:"DB_PORT"     envDefault:"5432"`
	User     string `env:"DB_USER"     envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	Database string `env:"DB_DATABASE" envDefault:"auth_sessions"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASS" envDefault:""`
}

type AuthConfig struct {
	JWT  JWTConfig
	CSRF CSRFConfig
}

type JWTConfig struct {
	Secret string `env:"AUTH_JWT_SECRET,required"`
	Issuer string `env:"AUTH_JWT_ISSUER" envDefault:"auth-sessions"`
}

type CSRFConfig struct {
	Secret string `env:"AUTH_CSRF_SECRET,required"`
}

type EmailConfig struct {
	Enabled bool   `env:"EMAIL_ENABLED" envDefault:"false"`
	Server  string `env:"EMAIL_SERVER"  envDefault:"smtp.gmail.com"`
	Port    int    `env:"EMAIL_PORT"    envDefault:"587"`
	User    string `env:"EMAIL_USER"    envDefault:""`
	Pass    string `env:"EMAIL_PASS"    envDefault:""`
	Admin   string `env:"EMAIL_ADMIN"   envDefault:""`
}

type JaegerConfig struct {
	Sampler struct {
		Type  string `env:"JAEGER_SAMPLER_TYPE"  envDefault:"const"`
		Param int    `env:"JAEGER_SAMPLER_PARAM" envDefault:"1"`
	}
	Reporter struct {
		LogSpans           bool   `env:"JAEGER_REPORTER_LOG_SPANS" envDefault:"false"`
		LocalAgentHostPort string `env:"JAEGER_AGENT_ADDR"         envDefault:"localhost:6831"`
	}
}

func MustLoad(envPath string) Config {
	if err := godotenv.Load(envPath); err != nil {
		zap.L().Info("No .env file found, reading environment", zap.String("path", envPath))
	}

	conf := Config{}
	if err := env.Parse(&conf); err != nil {
		zap.L().Fatal("failed to parse config", zap.Error(err))
	}

	return conf
}
