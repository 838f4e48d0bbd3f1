package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env           string        `env:"APP_ENV" env-default:"local"`
	DatabaseURL   string        `env:"DATABASE_URL" env-default:"postgresql://postgres@localhost:5432/attendance"`
	JWTSecret     string        `env:"JWT_SECRET" env-default:"your-super-secret-key-change-in-production"`
	JWTExpiration time.Duration `env:"JWT_EXPIRATION" env-default:"24h"`
	ServerPort    string        `env:"SERVER_PORT" env-default:"8080"`
	PresenceTTL   time.Duration `env:"PRESENCE_TTL" env-default:"45s"`
	JobQueueSize  int           `env:"JOB_QUEUE_SIZE" env-default:"64"`
	CORSOrigins   []string      `env:"CORS_ORIGINS" env-default:"http://localhost:5173"`
}

func MustLoad() *Config {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
