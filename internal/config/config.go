package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

type Config struct {
	DBPath             string        `env:"DB_PATH" envDefault:"data/l8tefuel.db"`
	MigrationsPath     string        `env:"MIGRATIONS_PATH" envDefault:"migrations"`
	JwtSecret          string        `env:"JWT_SECRET"`
	JwtExpires         time.Duration `env:"JWT_EXPIRES" envDefault:"24h"`
	TankerkoenigAPIKey string        `env:"TANKERKOENIG_API_KEY"`
	TankerkoenigURL    string        `env:"TANKERKOENIG_URL" envDefault:"https://creativecommons.tankerkoenig.de/json/list.php"`
	AdminUsername      string        `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword      string        `env:"ADMIN_PASSWORD" envDefault:"admin123"`
	StaticDir          string        `env:"STATIC_DIR" envDefault:"frontend"`
	NominatimServer    string        `env:"NOMINATIM_SERVER" envDefault:"https://nominatim.openstreetmap.org/"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	return Parse()
}

func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse environment variables")
	}

	if cfg.JwtSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		log.Println("WARNING: JWT_SECRET is not set, using a random secret. Issued tokens will not survive a restart.")
		cfg.JwtSecret = secret
	}

	return &cfg, nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to generate JWT secret")
	}
	return hex.EncodeToString(buf), nil
}
