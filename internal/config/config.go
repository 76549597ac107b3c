package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field
// corresponds to an environment variable. Database fields are only
// consulted when StoreDriver is "mysql".
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	StoreDriver  string // storage backend: "memory" or "mysql"
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign JWTs
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing
	SeedWeeks    int    // rolling horizon of weeks to seed with slots
	AMQPURL      string // RabbitMQ URL for notification events (empty disables publishing)
}

// Load reads configuration from the environment, after loading a
// .env file when one is present. Required variables are enforced by
// must(); missing values cause the process to exit with a fatal log
// message before any server starts.
func Load() Config {
	if err := godotenv.Load(".env"); err == nil {
		log.Println("loaded configuration from .env file")
	}
	cfg := Config{
		Env:          getenv("APP_ENV", "dev"),
		Port:         getenv("APP_PORT", "8080"),
		StoreDriver:  getenv("STORE_DRIVER", "memory"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: envInt("ACCESS_TOKEN_TTL_MIN", 60),
		BcryptCost:   envInt("BCRYPT_COST", 10),
		SeedWeeks:    envInt("SEED_WEEKS", 4),
		AMQPURL:      os.Getenv("AMQP_URL"),
	}
	if cfg.StoreDriver == "mysql" {
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	}
	return cfg
}

// must retrieves the value of a required environment variable. If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
