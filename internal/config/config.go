package config // package config loads application configuration from environment variables

import (
	"log"     // log reports configuration errors before the zap logger exists
	"os"      // os provides access to environment variables
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env      string // application environment (e.g. "dev", "prod")
	Port     string // HTTP port to listen on
	LogLevel string // zap level name; empty picks the environment default

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	SessionSecret string        // signs OAuth state tokens
	SessionTTL    time.Duration // lifetime of a server-side session
	SessionSecure bool          // set the Secure flag on session cookies
	BcryptCost    int           // bcrypt work factor for password hashing

	GoogleClientID     string // OAuth2 client id; empty disables Google login
	GoogleClientSecret string // OAuth2 client secret
	GoogleCallbackURL  string // redirect URL registered with Google

	RabbitURL string // AMQP broker URL; empty disables account events
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:      getenv("APP_ENV", "dev"),
		Port:     must("APP_PORT"),
		LogLevel: os.Getenv("LOG_LEVEL"),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"), // empty allowed
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		SessionSecret: must("SESSION_SECRET"),
		SessionTTL:    envDur("SESSION_TTL", 24*time.Hour),
		SessionSecure: envBool("SESSION_SECURE", false),
		BcryptCost:    envInt("BCRYPT_COST", 10),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  getenv("GOOGLE_CALLBACK_URL", "http://localhost:3000/auth/google/notes"),

		RabbitURL: firstNonEmpty(os.Getenv("RABBITMQ_URL"), os.Getenv("AMQP_URL")),
	}
}

// GoogleEnabled reports whether enough OAuth settings are present to offer
// Google login.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
