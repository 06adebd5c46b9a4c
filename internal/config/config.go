package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Postgres PostgresConfig `env:",prefix=POSTGRES_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	Token    TokenConfig    `env:",prefix=TOKEN_"`
	Cookie   CookieConfig   `env:",prefix=COOKIE_"`
	Media    MediaConfig    `env:",prefix=MEDIA_"`
	Security SecurityConfig `env:",prefix="`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host          string `env:"HOST,default=localhost"`
	Port          string `env:"PORT,default=5432"`
	User          string `env:"USER,default=vidtube"`
	Password      string `env:"PASSWORD,default=vidtube_password"`
	DBName        string `env:"DB,default=vidtube_auth"`
	SSLMode       string `env:"SSLMODE,default=disable"`
	MigrationsDir string `env:"MIGRATIONS_DIR,default=migrations"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

// TokenConfig holds the signing secrets and TTLs for both token kinds.
// Access and refresh tokens are signed with distinct secrets.
type TokenConfig struct {
	AccessSecret  string   `env:"ACCESS_SECRET,required"`
	RefreshSecret string   `env:"REFRESH_SECRET,required"`
	AccessExpiry  Duration `env:"ACCESS_EXPIRY,default=15m"`
	RefreshExpiry Duration `env:"REFRESH_EXPIRY,default=10d"`
}

type CookieConfig struct {
	Domain string `env:"DOMAIN,default="`
	Secure bool   `env:"SECURE,default=true"`
}

// MediaConfig points at the S3-compatible media store that holds avatars and
// cover images. Endpoint is overridable so minio works in development.
type MediaConfig struct {
	Endpoint  string `env:"S3_ENDPOINT,default="`
	Region    string `env:"S3_REGION,default=us-east-1"`
	Bucket    string `env:"S3_BUCKET,default=vidtube-media"`
	AccessKey string `env:"S3_ACCESS_KEY,default="`
	SecretKey string `env:"S3_SECRET_KEY,default="`
	PublicURL string `env:"PUBLIC_URL,default="`
}

type SecurityConfig struct {
	BCryptCost        int      `env:"BCRYPT_COST,default=12"`
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PATCH,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// A short HMAC secret is a configuration error, fatal at startup.
	if len(config.Token.AccessSecret) < 32 {
		return nil, fmt.Errorf("TOKEN_ACCESS_SECRET must be at least 32 characters long")
	}
	if len(config.Token.RefreshSecret) < 32 {
		return nil, fmt.Errorf("TOKEN_REFRESH_SECRET must be at least 32 characters long")
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}
