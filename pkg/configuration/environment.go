package configuration

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/jacksonlee411/orgtree/pkg/logging"
)

const Production = "production"

const (
	SourcePostgres = "postgres"
	SourceYAML     = "yaml"
)

var singleton = sync.OnceValue(func() *Configuration {
	c, err := Load([]string{".env", ".env.local"})
	if err != nil {
		panic(err)
	}
	return c
})

// LoadEnv loads the env files that exist, looking in the working directory
// first and falling back to the nearest directory holding a go.mod.
func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if fs.FileExists(file) {
			existingFiles = append(existingFiles, file)
		}
	}

	if len(existingFiles) == 0 {
		if root, ok := findModuleRoot(); ok {
			for _, file := range envFiles {
				candidate := filepath.Join(root, file)
				if fs.FileExists(candidate) {
					existingFiles = append(existingFiles, candidate)
				}
			}
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

func findModuleRoot() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		if fs.FileExists(filepath.Join(dir, "go.mod")) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"orgtree"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type OpenTelemetryOptions struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"orgtree"`
	TempoURL    string `env:"OTEL_TEMPO_URL" envDefault:"localhost:4318"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type RateLimitOptions struct {
	Enabled   bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	GlobalRPS int    `env:"RATE_LIMIT_GLOBAL_RPS" envDefault:"1000"`
	Storage   string `env:"RATE_LIMIT_STORAGE" envDefault:"memory"` // memory | redis
	RedisURL  string `env:"RATE_LIMIT_REDIS_URL" envDefault:"redis://localhost:6379/0"`
}

// Validate checks the rate limit configuration for errors
func (r *RateLimitOptions) Validate() error {
	if r.GlobalRPS < 0 {
		return fmt.Errorf("rate limit GlobalRPS must be non-negative, got %d", r.GlobalRPS)
	}
	if r.GlobalRPS > 1000000 {
		return fmt.Errorf("rate limit GlobalRPS too high, maximum is 1,000,000, got %d", r.GlobalRPS)
	}
	if r.Storage != "memory" && r.Storage != "redis" {
		return fmt.Errorf("rate limit storage must be 'memory' or 'redis', got %q", r.Storage)
	}
	return nil
}

type OrgTreeOptions struct {
	Source      string        `env:"ORGTREE_SOURCE" envDefault:"yaml"`
	FixturePath string        `env:"ORGTREE_FIXTURE_PATH" envDefault:"config/orgtree.yaml"`
	MaxDepth    int           `env:"ORGTREE_MAX_DEPTH" envDefault:"64"`
	MemoSize    int           `env:"ORGTREE_MEMO_SIZE" envDefault:"4096"`
	CacheTTL    time.Duration `env:"ORGTREE_CACHE_TTL" envDefault:"30s"`
}

func (o *OrgTreeOptions) Validate() error {
	source := strings.ToLower(strings.TrimSpace(o.Source))
	switch source {
	case SourcePostgres, SourceYAML:
	default:
		return fmt.Errorf("invalid ORGTREE_SOURCE=%q (expected postgres|yaml)", o.Source)
	}
	o.Source = source

	if source == SourceYAML && strings.TrimSpace(o.FixturePath) == "" {
		return fmt.Errorf("ORGTREE_FIXTURE_PATH is required when ORGTREE_SOURCE=yaml")
	}
	if o.MaxDepth < 0 {
		return fmt.Errorf("ORGTREE_MAX_DEPTH must be non-negative, got %d", o.MaxDepth)
	}
	if o.MemoSize < 0 {
		return fmt.Errorf("ORGTREE_MEMO_SIZE must be non-negative, got %d", o.MemoSize)
	}
	if o.CacheTTL < 0 {
		return fmt.Errorf("ORGTREE_CACHE_TTL must be non-negative, got %s", o.CacheTTL)
	}
	return nil
}

type Configuration struct {
	Database      DatabaseOptions
	OpenTelemetry OpenTelemetryOptions
	Prometheus    PrometheusOptions
	RateLimit     RateLimitOptions
	OrgTree       OrgTreeOptions

	ServerPort         int           `env:"PORT" envDefault:"3200"`
	GoAppEnvironment   string        `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress      string        `env:"-"`
	Origin             string        `env:"ORIGIN" envDefault:"http://localhost:3200"`
	CORSOrigins        string        `env:"CORS_ORIGINS" envDefault:"http://localhost:3000"`
	SupportedLanguages []string      `env:"SUPPORTED_LANGUAGES" envDefault:"en,zh" envSeparator:","`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"error"`
	LogPath            string        `env:"LOG_PATH" envDefault:"./logs/app.log"`
	// The logging middleware looks for this header and generates a uuid when it is absent.
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	// The logging middleware looks for this header and falls back to request.RemoteAddr.
	RealIPHeader string `env:"REAL_IP_HEADER" envDefault:"X-Real-IP"`

	logCloser io.Closer
	logger    *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	return logging.ParseLevel(c.LogLevel)
}

func (c *Configuration) Scheme() string {
	if c.GoAppEnvironment == Production { // assume 'https' on production mode
		return "https"
	}
	return "http"
}

// CORSAllowedOrigins splits CORS_ORIGINS on commas and whitespace.
func (c *Configuration) CORSAllowedOrigins() []string {
	return strings.FieldsFunc(c.CORSOrigins, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
}

func Use() *Configuration {
	return singleton()
}

// Load builds a configuration from the environment after loading envFiles.
func Load(envFiles []string) (*Configuration, error) {
	c := &Configuration{}
	if err := c.load(envFiles); err != nil {
		c.Unload()
		return nil, err
	}
	return c, nil
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit configuration error: %w", err)
	}
	if err := c.OrgTree.Validate(); err != nil {
		return fmt.Errorf("org tree configuration error: %w", err)
	}

	closer, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logCloser = closer
	c.logger = logger

	c.Database.Opts = c.Database.ConnectionString()
	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}

	if os.Getenv("ORIGIN") == "" {
		if c.GoAppEnvironment == "development" {
			c.Origin = fmt.Sprintf("%s://localhost:%d", c.Scheme(), c.ServerPort)
		}
	}

	return nil
}

// Unload releases the log file.
func (c *Configuration) Unload() {
	if c.logCloser != nil {
		if err := c.logCloser.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
