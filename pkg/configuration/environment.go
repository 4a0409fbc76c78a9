package configuration

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/tenantgate/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

// LoadEnv loads the given env files from the working directory, or from the
// nearest ancestor holding go.mod when none exist in the working directory.
func LoadEnv(envFiles []string) (int, error) {
	existing := existingFiles("", envFiles)
	if len(existing) == 0 {
		if root := moduleRoot(); root != "" {
			existing = existingFiles(root, envFiles)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

func existingFiles(dir string, envFiles []string) []string {
	out := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		path := file
		if dir != "" {
			path = filepath.Join(dir, file)
		}
		if fs.FileExists(path) {
			out = append(out, path)
		}
	}
	return out
}

func moduleRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if fs.FileExists(filepath.Join(dir, "go.mod")) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"tenantgate"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	MaxConns int32  `env:"DB_MAX_CONNS" envDefault:"20"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

// IdentityOptions configure the external identity provider client.
type IdentityOptions struct {
	ProviderURL     string        `env:"IDENTITY_PROVIDER_URL" envDefault:"https://api.clerk.com/v1"`
	SecretKey       string        `env:"IDENTITY_SECRET_KEY"`
	JWTHMACSecret   string        `env:"IDENTITY_JWT_HMAC_SECRET"`
	JWTPublicKeyPEM string        `env:"IDENTITY_JWT_PUBLIC_KEY_PEM"`
	JWTIssuer       string        `env:"IDENTITY_JWT_ISSUER"`
	CheckRevocation bool          `env:"IDENTITY_CHECK_REVOCATION" envDefault:"true"`
	Timeout         time.Duration `env:"IDENTITY_PROVIDER_TIMEOUT" envDefault:"3s"`
}

func (o *IdentityOptions) Validate() error {
	if o.Timeout <= 0 {
		return fmt.Errorf("IDENTITY_PROVIDER_TIMEOUT must be positive, got %s", o.Timeout)
	}
	if o.JWTHMACSecret != "" && o.JWTPublicKeyPEM != "" {
		return fmt.Errorf("set only one of IDENTITY_JWT_HMAC_SECRET and IDENTITY_JWT_PUBLIC_KEY_PEM")
	}
	if _, err := url.ParseRequestURI(o.ProviderURL); err != nil {
		return fmt.Errorf("invalid IDENTITY_PROVIDER_URL=%q: %w", o.ProviderURL, err)
	}
	return nil
}

type TenancyOptions struct {
	OrganizationHeader string `env:"ORGANIZATION_HEADER" envDefault:"X-Organization-ID"`
	BillingUpgradeURL  string `env:"BILLING_UPGRADE_URL" envDefault:"https://app.localhost/settings/billing"`
	SupportURL         string `env:"SUPPORT_URL" envDefault:"https://app.localhost/support"`
	PlanCatalogPath    string `env:"PLAN_CATALOG_PATH"`
	// VerifyOrganizations makes onboarding confirm the organization with the identity provider.
	VerifyOrganizations bool `env:"VERIFY_ORGANIZATIONS" envDefault:"true"`
}

func (o *TenancyOptions) Validate() error {
	if strings.TrimSpace(o.OrganizationHeader) == "" {
		return fmt.Errorf("ORGANIZATION_HEADER must not be empty")
	}
	if strings.EqualFold(o.OrganizationHeader, "Authorization") {
		return fmt.Errorf("ORGANIZATION_HEADER must be distinct from the Authorization header")
	}
	u, err := url.ParseRequestURI(o.BillingUpgradeURL)
	if err != nil {
		return fmt.Errorf("invalid BILLING_UPGRADE_URL=%q: %w", o.BillingUpgradeURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BILLING_UPGRADE_URL must be an absolute url, got %q", o.BillingUpgradeURL)
	}
	return nil
}

type OpenTelemetryOptions struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	TempoURL    string `env:"OTEL_TEMPO_URL" envDefault:"localhost:4318"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"tenantgate"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

// OpsGuardOptions protect operational endpoints in production.
type OpsGuardOptions struct {
	Enabled bool   `env:"OPS_GUARD_ENABLED" envDefault:"true"`
	CIDRs   string `env:"OPS_GUARD_CIDRS"`
	Token   string `env:"OPS_GUARD_TOKEN"`
}

type RateLimitOptions struct {
	Enabled   bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	GlobalRPS int    `env:"RATE_LIMIT_GLOBAL_RPS" envDefault:"1000"`
	Storage   string `env:"RATE_LIMIT_STORAGE" envDefault:"memory"` // memory or redis
	RedisURL  string `env:"RATE_LIMIT_REDIS_URL"`
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
		return fmt.Errorf("rate limit Storage must be 'memory' or 'redis', got '%s'", r.Storage)
	}
	if r.Storage == "redis" && r.RedisURL == "" {
		return fmt.Errorf("rate limit RedisURL is required when Storage is 'redis'")
	}
	return nil
}

type Configuration struct {
	Database      DatabaseOptions
	Identity      IdentityOptions
	Tenancy       TenancyOptions
	OpenTelemetry OpenTelemetryOptions
	Prometheus    PrometheusOptions
	RateLimit     RateLimitOptions
	OpsGuard      OpsGuardOptions

	ServerPort       int           `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string        `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string        `env:"-"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"error"`
	LogPath          string        `env:"LOG_PATH" envDefault:"./logs/app.log"`
	ReadTimeout      time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout     time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins      []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	// Looked up on every request; a random uuidv4 is generated when absent.
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	// Falls back to request.RemoteAddr when absent.
	RealIPHeader string `env:"REAL_IP_HEADER" envDefault:"X-Real-IP"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
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
	if err := c.Validate(); err != nil {
		return err
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	c.Database.Opts = c.Database.ConnectionString()
	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}
	return nil
}

func (c *Configuration) Validate() error {
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit configuration error: %w", err)
	}
	if err := c.Identity.Validate(); err != nil {
		return fmt.Errorf("identity configuration error: %w", err)
	}
	if err := c.Tenancy.Validate(); err != nil {
		return fmt.Errorf("tenancy configuration error: %w", err)
	}
	if c.Database.MaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.Database.MaxConns)
	}
	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
