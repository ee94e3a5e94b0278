package auth

import (
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

var (
	cfg  Config
	once sync.Once
)

// Config holds the authentication-policy tunables.
type Config struct {
	// Issuer is the service label shown in authenticator apps.
	Issuer string `env:"AUTH_ISSUER" envDefault:"authguard"`

	// LockThreshold and LockDuration parameterize the brute-force lockout.
	LockThreshold int           `env:"AUTH_LOCK_THRESHOLD" envDefault:"5"`
	LockDuration  time.Duration `env:"AUTH_LOCK_DURATION" envDefault:"15m"`

	// ResetTokenTTL bounds password-reset token lifetime, applied by
	// NewResetTokenService; ResetLinkBaseURL is the page the emailed link
	// points at, with the token appended as a query parameter.
	ResetTokenTTL    time.Duration `env:"AUTH_RESET_TOKEN_TTL" envDefault:"1h"`
	ResetLinkBaseURL string        `env:"AUTH_RESET_LINK_BASE_URL,required"`

	// ChallengeSecret signs two-factor challenge tokens; ChallengeTTL bounds
	// the window between password and code entry.
	ChallengeSecret string        `env:"AUTH_CHALLENGE_SECRET,required"`
	ChallengeTTL    time.Duration `env:"AUTH_CHALLENGE_TTL" envDefault:"5m"`

	// RecoveryCodeCount is the number of backup codes issued per enrollment.
	RecoveryCodeCount int `env:"AUTH_RECOVERY_CODES" envDefault:"8"`
}

// LoadConfig parses the configuration from environment variables once per
// process.
func LoadConfig() (Config, error) {
	var err error
	once.Do(func() {
		err = env.Parse(&cfg)
	})
	if err != nil {
		return Config{}, err
	}
	if cfg.ChallengeSecret == "" {
		return Config{}, ErrMissingChallengeSecret
	}
	return cfg, nil
}
