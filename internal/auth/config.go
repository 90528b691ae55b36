package auth

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/user"
)

// SaltRounds is the bcrypt work factor. Unparsable values resolve to the default.
type SaltRounds int

// Config is read once at startup and shared read-only by issuer and verifier.
type Config struct {
	Secret     string        `env:"JWT_SECRET"`
	Audience   string        `env:"JWT_AUDIENCE"`
	Issuer     string        `env:"JWT_ISSUER"`
	TTL        time.Duration `env:"JWT_TTL" envDefault:"1h"`
	SaltRounds SaltRounds    `env:"SALT_ROUNDS" envDefault:"10"`
}

// ConfigFromEnv parses auth settings from the environment. A missing secret is
// not an error here; NewTokenService refuses to start without one.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	err := env.ParseWithOptions(&cfg, env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(SaltRounds(0)): parseSaltRounds,
		},
	})
	if err != nil {
		return Config{}, fmt.Errorf("parse auth config: %w", err)
	}
	return cfg, nil
}

func parseSaltRounds(v string) (any, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return SaltRounds(user.DefaultSaltRounds), nil
	}
	return SaltRounds(n), nil
}
