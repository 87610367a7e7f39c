package internal

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Config struct {
	BadgerFilepath     string        `env:"BADGER_FILEPATH,required=true" validate:"required"`
	PostgresURL        string        `env:"POSTGRES_URL,required=true" validate:"required"`
	LogLevel           string        `env:"LOG_LEVEL,required=true" validate:"required"`
	MembershipCacheTTL time.Duration `env:"MEMBERSHIP_CACHE_TTL,default=30s" validate:"gte=0"`
	StatsInterval      time.Duration `env:"STATS_INTERVAL,default=15s" validate:"gt=0"`
	RestartInterval    time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
	DebugPort          int           `env:"DEBUG_PORT,default=8090" validate:"gt=0,lte=65535"`
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
