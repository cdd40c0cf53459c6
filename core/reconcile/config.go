package reconcile

import (
	"fmt"
	"time"
)

// Config holds configuration for the reconciliation engine.
type Config struct {
	// LockTimeout bounds one read-decide-write transaction.
	LockTimeout time.Duration `mapstructure:"lock_timeout" default:"5s"`
	// MergePrimaries demotes younger primaries when one observation matches
	// several clusters. When false only a secondary is ever inserted.
	MergePrimaries bool `mapstructure:"merge_primaries" default:"true"`
}

// Validate checks the engine settings.
func (c Config) Validate() error {
	if c.LockTimeout <= 0 {
		return fmt.Errorf("reconcile lock_timeout must be positive, got %s", c.LockTimeout)
	}
	return nil
}
