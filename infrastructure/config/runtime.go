package config

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Runtime holds the settings that can change while the process runs
type Runtime struct {
	level    zap.AtomicLevel
	cacheTTL atomic.Int64
}

// NewRuntime seeds the runtime settings from cfg. cfg must be valid.
func NewRuntime(cfg *Config) *Runtime {
	r := &Runtime{level: zap.NewAtomicLevel()}
	r.Apply(cfg)
	return r
}

// Apply copies the dynamic subset of cfg into the running settings
func (r *Runtime) Apply(cfg *Config) {
	if lvl, err := ParseLogLevel(cfg.LogLevel); err == nil {
		r.level.SetLevel(lvl)
	}
	r.cacheTTL.Store(int64(cfg.CacheTTLSeconds))
}

// Level is the shared log level handed to the zap logger
func (r *Runtime) Level() zap.AtomicLevel {
	return r.level
}

// CacheTTLSeconds returns the current cache lifetime
func (r *Runtime) CacheTTLSeconds() int {
	return int(r.cacheTTL.Load())
}
