package configs

import (
	"sync/atomic"
)

// Holder keeps the current configuration and swaps it on Reload.
type Holder struct {
	path    string
	current atomic.Pointer[Config]
}

func NewHolder(path string, initial *Config) *Holder {
	h := &Holder{path: path}
	h.current.Store(initial)
	return h
}

func (h *Holder) Current() *Config {
	return h.current.Load()
}

// Reload re-reads the file and environment. On error the previous configuration stays
// in effect.
func (h *Holder) Reload() (*Config, error) {
	cfg, err := Load(h.path)
	if err != nil {
		return nil, err
	}
	h.current.Store(cfg)
	return cfg, nil
}
