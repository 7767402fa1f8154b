// Package health runs dependency probes for the readiness endpoint and the
// gRPC health service.
package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Probe проверяет одну зависимость; nil — зависимость доступна.
type Probe func(ctx context.Context) error

// Report — результат одного прогона проверок.
type Report struct {
	Ready bool            `json:"ready"`
	Deps  map[string]bool `json:"deps"`
	// Errors holds the failure text of every failed probe.
	Errors map[string]string `json:"errors,omitempty"`
}

type Checker struct {
	mu      sync.RWMutex
	probes  map[string]Probe
	timeout time.Duration
}

func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Checker{probes: map[string]Probe{}, timeout: timeout}
}

// Add registers probe under name, replacing any previous probe with that name.
func (c *Checker) Add(name string, probe Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes[name] = probe
}

// Names returns registered probe names in sorted order.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.probes))
	for n := range c.probes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Check runs every probe with the checker timeout. No probes means ready.
func (c *Checker) Check(ctx context.Context) Report {
	c.mu.RLock()
	probes := make(map[string]Probe, len(c.probes))
	for n, p := range c.probes {
		probes[n] = p
	}
	c.mu.RUnlock()

	rep := Report{Ready: true, Deps: make(map[string]bool, len(probes))}
	for name, probe := range probes {
		pctx, cancel := context.WithTimeout(ctx, c.timeout)
		err := probe(pctx)
		cancel()

		rep.Deps[name] = err == nil
		if err != nil {
			rep.Ready = false
			if rep.Errors == nil {
				rep.Errors = map[string]string{}
			}
			rep.Errors[name] = err.Error()
		}
	}
	return rep
}

// GormProbe пингует пул соединений gorm.
func GormProbe(db *gorm.DB) Probe {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("sql db: %w", err)
		}
		return sqlDB.PingContext(ctx)
	}
}

func RedisProbe(client *redis.Client) Probe {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
