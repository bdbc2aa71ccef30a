package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/forgo/qrmenu/api/internal/metrics"
)

// DefaultProbeInterval is used when no interval is configured
const DefaultProbeInterval = 30 * time.Second

// Checker reports whether the menu store is reachable
type Checker interface {
	Health(ctx context.Context) error
}

// StoreProbe periodically pings the menu store and records the result
type StoreProbe struct {
	checker  Checker
	driver   string
	metrics  *metrics.Metrics
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
	up       bool
}

// StoreProbeConfig holds configuration for the store probe
type StoreProbeConfig struct {
	Checker  Checker
	Driver   string
	Metrics  *metrics.Metrics
	Interval time.Duration
	Timeout  time.Duration
}

// NewStoreProbe creates a new store probe job
func NewStoreProbe(cfg StoreProbeConfig) *StoreProbe {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultProbeInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &StoreProbe{
		checker:  cfg.Checker,
		driver:   cfg.Driver,
		metrics:  cfg.Metrics,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
	}
}

// Start begins probing. Calling Start on a running probe does nothing;
// a stopped probe can be started again.
func (p *StoreProbe) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	stop := make(chan struct{})
	p.stopCh = stop
	p.wg.Add(1)
	p.mu.Unlock()

	go p.run(stop)
	slog.Info("store probe started",
		slog.String("driver", p.driver),
		slog.Duration("interval", p.interval),
	)
}

// Stop gracefully stops the probe and waits for the loop to exit
func (p *StoreProbe) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	stop := p.stopCh
	p.stopCh = nil
	p.mu.Unlock()

	close(stop)
	p.wg.Wait()
	slog.Info("store probe stopped", slog.String("driver", p.driver))
}

func (p *StoreProbe) run(stop <-chan struct{}) {
	defer p.wg.Done()

	p.probe()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.probe()
		case <-stop:
			return
		}
	}
}

func (p *StoreProbe) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.RunOnce(ctx); err != nil {
		slog.Warn("store probe failed",
			slog.String("driver", p.driver),
			slog.String("error", err.Error()),
		)
	}
}

// RunOnce pings the store once and records the outcome
func (p *StoreProbe) RunOnce(ctx context.Context) error {
	err := p.checker.Health(ctx)

	p.mu.Lock()
	wasUp := p.up
	p.up = err == nil
	p.mu.Unlock()

	p.metrics.StoreProbed(p.driver, err == nil)
	if err == nil && !wasUp {
		slog.Debug("store reachable", slog.String("driver", p.driver))
	}
	return err
}

// IsRunning returns whether the probe loop is running
func (p *StoreProbe) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Up returns the result of the most recent probe
func (p *StoreProbe) Up() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.up
}
