package monitor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Probe checks one dependency. A nil error means the dependency is reachable.
type Probe func(ctx context.Context) error

func PostgresProbe(pool *pgxpool.Pool) Probe {
	return func(ctx context.Context) error {
		return pool.Ping(ctx)
	}
}

func RedisProbe(client *redislib.Client) Probe {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// Monitor probes dependencies on a cron schedule and caches the result for the
// health endpoint.
type Monitor struct {
	probes  map[string]Probe
	timeout time.Duration
	cron    *cron.Cron

	status Status
	mu     sync.RWMutex
	logger *zap.Logger
}

func New(probes map[string]Probe, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Monitor{
		probes:  probes,
		timeout: 3 * time.Second,
		logger:  logger,
		cron:    cron.New(),
		status:  Status{Services: map[string]bool{}},
	}
	if _, err := m.cron.AddFunc(fmt.Sprintf("@every %s", interval), m.Refresh); err != nil {
		logger.Error("invalid monitor interval", zap.Duration("interval", interval), zap.Error(err))
	}
	return m
}

// Start runs a first probe synchronously, then hands over to the schedule.
func (m *Monitor) Start() {
	m.Refresh()
	m.cron.Start()
}

// Stop waits for a running probe to finish.
func (m *Monitor) Stop() {
	<-m.cron.Stop().Done()
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Online()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	services := make(map[string]bool, len(m.status.Services))
	for name, ok := range m.status.Services {
		services[name] = ok
	}
	return Status{Services: services, LastCheck: m.status.LastCheck}
}

// Refresh probes every dependency once.
func (m *Monitor) Refresh() {
	names := make([]string, 0, len(m.probes))
	for name := range m.probes {
		names = append(names, name)
	}
	sort.Strings(names)

	services := make(map[string]bool, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		err := m.probes[name](ctx)
		cancel()
		if err != nil {
			m.logger.Warn("dependency check failed", zap.String("service", name), zap.Error(err))
		}
		services[name] = err == nil
	}

	m.mu.Lock()
	m.status = Status{Services: services, LastCheck: time.Now()}
	m.mu.Unlock()
}
