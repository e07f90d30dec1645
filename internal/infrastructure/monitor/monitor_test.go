package monitor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
)

func Test_Monitor_RefreshReportsEachService(t *testing.T) {
	// setup
	healthy := true
	mon := monitor.New(map[string]monitor.Probe{
		"postgresql": func(context.Context) error { return nil },
		"redis": func(context.Context) error {
			if healthy {
				return nil
			}
			return errors.New("connection refused")
		},
	}, time.Hour, nil)

	// act
	mon.Start()
	defer mon.Stop()

	// assert
	assert.True(t, mon.IsOnline())
	assert.Equal(t, map[string]bool{"postgresql": true, "redis": true}, mon.GetStatus().Services)

	healthy = false
	mon.Refresh()
	assert.False(t, mon.IsOnline())
	assert.False(t, mon.GetStatus().Services["redis"])
	assert.False(t, mon.GetStatus().LastCheck.IsZero())
}

func Test_Monitor_NoProbesIsOnline(t *testing.T) {
	mon := monitor.New(nil, 0, nil)
	mon.Refresh()

	assert.True(t, mon.IsOnline())
	assert.Empty(t, mon.GetStatus().Services)
}
