package worker

import (
	"context"
	"testing"
	"time"

	"github.com/reelrec/movies-backend/config"
	"github.com/reelrec/movies-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorkerLogger(t *testing.T) *logger.Logger {
	t.Helper()
	logCfg := &config.LoggingConfig{
		Level:       "info",
		Format:      "console",
		ServiceName: "test-worker",
	}
	log, err := logger.NewLogger(logCfg)
	require.NoError(t, err)
	return log
}

func TestNewTrainWorker(t *testing.T) {
	mockFunc := func(ctx context.Context) error { return nil }
	log := testWorkerLogger(t)

	workerCfg := config.WorkerConfig{
		TrainInterval: "6h",
	}

	worker, err := NewTrainWorker(&workerCfg, "test-worker", mockFunc, log)

	assert.NoError(t, err)
	assert.NotNil(t, worker)
	assert.Equal(t, "test-worker", worker.name)
	assert.NotNil(t, worker.cron)
	assert.NotNil(t, worker.trainFunc)
	assert.Equal(t, 6*time.Hour, worker.trainInterval)
	assert.NotNil(t, worker.logger)
}

func TestTrainWorker_Start_Stop(t *testing.T) {
	callCount := 0
	mockFunc := func(ctx context.Context) error {
		callCount++
		return nil
	}
	log := testWorkerLogger(t)

	workerCfg := config.WorkerConfig{TrainInterval: "30m"}
	worker, err := NewTrainWorker(&workerCfg, "test-worker", mockFunc, log)
	require.NoError(t, err)

	// Start the worker
	err = worker.Start()
	assert.NoError(t, err)

	// Verify it's running
	assert.True(t, worker.IsRunning())

	// Stop the worker
	err = worker.Stop()
	assert.NoError(t, err)

	// Verify it's stopped
	assert.False(t, worker.IsRunning())
}

func TestTrainWorker_InvalidConfig(t *testing.T) {
	mockFunc := func(ctx context.Context) error { return nil }
	log := testWorkerLogger(t)

	// Test invalid train interval
	workerCfg := config.WorkerConfig{
		TrainInterval: "invalid-duration",
	}

	_, err := NewTrainWorker(&workerCfg, "test-worker", mockFunc, log)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid train interval")

	// Test valid config with train interval
	workerCfg = config.WorkerConfig{
		TrainInterval: "45m",
	}

	worker, err := NewTrainWorker(&workerCfg, "test-worker", mockFunc, log)
	assert.NoError(t, err)
	assert.NotNil(t, worker)
	assert.Equal(t, 45*time.Minute, worker.trainInterval)
}

func TestTrainWorker_EmptyConfig(t *testing.T) {
	mockFunc := func(ctx context.Context) error { return nil }
	log := testWorkerLogger(t)

	// Test empty config uses defaults
	workerCfg := config.WorkerConfig{
		TrainInterval: "",
	}

	worker, err := NewTrainWorker(&workerCfg, "test-worker", mockFunc, log)

	assert.NoError(t, err)
	assert.NotNil(t, worker)
	assert.Equal(t, 24*time.Hour, worker.trainInterval)
}

func TestTrainWorker_CronExpressions(t *testing.T) {
	mockFunc := func(ctx context.Context) error { return nil }
	log := testWorkerLogger(t)

	tests := []struct {
		name     string
		interval string
		expected string
	}{
		{"minutes", "15m", "*/15 * * * *"},
		{"hours", "2h", "0 */2 * * *"},
		{"sub-minute duration falls back to daily", "30s", "0 0 * * *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workerCfg := config.WorkerConfig{TrainInterval: tt.interval}
			worker, err := NewTrainWorker(&workerCfg, "test-worker", mockFunc, log)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, worker.durationToCronExpression(worker.trainInterval))
		})
	}
}
