package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/reelrec/movies-backend/config"
	"github.com/reelrec/movies-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// TrainFunc defines the function signature for a batch training run
type TrainFunc func(ctx context.Context) error

// TrainWorker runs scheduled model retraining with configurable intervals
type TrainWorker struct {
	name          string
	cron          *cron.Cron
	trainFunc     TrainFunc
	trainInterval time.Duration
	logger        *logger.Logger
	entryID       cron.EntryID
}

// NewTrainWorker creates a cron-scheduled worker with validation and defaults
func NewTrainWorker(cfg *config.WorkerConfig, name string, trainFunc TrainFunc, logger *logger.Logger) (*TrainWorker, error) {
	// Set defaults for nil or empty config values
	var trainInterval time.Duration = 24 * time.Hour
	if cfg != nil && cfg.TrainInterval != "" {
		duration, err := time.ParseDuration(cfg.TrainInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid train interval '%s': %v", cfg.TrainInterval, err)
		}
		trainInterval = duration
	}

	return &TrainWorker{
		name:          name,
		cron:          cron.New(),
		trainFunc:     trainFunc,
		trainInterval: trainInterval,
		logger:        logger.WithComponent("train-worker"),
	}, nil
}

// Start schedules and begins the training worker
func (w *TrainWorker) Start() error {
	intervalStr := w.durationToCronExpression(w.trainInterval)
	w.logger.Info(fmt.Sprintf("Starting train worker: %s (every %v)", w.name, w.trainInterval))

	entryID, err := w.cron.AddFunc(intervalStr, func() {
		w.logger.Debug("Executing training run for worker: " + w.name)

		if err := w.trainFunc(context.Background()); err != nil {
			w.logger.Error("Training run failed for worker " + w.name + ": " + err.Error())
		} else {
			w.logger.Info("Training run completed successfully for worker: " + w.name)
		}
	})

	if err != nil {
		w.logger.Error("Failed to schedule train worker " + w.name + ": " + err.Error())
		return err
	}

	w.entryID = entryID
	w.cron.Start()

	w.logger.Info("Train worker started successfully: " + w.name)

	return nil
}

// Stop gracefully shuts down the training worker
func (w *TrainWorker) Stop() error {
	w.logger.Info("Stopping train worker: " + w.name)

	// Remove the scheduled entry
	if w.entryID > 0 {
		w.cron.Remove(w.entryID)
	}

	ctx := w.cron.Stop()
	<-ctx.Done() // Wait for graceful shutdown

	w.logger.Info("Train worker stopped: " + w.name)

	return nil
}

// IsRunning checks if the worker has active cron entries
func (w *TrainWorker) IsRunning() bool {
	return len(w.cron.Entries()) > 0
}

// durationToCronExpression converts duration to cron format with fallback
func (w *TrainWorker) durationToCronExpression(duration time.Duration) string {
	minutes := int(duration.Minutes())
	hours := int(duration.Hours())

	if hours > 0 && minutes%60 == 0 {
		return fmt.Sprintf("0 */%d * * *", hours)
	} else if minutes > 0 && minutes < 60 {
		return fmt.Sprintf("*/%d * * * *", minutes)
	}

	// Fallback for unsupported durations
	w.logger.Warn(fmt.Sprintf("Unsupported train interval %v, defaulting to daily", duration))
	return "0 0 * * *"
}
