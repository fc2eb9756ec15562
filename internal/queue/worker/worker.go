package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/beadworks/storeadmin/internal/jobs"
	"github.com/beadworks/storeadmin/internal/observability"
	"github.com/beadworks/storeadmin/internal/queue/redisclient"
	"github.com/redis/go-redis/v9"
)

// FileRemover deletes an object from the backing store.
type FileRemover interface {
	Remove(ctx context.Context, objectKey string) error
}

// StockUpdater writes a variant stock level.
type StockUpdater interface {
	UpdateVariantStock(ctx context.Context, variantID int64, stock int) error
}

type Config struct {
	PopTimeout time.Duration
}

type Worker struct {
	cfg     Config
	rdb     *redis.Client
	remover FileRemover
	stock   StockUpdater
	logger  *slog.Logger
	prom    *observability.Prom
}

func New(cfg Config, client *redisclient.Client, remover FileRemover, stock StockUpdater, logger *slog.Logger, prom *observability.Prom) *Worker {
	if cfg.PopTimeout <= 0 {
		cfg.PopTimeout = 5 * time.Second
	}

	return &Worker{
		cfg:     cfg,
		rdb:     client.Raw(),
		remover: remover,
		stock:   stock,
		logger:  logger,
		prom:    prom,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker received shutdown signal")
			return nil
		default:
		}

		res, err := w.rdb.BRPop(ctx, w.cfg.PopTimeout, redisclient.KeyJobs).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error("queue pop failed", "error", err)
			time.Sleep(time.Second)
			continue
		}

		// BRPop returns [key, value]
		if len(res) != 2 {
			continue
		}

		var j jobs.Job
		if err := json.Unmarshal([]byte(res[1]), &j); err != nil {
			w.logger.Error("dropping undecodable job", "error", err)
			continue
		}

		w.processOne(ctx, j)
	}
}

func (w *Worker) processOne(ctx context.Context, j jobs.Job) {
	w.observe(string(j.Type), func() string {
		err := w.execute(ctx, j)
		if err == nil {
			w.logger.Info("job done", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts)
			return "done"
		}

		permanent := errors.Is(err, jobs.ErrInvalidJobType) || errors.Is(err, jobs.ErrInvalidJobPayload)

		j.Attempts++
		if permanent || j.Attempts >= j.MaxTries {
			w.logger.Error("job failed permanently", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts, "error", err)
			w.pushDead(ctx, j)
			return "failed"
		}

		w.logger.Warn("job failed, scheduling retry", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts, "error", err)
		w.requeueAfter(ctx, j, ExponentialBackoff(j.Attempts))
		return "retry"
	})
}

func (w *Worker) execute(ctx context.Context, j jobs.Job) error {
	decoded, err := jobs.DecodePayload(j)
	if err != nil {
		return err
	}

	execCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch p := decoded.(type) {
	case jobs.DeleteStoredFilePayload:
		return w.remover.Remove(execCtx, p.ObjectKey)

	case jobs.ResyncProductStockPayload:
		return w.stock.UpdateVariantStock(execCtx, p.VariantID, p.Stock)

	default:
		return jobs.ErrInvalidJobType
	}
}

// requeueAfter waits out the backoff off the main loop so one failing job
// does not stall the queue.
func (w *Worker) requeueAfter(ctx context.Context, j jobs.Job, delay time.Duration) {
	go func() {
		t := time.NewTimer(delay)
		defer t.Stop()

		select {
		case <-ctx.Done():
			// push back immediately so the job survives shutdown
		case <-t.C:
		}

		b, err := json.Marshal(j)
		if err != nil {
			return
		}
		if err := w.rdb.LPush(context.Background(), redisclient.KeyJobs, b).Err(); err != nil {
			w.logger.Error("requeue failed", "job_id", j.ID, "error", err)
		}
	}()
}

func (w *Worker) pushDead(ctx context.Context, j jobs.Job) {
	b, err := json.Marshal(j)
	if err != nil {
		return
	}
	if err := w.rdb.LPush(ctx, redisclient.KeyDeadJobs, b).Err(); err != nil {
		w.logger.Error("dead letter push failed", "job_id", j.ID, "error", err)
	}
}

func (w *Worker) observe(jobType string, fn func() string) {
	if w.prom != nil {
		w.prom.ObserveJob(jobType, fn)
		return
	}
	fn()
}
