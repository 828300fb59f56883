// Package dispatcher delivers notification jobs from the outbox.
package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/infrastructure/metrics"
	"github.com/iho/gofunds/internal/usecase"
)

const markTimeout = 5 * time.Second

// Dispatcher claims pending notification jobs and hands them to a gateway. Every claimed
// job ends as sent or failed; failed jobs are not retried.
type Dispatcher struct {
	outbox      usecase.NotificationOutbox
	gateway     usecase.NotificationGateway
	logger      zerolog.Logger
	metrics     *metrics.Metrics
	batchSize   int
	concurrency int
	interval    time.Duration
	lease       time.Duration
	sendTimeout time.Duration
	wake        chan struct{}
	now         func() time.Time
}

// Config for Dispatcher.
type Config struct {
	Outbox      usecase.NotificationOutbox
	Gateway     usecase.NotificationGateway
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
	BatchSize   int           // Jobs claimed per batch
	Concurrency int           // Jobs delivered in parallel
	Interval    time.Duration // Polling interval
	Lease       time.Duration // Claims older than this return to pending
	SendTimeout time.Duration // Per-job delivery deadline
}

// New creates a new Dispatcher.
func New(cfg Config) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.Lease <= 0 {
		cfg.Lease = time.Minute
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}

	return &Dispatcher{
		outbox:      cfg.Outbox,
		gateway:     cfg.Gateway,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		batchSize:   cfg.BatchSize,
		concurrency: cfg.Concurrency,
		interval:    cfg.Interval,
		lease:       cfg.Lease,
		sendTimeout: cfg.SendTimeout,
		wake:        make(chan struct{}, 1),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Notify wakes the dispatcher without waiting for the next tick. It never blocks.
func (d *Dispatcher) Notify() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Start runs the dispatch loop until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info().
		Int("batch_size", d.batchSize).
		Int("concurrency", d.concurrency).
		Dur("interval", d.interval).
		Msg("notification dispatcher started")

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.releaseStale(ctx)
	d.drain(ctx)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info().Msg("notification dispatcher shutting down")
			return ctx.Err()
		case <-ticker.C:
			d.releaseStale(ctx)
			d.drain(ctx)
		case <-d.wake:
			d.drain(ctx)
		}
	}
}

// drain processes batches until the outbox has no pending jobs.
func (d *Dispatcher) drain(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := d.processBatch(ctx)
		if err != nil {
			d.logger.Error().Err(err).Msg("error processing notification jobs")
			return
		}
		if n < d.batchSize {
			return
		}
	}
}

// processBatch claims and delivers one batch, returning the number of jobs claimed.
func (d *Dispatcher) processBatch(ctx context.Context) (int, error) {
	jobs, err := d.outbox.ClaimPending(ctx, d.batchSize)
	if err != nil {
		return 0, fmt.Errorf("claim notification jobs: %w", err)
	}
	if len(jobs) == 0 {
		return 0, nil
	}

	d.logger.Debug().Int("count", len(jobs)).Msg("processing notification jobs")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for _, job := range jobs {
		g.Go(func() error {
			d.deliver(gctx, job)
			return nil
		})
	}
	_ = g.Wait()

	return len(jobs), nil
}

func (d *Dispatcher) deliver(ctx context.Context, job *domain.NotificationJob) {
	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	err := d.send(sendCtx, job)
	cancel()

	// outcomes are recorded even when shutdown cancelled ctx
	markCtx, cancelMark := context.WithTimeout(context.WithoutCancel(ctx), markTimeout)
	defer cancelMark()

	log := d.logger.With().
		Str("job_id", job.ID).
		Str("kind", string(job.Kind)).
		Str("subscription_id", job.SubscriptionID).
		Logger()

	if err != nil {
		if d.metrics != nil {
			d.metrics.NotificationsFailed.WithLabelValues(string(job.Kind)).Inc()
		}
		log.Error().Err(err).Int("attempts", job.Attempts).Msg("notification delivery failed")

		if markErr := d.outbox.MarkFailed(markCtx, job.ID, err.Error(), d.now()); markErr != nil {
			log.Error().Err(markErr).Msg("failed to mark notification job as failed")
		}
		return
	}

	if d.metrics != nil {
		d.metrics.NotificationsSent.WithLabelValues(string(job.Kind)).Inc()
	}
	log.Info().Msg("notification sent")

	if markErr := d.outbox.MarkSent(markCtx, job.ID, d.now()); markErr != nil {
		log.Error().Err(markErr).Msg("failed to mark notification job as sent")
	}
}

func (d *Dispatcher) send(ctx context.Context, job *domain.NotificationJob) error {
	switch job.Kind {
	case domain.NotificationSubscriptionConfirmation:
		return d.gateway.SendSubscriptionConfirmation(ctx, job.Payload)
	case domain.NotificationCancellationConfirmation:
		return d.gateway.SendCancellationConfirmation(ctx, job.Payload)
	default:
		return fmt.Errorf("unknown notification kind %q", job.Kind)
	}
}

func (d *Dispatcher) releaseStale(ctx context.Context) {
	released, err := d.outbox.ReleaseStale(ctx, d.now().Add(-d.lease))
	if err != nil {
		d.logger.Error().Err(err).Msg("failed to release stale notification jobs")
		return
	}
	if released == 0 {
		return
	}

	if d.metrics != nil {
		d.metrics.NotificationsReleased.Add(float64(released))
	}
	d.logger.Warn().Int64("count", released).Msg("released stale notification jobs")
}
