package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/infrastructure/postgres/generated"
	"github.com/iho/gofunds/internal/usecase"
)

// NotificationOutbox implements usecase.NotificationOutbox on the notification_jobs table.
// Claims use FOR UPDATE SKIP LOCKED so several dispatchers can share the table.
type NotificationOutbox struct {
	queries *generated.Queries
}

// NewNotificationOutbox creates a new NotificationOutbox.
func NewNotificationOutbox(pool *pgxpool.Pool) *NotificationOutbox {
	return newNotificationOutbox(pool)
}

func newNotificationOutbox(db generated.DBTX) *NotificationOutbox {
	return &NotificationOutbox{queries: generated.New(db)}
}

// Enqueue stores a job within the caller's transaction.
func (o *NotificationOutbox) Enqueue(ctx context.Context, tx usecase.Transaction, job *domain.NotificationJob) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(job.Payload)
	if err != nil {
		return fmt.Errorf("encode notification payload: %w", err)
	}

	return queries.CreateNotificationJob(ctx, generated.CreateNotificationJobParams{
		ID:             job.ID,
		Kind:           string(job.Kind),
		CustomerID:     job.CustomerID,
		SubscriptionID: job.SubscriptionID,
		Payload:        payload,
		Status:         string(job.Status),
		Attempts:       int32(job.Attempts),
		CreatedAt:      timeToPgTimestamptz(job.CreatedAt),
	})
}

// ClaimPending moves up to limit pending jobs to processing, oldest first.
func (o *NotificationOutbox) ClaimPending(ctx context.Context, limit int) ([]*domain.NotificationJob, error) {
	rows, err := o.queries.ClaimPendingNotificationJobs(ctx, int32(limit))
	if err != nil {
		return nil, err
	}

	jobs := make([]*domain.NotificationJob, 0, len(rows))
	for _, row := range rows {
		job, err := rowToNotificationJob(row)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// MarkSent records a successful delivery.
func (o *NotificationOutbox) MarkSent(ctx context.Context, id string, at time.Time) error {
	affected, err := o.queries.MarkNotificationJobSent(ctx, generated.MarkNotificationJobSentParams{
		ID:          id,
		ProcessedAt: timeToPgTimestamptz(at),
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("notification job %s is not being processed", id)
	}
	return nil
}

// MarkFailed records a terminal delivery failure.
func (o *NotificationOutbox) MarkFailed(ctx context.Context, id, reason string, at time.Time) error {
	affected, err := o.queries.MarkNotificationJobFailed(ctx, generated.MarkNotificationJobFailedParams{
		ID:          id,
		LastError:   reason,
		ProcessedAt: timeToPgTimestamptz(at),
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("notification job %s is not being processed", id)
	}
	return nil
}

// ReleaseStale returns jobs claimed before olderThan to pending.
func (o *NotificationOutbox) ReleaseStale(ctx context.Context, olderThan time.Time) (int64, error) {
	return o.queries.ReleaseStaleNotificationJobs(ctx, timeToPgTimestamptz(olderThan))
}

func rowToNotificationJob(row generated.NotificationJob) (*domain.NotificationJob, error) {
	var payload domain.Notification
	if err := json.Unmarshal(row.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode notification job %s: %w", row.ID, err)
	}

	return &domain.NotificationJob{
		ID:             row.ID,
		Kind:           domain.NotificationKind(row.Kind),
		CustomerID:     row.CustomerID,
		SubscriptionID: row.SubscriptionID,
		Status:         domain.NotificationStatus(row.Status),
		LastError:      row.LastError,
		Payload:        payload,
		Attempts:       int(row.Attempts),
		CreatedAt:      row.CreatedAt.Time,
		ProcessedAt:    timestamptzPtr(row.ProcessedAt),
	}, nil
}
