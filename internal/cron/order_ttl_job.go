package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/logger"
)

const defaultPendingOrderTTL = 24 * time.Hour

type pendingOrderReader interface {
	FindPendingOrdersBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}

type orderExpirer interface {
	Expire(ctx context.Context, orderID uuid.UUID) error
}

// OrderTTLJobParams configure the pending-order expiration job.
type OrderTTLJobParams struct {
	Logger        *logger.Logger
	PendingReader pendingOrderReader
	Orders        orderExpirer
	PendingTTL    time.Duration
}

// NewOrderTTLJob builds the job that expires orders whose PIX charge was
// never paid within the checkout TTL.
func NewOrderTTLJob(params OrderTTLJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.PendingReader == nil {
		return nil, fmt.Errorf("pending orders reader required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order expirer required")
	}
	ttl := params.PendingTTL
	if ttl <= 0 {
		ttl = defaultPendingOrderTTL
	}
	return &orderTTLJob{
		logg:       params.Logger,
		reader:     params.PendingReader,
		orders:     params.Orders,
		pendingTTL: ttl,
		now:        time.Now,
	}, nil
}

type orderTTLJob struct {
	logg       *logger.Logger
	reader     pendingOrderReader
	orders     orderExpirer
	pendingTTL time.Duration
	now        func() time.Time
}

func (j *orderTTLJob) Name() string { return "order-ttl" }

// Run expires every stale pending order it can. A failure on one order does
// not stop the sweep; failures are aggregated and reported together.
func (j *orderTTLJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.pendingTTL)
	stale, err := j.reader.FindPendingOrdersBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale pending orders: %w", err)
	}

	var errs error
	expired := 0
	for _, order := range stale {
		if ctx.Err() != nil {
			errs = multierr.Append(errs, ctx.Err())
			break
		}
		if err := j.orders.Expire(ctx, order.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expire order %s: %w", order.ID, err))
			continue
		}
		expired++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":  cutoff,
		"stale":   len(stale),
		"expired": expired,
	})
	j.logg.Info(logCtx, "order expiration sweep complete")
	return errs
}
