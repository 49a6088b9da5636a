package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/logger"
)

const (
	defaultReconcileMinAge  = 30 * time.Second
	defaultReconcileBatch   = 50
	defaultReconcileTimeout = 45 * time.Second
)

type pendingTransactionReader interface {
	FindPendingTransactions(ctx context.Context, lastCheckedBefore time.Time, limit int) ([]models.PaymentTransaction, error)
}

type transactionChecker interface {
	CheckTransaction(ctx context.Context, providerTxnID string) error
}

// PixReconcileJobParams configure the gateway reconciliation job.
type PixReconcileJobParams struct {
	Logger   *logger.Logger
	Reader   pendingTransactionReader
	Payments transactionChecker
	MinAge   time.Duration
	Batch    int
	Timeout  time.Duration
}

// NewPixReconcileJob builds the job that re-queries the PIX gateway for
// charges whose webhook never arrived. MinAge keeps freshly created charges
// out of the sweep so the webhook gets a chance to land first.
func NewPixReconcileJob(params PixReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reader == nil {
		return nil, fmt.Errorf("pending transactions reader required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("transaction checker required")
	}
	minAge := params.MinAge
	if minAge <= 0 {
		minAge = defaultReconcileMinAge
	}
	batch := params.Batch
	if batch <= 0 {
		batch = defaultReconcileBatch
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultReconcileTimeout
	}
	return &pixReconcileJob{
		logg:     params.Logger,
		reader:   params.Reader,
		payments: params.Payments,
		minAge:   minAge,
		batch:    batch,
		timeout:  timeout,
		now:      time.Now,
	}, nil
}

type pixReconcileJob struct {
	logg     *logger.Logger
	reader   pendingTransactionReader
	payments transactionChecker
	minAge   time.Duration
	batch    int
	timeout  time.Duration
	now      func() time.Time
}

func (j *pixReconcileJob) Name() string { return "pix-reconcile" }

func (j *pixReconcileJob) Run(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	cutoff := j.now().UTC().Add(-j.minAge)
	pending, err := j.reader.FindPendingTransactions(runCtx, cutoff, j.batch)
	if err != nil {
		return fmt.Errorf("query pending transactions: %w", err)
	}

	var errs error
	checked := 0
	for _, txn := range pending {
		if runCtx.Err() != nil {
			errs = multierr.Append(errs, runCtx.Err())
			break
		}
		if err := j.payments.CheckTransaction(runCtx, txn.ProviderTxnID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reconcile transaction %s: %w", txn.ProviderTxnID, err))
			continue
		}
		checked++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"pending": len(pending),
		"checked": checked,
	})
	j.logg.Info(logCtx, "pix reconciliation sweep complete")
	return errs
}
