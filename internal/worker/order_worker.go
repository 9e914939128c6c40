package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nilsb/holtab-provisioner/internal/model"
	"github.com/nilsb/holtab-provisioner/internal/service"
)

type orderSource interface {
	Unhandled(ctx context.Context, limit, retryCap int) ([]model.Order, error)
	IncrementQueue(ctx context.Context, id string) error
	MarkHandled(ctx context.Context, id string) error
}

type filer interface {
	FileOrder(ctx context.Context, o *model.Order) error
}

// OrderWorker periodically retries filing for unresolved orders. Each
// no-match attempt consumes one unit of the order's retry budget; an order at
// the cap is abandoned and never swept again.
type OrderWorker struct {
	orders    orderSource
	filer     filer
	interval  time.Duration
	batchSize int
	retryCap  int
}

func NewOrderWorker(orders orderSource, filer filer, interval time.Duration, retryCap int) *OrderWorker {
	return &OrderWorker{
		orders:    orders,
		filer:     filer,
		interval:  interval,
		batchSize: 20,
		retryCap:  retryCap,
	}
}

func (w *OrderWorker) Start(ctx context.Context) {
	slog.Info("starting order sweep worker", "interval", w.interval, "retry_cap", w.retryCap)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("order sweep worker stopped")
			return
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				slog.Error("order sweep failed", "error", err)
			}
		}
	}
}

// Sweep runs one pass over the unresolved orders.
func (w *OrderWorker) Sweep(ctx context.Context) error {
	orders, err := w.orders.Unhandled(ctx, w.batchSize, w.retryCap)
	if err != nil {
		return err
	}

	for _, order := range orders {
		err := w.filer.FileOrder(ctx, &order)
		switch {
		case err == nil:
			if err := w.orders.MarkHandled(ctx, order.ID); err != nil {
				slog.Error("failed to mark order handled", "order", order.No, "error", err)
			}
		case errors.Is(err, service.ErrNoMatch):
			if err := w.orders.IncrementQueue(ctx, order.ID); err != nil {
				slog.Error("failed to count filing attempt", "order", order.No, "error", err)
				continue
			}
			if order.QueueCount+1 >= w.retryCap {
				slog.Warn("abandoning order after retry cap", "order", order.No, "attempts", order.QueueCount+1)
			}
		default:
			// Transient directory failure: try again next sweep without
			// consuming retry budget.
			slog.Error("filing attempt failed", "order", order.No, "error", err)
		}
	}
	return nil
}
