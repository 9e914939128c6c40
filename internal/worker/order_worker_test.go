package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nilsb/holtab-provisioner/internal/model"
	"github.com/nilsb/holtab-provisioner/internal/service"
)

// fakeOrderStore holds unresolved orders in memory and applies the same
// retry-cap cut as the SQL query.
type fakeOrderStore struct {
	orders  map[string]*model.Order
	handled map[string]bool
}

func newFakeOrderStore(orders ...*model.Order) *fakeOrderStore {
	s := &fakeOrderStore{orders: map[string]*model.Order{}, handled: map[string]bool{}}
	for _, o := range orders {
		s.orders[o.ID] = o
	}
	return s
}

func (s *fakeOrderStore) Unhandled(_ context.Context, limit, retryCap int) ([]model.Order, error) {
	var out []model.Order
	for _, o := range s.orders {
		if s.handled[o.ID] || o.QueueCount >= retryCap {
			continue
		}
		out = append(out, *o)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeOrderStore) IncrementQueue(_ context.Context, id string) error {
	s.orders[id].QueueCount++
	return nil
}

func (s *fakeOrderStore) MarkHandled(_ context.Context, id string) error {
	s.handled[id] = true
	return nil
}

type fakeFiler struct {
	attempts int
	err      error
}

func (f *fakeFiler) FileOrder(context.Context, *model.Order) error {
	f.attempts++
	return f.err
}

func TestSweepMarksFiledOrderHandled(t *testing.T) {
	store := newFakeOrderStore(&model.Order{ID: "o1", No: "234567"})
	filer := &fakeFiler{}
	w := NewOrderWorker(store, filer, time.Minute, 3)

	require.NoError(t, w.Sweep(context.Background()))

	assert.Equal(t, 1, filer.attempts)
	assert.True(t, store.handled["o1"])
	assert.Equal(t, 0, store.orders["o1"].QueueCount)
}

func TestSweepStopsAtRetryCap(t *testing.T) {
	store := newFakeOrderStore(&model.Order{ID: "o1", No: "234567"})
	filer := &fakeFiler{err: service.ErrNoMatch}
	w := NewOrderWorker(store, filer, time.Minute, 3)

	for i := 0; i < 5; i++ {
		require.NoError(t, w.Sweep(context.Background()))
	}

	// Three no-match attempts exhaust the budget; later sweeps skip the order.
	assert.Equal(t, 3, filer.attempts)
	assert.Equal(t, 3, store.orders["o1"].QueueCount)
	assert.False(t, store.handled["o1"])
}

func TestSweepTransientErrorKeepsRetryBudget(t *testing.T) {
	store := newFakeOrderStore(&model.Order{ID: "o1", No: "234567"})
	filer := &fakeFiler{err: errors.New("directory unavailable")}
	w := NewOrderWorker(store, filer, time.Minute, 3)

	for i := 0; i < 5; i++ {
		require.NoError(t, w.Sweep(context.Background()))
	}

	// Every sweep retries because transient failures do not count as attempts.
	assert.Equal(t, 5, filer.attempts)
	assert.Equal(t, 0, store.orders["o1"].QueueCount)
}

func TestSweepRecoversAfterTransientFailures(t *testing.T) {
	store := newFakeOrderStore(&model.Order{ID: "o1", No: "234567", QueueCount: 2})
	filer := &fakeFiler{err: errors.New("directory unavailable")}
	w := NewOrderWorker(store, filer, time.Minute, 3)

	require.NoError(t, w.Sweep(context.Background()))
	filer.err = nil
	require.NoError(t, w.Sweep(context.Background()))

	assert.True(t, store.handled["o1"])
	assert.Equal(t, 2, store.orders["o1"].QueueCount)
}
