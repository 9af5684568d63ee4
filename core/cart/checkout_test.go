package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inmemstore "github.com/trezcool/edumaster/storage/inmem"
)

type fakePayer struct {
	mu      sync.Mutex
	calls   []string
	failOn  map[string]error
	block   chan struct{}
	started chan struct{}
}

func (p *fakePayer) PayLesson(_ context.Context, id string) error {
	if p.started != nil {
		p.started <- struct{}{}
	}
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, id)
	return p.failOn[id]
}

func TestCheckout_happyPath(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, inmemstore.New())
	require.NoError(t, m.Add(ctx, lsn("L1", 10)))
	require.NoError(t, m.Add(ctx, lsn("L2", 20)))
	assert.Equal(t, 30.0, m.TotalPrice())

	payer := &fakePayer{}
	paid, err := Checkout(ctx, m, payer)
	require.NoError(t, err)

	assert.Equal(t, []string{"L1", "L2"}, payer.calls)
	assert.Equal(t, []string{"L1", "L2"}, paid)
	assert.Equal(t, 0, m.Count())
}

func TestCheckout_partialFailure(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, inmemstore.New())
	require.NoError(t, m.Add(ctx, lsn("L1", 10)))
	require.NoError(t, m.Add(ctx, lsn("L2", 20)))
	require.NoError(t, m.Add(ctx, lsn("L3", 30)))

	payErr := errors.New("payment declined")
	payer := &fakePayer{failOn: map[string]error{"L2": payErr}}
	paid, err := Checkout(ctx, m, payer)

	require.Error(t, err)
	assert.ErrorIs(t, err, payErr)
	var coErr *CheckoutError
	require.True(t, errors.As(err, &coErr))
	assert.Equal(t, []string{"L1"}, coErr.Paid)
	assert.Equal(t, "L2", coErr.LessonID)
	assert.Equal(t, []string{"L1"}, paid)
	assert.Equal(t, "paying lesson L2: payment declined (already paid: L1)", err.Error())

	assert.Equal(t, []string{"L1", "L2"}, payer.calls, "stops at the first failure")
	assert.Equal(t, 3, m.Count(), "cart is left untouched")
}

func TestCheckout_emptyCart(t *testing.T) {
	m := newManager(t, inmemstore.New())
	_, err := Checkout(context.Background(), m, &fakePayer{})
	assert.Equal(t, ErrEmptyCart, err)
}

func TestCheckout_singleFlight(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, inmemstore.New())
	require.NoError(t, m.Add(ctx, lsn("L1", 10)))

	payer := &fakePayer{block: make(chan struct{}), started: make(chan struct{}, 1)}
	done := make(chan error, 1)
	go func() {
		_, err := Checkout(ctx, m, payer)
		done <- err
	}()

	<-payer.started
	_, err := Checkout(ctx, m, &fakePayer{})
	assert.Equal(t, ErrCheckoutInProgress, err)

	close(payer.block)
	require.NoError(t, <-done)
	assert.Equal(t, 0, m.Count())
}
