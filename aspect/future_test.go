package aspect

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/logaspect/observe"
)

func TestAsync_ResultAndRecords(t *testing.T) {
	a, rec := newAspect(t, observe.LevelTrace)
	cart := &Cart{}

	fut := Async2(context.Background(), a, cart.Checkout, Order{ID: "o-1"}, Customer{Name: "jeff"})
	receipt, err := fut.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, receipt.Total)

	assert.Len(t, rec.Messages(), 2)
	assert.Equal(t, 4, rec.Acquired())
	rec.AssertBalanced(t)
}

func TestAsync_Error(t *testing.T) {
	a, rec := newAspect(t, observe.LevelTrace)
	cart := &Cart{}

	fut := a.InvokeAsync(context.Background(), cart.Decline, []any{Order{}}, func(ctx context.Context) (any, error) {
		return nil, cart.Decline(ctx, Order{})
	})
	<-fut.Done()
	_, err := fut.Wait(context.Background())
	assert.ErrorIs(t, err, errDeclined)
	rec.AssertBalanced(t)
}

func TestAsync_PanicReraisedByWait(t *testing.T) {
	a, rec := newAspect(t, observe.LevelTrace)
	cart := &Cart{}

	fut := a.InvokeAsync(context.Background(), cart.Explode, []any{Order{}}, func(ctx context.Context) (any, error) {
		return nil, cart.Explode(ctx, Order{})
	})
	assert.PanicsWithValue(t, "boom", func() {
		_, _ = fut.Wait(context.Background())
	})
	rec.AssertBalanced(t)
}

func TestAsync_WaitCanceled(t *testing.T) {
	a, _ := newAspect(t, observe.LevelInfo)
	release := make(chan struct{})
	slow := func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	}

	fut := Async(context.Background(), a, slow)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := fut.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	v, err := fut.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}
