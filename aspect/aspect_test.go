package aspect

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jonwraymond/logaspect/loggable"
	"github.com/jonwraymond/logaspect/observe"
	"github.com/jonwraymond/logaspect/observe/observetest"
)

const pkgPath = "github.com/jonwraymond/logaspect/aspect"

var errDeclined = errors.New("card declined")

type Order struct {
	loggable.Marker
	ID   string
	Card string `log:"replace=****"`
}

type Customer struct {
	loggable.Marker
	Name     string
	Password string `log:"omit"`
}

type Receipt struct {
	loggable.Marker
	Total int
}

type untagged struct {
	Note string
}

type malformed struct {
	loggable.Marker
	Field string `log:"mask"`
}

type Cart struct{}

func (c *Cart) Checkout(ctx context.Context, o Order, cust Customer) (Receipt, error) {
	return Receipt{Total: 42}, nil
}

func (c *Cart) Decline(ctx context.Context, o Order) error {
	return errDeclined
}

func (c *Cart) Explode(ctx context.Context, o Order) error {
	panic("boom")
}

func (c *Cart) Broken(ctx context.Context, m malformed) error {
	return nil
}

func (c *Cart) Malformed(ctx context.Context) (malformed, error) {
	return malformed{Field: "x"}, nil
}

func (c Cart) Size(ctx context.Context) (int, error) {
	return 3, nil
}

func newAspect(t *testing.T, level observe.LogLevel, options ...Option) (*Aspect, *observetest.Recorder) {
	t.Helper()
	rec := observetest.New(level)
	a, err := New(rec, DefaultOptions(), options...)
	require.NoError(t, err)
	return a, rec
}

func scopeKeys(s observetest.ScopeRecord) []string {
	keys := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		keys[i] = f.Key
	}
	return keys
}

// TestInvoke_AcquiresFourScopes verifies two loggable parameters and a
// loggable result yield exactly four scopes, acquired and released in order.
func TestInvoke_AcquiresFourScopes(t *testing.T) {
	a, rec := newAspect(t, observe.LevelTrace)
	cart := &Cart{}

	receipt, err := Invoke2(context.Background(), a, cart.Checkout,
		Order{ID: "o-1", Card: "4111"},
		Customer{Name: "jeff", Password: "hunter2"},
	)
	require.NoError(t, err)
	assert.Equal(t, 42, receipt.Total)

	require.Equal(t, 4, rec.Acquired())
	rec.AssertBalanced(t)

	scopes := rec.Scopes()
	assert.Equal(t, []string{"Customer_Name"}, scopeKeys(scopes[0]))
	assert.Equal(t, []string{"Order_ID", "Order_Card"}, scopeKeys(scopes[1]))
	assert.Equal(t, []string{"ClassName", "MethodName", "AssemblyName", ScopeKey}, scopeKeys(scopes[2]))
	assert.Equal(t, []string{"Receipt_Total"}, scopeKeys(scopes[3]))

	// parameter scopes close LIFO before the call, the result scope before
	// the method scope
	assert.Equal(t, []int{1, 0, 3, 2}, rec.ReleaseOrder())
}

// TestInvoke_Records verifies the executing and executed records and the
// fields they carry.
func TestInvoke_Records(t *testing.T) {
	a, rec := newAspect(t, observe.LevelTrace)
	cart := &Cart{}

	_, err := Invoke2(context.Background(), a, cart.Checkout, Order{ID: "o-1", Card: "4111"}, Customer{Name: "jeff"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Executing method Checkout on class Cart in assembly " + pkgPath + ".",
		"Executed method Checkout on class Cart in assembly " + pkgPath + ".",
	}, rec.Messages())

	entries := rec.All()
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, observe.LevelDebug.Zap(), e.Level)
	}

	executing := entries[0].ContextMap()
	assert.Equal(t, "o-1", executing["Order_ID"])
	assert.Equal(t, "****", executing["Order_Card"])
	assert.Equal(t, "jeff", executing["Customer_Name"])
	assert.NotContains(t, executing, "Customer_Password")
	assert.NotContains(t, executing, ScopeKey)
	assert.Equal(t, "Checkout", executing["MethodName"])

	executed := entries[1].ContextMap()
	assert.Equal(t, int64(42), executed["Receipt_Total"])
	assert.Equal(t, "Cart.Checkout ("+pkgPath+")", executed[ScopeKey])
	assert.NotContains(t, executed, "Order_ID")
}

// TestInvoke_ExecutionLevelDisabled verifies only the method scope is opened
// when execution records are disabled.
func TestInvoke_ExecutionLevelDisabled(t *testing.T) {
	a, rec := newAspect(t, observe.LevelInfo)
	cart := &Cart{}

	_, err := Invoke2(context.Background(), a, cart.Checkout, Order{ID: "o-1"}, Customer{Name: "jeff"})
	require.NoError(t, err)

	assert.Empty(t, rec.Messages())
	require.Equal(t, 1, rec.Acquired())
	assert.Equal(t, []string{"ClassName", "MethodName", "AssemblyName", ScopeKey}, scopeKeys(rec.Scopes()[0]))
	rec.AssertBalanced(t)
}

// TestInvoke_StateItemsLevelDisabled verifies records are written without
// state scopes.
func TestInvoke_StateItemsLevelDisabled(t *testing.T) {
	a, rec := newAspect(t, observe.LevelDebug)
	cart := &Cart{}

	_, err := Invoke2(context.Background(), a, cart.Checkout, Order{ID: "o-1"}, Customer{Name: "jeff"})
	require.NoError(t, err)

	assert.Len(t, rec.Messages(), 2)
	assert.Equal(t, 1, rec.Acquired())
	rec.AssertBalanced(t)
}

// TestInvoke_ErrorPropagates verifies a failing call skips the executed
// record and releases every scope.
func TestInvoke_ErrorPropagates(t *testing.T) {
	a, rec := newAspect(t, observe.LevelTrace)
	cart := &Cart{}

	err := Call1(context.Background(), a, cart.Decline, Order{ID: "o-1"})
	assert.ErrorIs(t, err, errDeclined)

	assert.Equal(t, []string{"Executing method Decline on class Cart in assembly " + pkgPath + "."}, rec.Messages())
	assert.Equal(t, 2, rec.Acquired())
	rec.AssertBalanced(t)
}

// TestInvoke_PanicPropagates verifies a panic unwinds through the aspect with
// its value intact and scopes released.
func TestInvoke_PanicPropagates(t *testing.T) {
	a, rec := newAspect(t, observe.LevelTrace)
	cart := &Cart{}

	assert.PanicsWithValue(t, "boom", func() {
		_ = Call1(context.Background(), a, cart.Explode, Order{ID: "o-1"})
	})

	assert.Len(t, rec.Messages(), 1)
	assert.Equal(t, 2, rec.Acquired())
	rec.AssertBalanced(t)
}

// TestInvoke_ParameterPlanError verifies a malformed parameter type fails
// before the call runs.
func TestInvoke_ParameterPlanError(t *testing.T) {
	a, rec := newAspect(t, observe.LevelTrace)
	ran := false

	_, err := a.Invoke(context.Background(), (*Cart).Broken, []any{Order{ID: "o-1"}, malformed{}},
		func(ctx context.Context) (any, error) {
			ran = true
			return nil, nil
		})
	require.ErrorIs(t, err, loggable.ErrInvalidTag)
	assert.False(t, ran)
	assert.Empty(t, rec.Messages())
	rec.AssertBalanced(t)
}

// TestInvoke_ResultPlanError verifies a malformed result type is reported and
// the executed record is still written.
func TestInvoke_ResultPlanError(t *testing.T) {
	a, rec := newAspect(t, observe.LevelTrace)
	cart := &Cart{}

	res, err := Invoke0(context.Background(), a, cart.Malformed)
	require.NoError(t, err)
	assert.Equal(t, "x", res.Field)

	rec.AssertLogged(t, observe.LevelWarn, "result state extraction failed")
	rec.AssertLogged(t, observe.LevelDebug, "Executed method Malformed")
	rec.AssertBalanced(t)
}

// TestInvoke_AbsentState verifies nil and unmarked values open no scopes.
func TestInvoke_AbsentState(t *testing.T) {
	a, rec := newAspect(t, observe.LevelTrace)
	cart := &Cart{}

	var missing *Order
	_, err := a.Invoke(context.Background(), cart.Decline, []any{nil, missing, untagged{Note: "n"}, 7},
		func(ctx context.Context) (any, error) { return (*Receipt)(nil), nil })
	require.NoError(t, err)

	assert.Equal(t, 1, rec.Acquired())
	assert.Len(t, rec.Messages(), 2)
}

// TestInvoke_ScopePropagates verifies the wrapped call sees the method scope.
func TestInvoke_ScopePropagates(t *testing.T) {
	a, rec := newAspect(t, observe.LevelInfo)
	cart := &Cart{}

	_, err := a.Invoke(context.Background(), cart.Decline, nil, func(ctx context.Context) (any, error) {
		assert.Equal(t, 1, observe.ScopeDepth(ctx))
		rec.Info(ctx, "inside")
		return nil, nil
	})
	require.NoError(t, err)

	entries := rec.FilterMessage("inside").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Cart.Decline ("+pkgPath+")", entries[0].ContextMap()[ScopeKey])
}

// TestInvoke_TemplateOrder verifies names follow placeholder order.
func TestInvoke_TemplateOrder(t *testing.T) {
	rec := observetest.New(observe.LevelTrace)
	opts := DefaultOptions()
	opts.ExecutingTemplate = "{assemblyname}/{ClassName}/{METHODNAME}"
	opts.ExecutedTemplate = "{MethodName} done by {ClassName}"
	opts.ScopeTemplate = "{MethodName}@{ClassName}"
	a, err := New(rec, opts)
	require.NoError(t, err)

	size, err := Invoke0(context.Background(), a, Cart{}.Size)
	require.NoError(t, err)
	assert.Equal(t, 3, size)

	assert.Equal(t, []string{pkgPath + "/Cart/Size", "Size done by Cart"}, rec.Messages())
	assert.Equal(t, "Size@Cart", rec.Scopes()[0].Fields[2].Value)
}

// TestInvoke_SpansAndMetrics verifies one span and one metric sample per
// invocation, with error status on failure.
func TestInvoke_SpansAndMetrics(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := observe.NewMetrics(mp.Meter("test"))
	require.NoError(t, err)

	a, rec := newAspect(t, observe.LevelDebug,
		WithTracer(observe.NewTracer(tp.Tracer("test"))),
		WithMetrics(metrics),
	)
	cart := &Cart{}
	ctx := context.Background()

	_, err = Invoke2(ctx, a, cart.Checkout, Order{}, Customer{})
	require.NoError(t, err)
	require.Error(t, Call1(ctx, a, cart.Decline, Order{}))

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "method.exec.Cart.Checkout", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, "method.exec.Cart.Decline", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)

	// the executed record is correlated with the invocation span
	executed := rec.FilterMessage("Executed method Checkout").All()
	require.Len(t, executed, 1)
	assert.Equal(t, spans[0].SpanContext().TraceID().String(), executed[0].ContextMap()["trace_id"])

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	assert.Equal(t, int64(2), sumCounter(rm, "method.invocations.total"))
	assert.Equal(t, int64(1), sumCounter(rm, "method.invocations.errors"))
}

// TestInvoke_PanicRecordedOnSpan verifies a panic marks the span as failed.
func TestInvoke_PanicRecordedOnSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	a, _ := newAspect(t, observe.LevelInfo, WithTracer(observe.NewTracer(tp.Tracer("test"))))
	cart := &Cart{}

	assert.Panics(t, func() {
		_ = Call1(context.Background(), a, cart.Explode, Order{})
	})

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, ErrPanicked.Error(), spans[0].Status().Description)
}

// TestInvoke_Concurrent verifies concurrent invocations keep scopes balanced.
func TestInvoke_Concurrent(t *testing.T) {
	a, rec := newAspect(t, observe.LevelTrace)
	cart := &Cart{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Invoke2(context.Background(), a, cart.Checkout, Order{ID: "o"}, Customer{Name: "c"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, rec.Acquired())
	rec.AssertBalanced(t)
	assert.Len(t, rec.Messages(), 100)
}

func TestInvoke_NilInputs(t *testing.T) {
	a, _ := newAspect(t, observe.LevelInfo)

	_, err := a.Invoke(context.Background(), nil, nil, func(context.Context) (any, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrNilMethod)

	_, err = a.Invoke(context.Background(), "Checkout", nil, func(context.Context) (any, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrNotFunc)

	_, err = a.InvokeMeta(context.Background(), observe.MethodMeta{Method: "m"}, nil, nil)
	assert.ErrorIs(t, err, ErrNilMethod)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrNilLogger)

	rec := observetest.New(observe.LevelInfo)

	opts := DefaultOptions()
	opts.ScopeTemplate = ""
	_, err = New(rec, opts)
	assert.ErrorIs(t, err, ErrEmptyTemplate)

	opts = DefaultOptions()
	opts.StateItemsLevel = observe.LogLevel(42)
	_, err = New(rec, opts)
	assert.ErrorIs(t, err, ErrInvalidLevel)

	opts = DefaultOptions()
	opts.ExecutionLevel = observe.LevelNone
	a, err := New(rec, opts)
	require.NoError(t, err)
	assert.Equal(t, observe.LevelNone, a.Options().ExecutionLevel)
	assert.Same(t, rec, a.Logger())
}

func TestFromObserver(t *testing.T) {
	_, err := FromObserver(nil, DefaultOptions())
	assert.ErrorIs(t, err, ErrNilObserver)

	obs, err := observe.NewObserver(context.Background(), observe.Config{ServiceName: "aspect-test"})
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	a, err := FromObserver(obs, DefaultOptions())
	require.NoError(t, err)

	size, err := Invoke0(context.Background(), a, Cart{}.Size)
	require.NoError(t, err)
	assert.Equal(t, 3, size)
}

func sumCounter(rm metricdata.ResourceMetrics, name string) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}
