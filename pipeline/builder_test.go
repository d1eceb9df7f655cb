package pipeline

import (
	"context"
	"errors"
	"testing"
)

type tracingInterceptor struct {
	name  string
	order int
	trace *[]string
}

func (i *tracingInterceptor) Name() string { return i.name }

func (i *tracingInterceptor) DefaultOrder() int { return i.order }

func (i *tracingInterceptor) Intercept(ctx context.Context, env Envelope, next Next) (Outcome, error) {
	*i.trace = append(*i.trace, i.name)
	return next(ctx)
}

func countingHandler(calls *int, out Outcome) Handler {
	return func(ctx context.Context, env Envelope) (Outcome, error) {
		*calls++
		return out, nil
	}
}

func TestBuild_ExecutionOrder(t *testing.T) {
	var trace []string
	calls := 0

	p, err := Build(
		func(ctx context.Context, env Envelope) (Outcome, error) {
			calls++
			trace = append(trace, "handler")
			return Ok("done"), nil
		},
		Bind(&tracingInterceptor{name: "third", order: 0, trace: &trace}),
		Bind(&tracingInterceptor{name: "first", order: -100, trace: &trace}),
		Bind(&tracingInterceptor{name: "second", order: -50, trace: &trace}),
	)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	out, err := p(context.Background(), NewRequest(searchQuery{Term: "x"}))
	if err != nil {
		t.Fatalf("pipeline error = %v", err)
	}
	if !out.IsSuccess() {
		t.Errorf("IsSuccess() = false, want true")
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}

	want := []string{"first", "second", "third", "handler"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Errorf("trace[%d] = %q, want %q", i, trace[i], want[i])
		}
	}
}

func TestBuild_EqualOrderKeepsRegistrationOrder(t *testing.T) {
	var trace []string
	calls := 0

	p, err := Build(
		countingHandler(&calls, Ok(0)),
		Bind(&tracingInterceptor{name: "a", order: 0, trace: &trace}),
		Bind(&tracingInterceptor{name: "b", order: 0, trace: &trace}),
		Bind(&tracingInterceptor{name: "c", order: 0, trace: &trace}),
	)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if _, err := p(context.Background(), NewRequest(searchQuery{})); err != nil {
		t.Fatalf("pipeline error = %v", err)
	}

	want := []string{"a", "b", "c"}
	for i := range want {
		if trace[i] != want[i] {
			t.Errorf("trace[%d] = %q, want %q", i, trace[i], want[i])
		}
	}
}

func TestBuild_WithOrderOverridesDefault(t *testing.T) {
	var trace []string
	calls := 0

	// "late" declares order -100 but the binding site demotes it.
	p, err := Build(
		countingHandler(&calls, Ok(0)),
		Bind(&tracingInterceptor{name: "late", order: -100, trace: &trace}).WithOrder(50),
		Bind(&tracingInterceptor{name: "early", order: 0, trace: &trace}),
	)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if _, err := p(context.Background(), NewRequest(searchQuery{})); err != nil {
		t.Fatalf("pipeline error = %v", err)
	}

	if trace[0] != "early" || trace[1] != "late" {
		t.Errorf("trace = %v, want [early late]", trace)
	}
}

func TestBuild_ShortCircuit(t *testing.T) {
	calls := 0
	cached := Ok("cached")

	shortCircuit := NewInterceptorFunc("short", func(ctx context.Context, env Envelope, next Next) (Outcome, error) {
		return cached, nil
	})

	p, err := Build(countingHandler(&calls, Ok("fresh")), Bind(shortCircuit))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	out, err := p(context.Background(), NewRequest(searchQuery{}))
	if err != nil {
		t.Fatalf("pipeline error = %v", err)
	}

	if calls != 0 {
		t.Errorf("handler calls = %d, want 0", calls)
	}
	res, ok := out.(Result[string])
	if !ok {
		t.Fatalf("outcome is %T, want Result[string]", out)
	}
	if res.Value() != "cached" {
		t.Errorf("Value() = %q, want cached", res.Value())
	}
}

func TestBuild_MultipleNextCalls(t *testing.T) {
	calls := 0

	repeat := NewInterceptorFunc("repeat", func(ctx context.Context, env Envelope, next Next) (Outcome, error) {
		if _, err := next(ctx); err != nil {
			return nil, err
		}
		return next(ctx)
	})

	p, err := Build(countingHandler(&calls, Ok(1)), Bind(repeat))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if _, err := p(context.Background(), NewRequest(searchQuery{})); err != nil {
		t.Fatalf("pipeline error = %v", err)
	}
	if calls != 2 {
		t.Errorf("handler calls = %d, want 2", calls)
	}
}

func TestBuild_ContextFlowsInward(t *testing.T) {
	type ctxKey struct{}

	inject := NewInterceptorFunc("inject", func(ctx context.Context, env Envelope, next Next) (Outcome, error) {
		return next(context.WithValue(ctx, ctxKey{}, "present"))
	})

	p, err := Build(
		func(ctx context.Context, env Envelope) (Outcome, error) {
			v, _ := ctx.Value(ctxKey{}).(string)
			return Ok(v), nil
		},
		Bind(inject),
	)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	out, err := p(context.Background(), NewRequest(searchQuery{}))
	if err != nil {
		t.Fatalf("pipeline error = %v", err)
	}
	if res := out.(Result[string]); res.Value() != "present" {
		t.Errorf("handler saw ctx value %q, want present", res.Value())
	}
}

func TestBuild_DoesNotMutateBindings(t *testing.T) {
	var trace []string
	bindings := []Binding{
		Bind(&tracingInterceptor{name: "z", order: 10, trace: &trace}),
		Bind(&tracingInterceptor{name: "a", order: -10, trace: &trace}),
	}

	calls := 0
	if _, err := Build(countingHandler(&calls, Ok(0)), bindings...); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if bindings[0].Interceptor().Name() != "z" || bindings[1].Interceptor().Name() != "a" {
		t.Error("Build reordered the caller's binding slice")
	}
}

func TestBuild_Idempotent(t *testing.T) {
	calls := 0
	h := countingHandler(&calls, Ok(0))

	p1, err := Build(h)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	p2, err := Build(h)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	req := NewRequest(searchQuery{})
	if _, err := p1(context.Background(), req); err != nil {
		t.Fatalf("p1 error = %v", err)
	}
	if _, err := p2(context.Background(), req); err != nil {
		t.Fatalf("p2 error = %v", err)
	}
	if calls != 2 {
		t.Errorf("handler calls = %d, want 2", calls)
	}
}

func TestBuild_NilHandler(t *testing.T) {
	_, err := Build(nil)

	if !errors.Is(err, ErrNilHandler) {
		t.Errorf("Build(nil) error = %v, want ErrNilHandler", err)
	}
}

func TestBuild_NilInterceptor(t *testing.T) {
	calls := 0
	_, err := Build(countingHandler(&calls, Ok(0)), Binding{})

	if !errors.Is(err, ErrNilInterceptor) {
		t.Errorf("Build() error = %v, want ErrNilInterceptor", err)
	}
}

func TestBuild_HandlerFaultPropagates(t *testing.T) {
	var trace []string
	fault := errors.New("backend unreachable")

	p, err := Build(
		func(ctx context.Context, env Envelope) (Outcome, error) {
			return nil, fault
		},
		Bind(&tracingInterceptor{name: "outer", order: 0, trace: &trace}),
	)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	_, err = p(context.Background(), NewRequest(searchQuery{}))
	if !errors.Is(err, fault) {
		t.Errorf("pipeline error = %v, want %v", err, fault)
	}
}
