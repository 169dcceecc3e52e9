package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/taskwell/taskwell/internal/errs"
)

// testRequest is a minimal request with optional validation failure
type testRequest struct {
	name        string
	invalid     bool
	validateErr error
}

func (r testRequest) RequestName() string { return r.name }

func (r testRequest) Validate() error {
	if r.invalid {
		if r.validateErr != nil {
			return r.validateErr
		}
		return errs.Validation(errs.Field("name", "cannot be empty"))
	}
	return nil
}

// recordingBehavior tracks the order behaviors run in
type recordingBehavior struct {
	label string
	trace *[]string
}

func (b recordingBehavior) Handle(ctx context.Context, req Request, next Next) (any, error) {
	*b.trace = append(*b.trace, b.label+":before")
	out, err := next(ctx)
	*b.trace = append(*b.trace, b.label+":after")
	return out, err
}

func TestExecute_NilChainRunsHandler(t *testing.T) {
	got, err := Execute(context.Background(), nil, testRequest{name: "test.request"},
		func(ctx context.Context, req testRequest) (string, error) {
			return "ok", nil
		})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != "ok" {
		t.Errorf("Execute() = %q, want %q", got, "ok")
	}
}

func TestExecute_BehaviorOrder(t *testing.T) {
	var trace []string
	chain := NewChain(
		recordingBehavior{label: "outer", trace: &trace},
		recordingBehavior{label: "inner", trace: &trace},
	)

	_, err := Execute(context.Background(), chain, testRequest{name: "test.request"},
		func(ctx context.Context, req testRequest) (string, error) {
			trace = append(trace, "handler")
			return "ok", nil
		})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := []string{"outer:before", "inner:before", "handler", "inner:after", "outer:after"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v", trace, want)
		}
	}
}

func TestValidation_ShortCircuits(t *testing.T) {
	chain := NewChain(ValidationBehavior{})
	handlerRan := false

	_, err := Execute(context.Background(), chain, testRequest{name: "test.request", invalid: true},
		func(ctx context.Context, req testRequest) (string, error) {
			handlerRan = true
			return "ok", nil
		})

	if !errs.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if handlerRan {
		t.Error("Handler should never run when validation fails")
	}
}

func TestValidation_PassesValidRequests(t *testing.T) {
	chain := NewChain(ValidationBehavior{})

	got, err := Execute(context.Background(), chain, testRequest{name: "test.request"},
		func(ctx context.Context, req testRequest) (int, error) {
			return 7, nil
		})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != 7 {
		t.Errorf("Execute() = %d, want 7", got)
	}
}

func TestLogging_RecordsSuccessAndFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	chain := NewChain(LoggingBehavior{Logger: logger})

	_, err := Execute(context.Background(), chain, testRequest{name: "task.create"},
		func(ctx context.Context, req testRequest) (string, error) {
			return "ok", nil
		})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(buf.String(), "request completed") || !strings.Contains(buf.String(), "task.create") {
		t.Errorf("Expected success log entry, got %q", buf.String())
	}

	buf.Reset()
	_, err = Execute(context.Background(), chain, testRequest{name: "task.delete"},
		func(ctx context.Context, req testRequest) (string, error) {
			return "", errs.AccessDenied()
		})
	if !errs.IsAccessDenied(err) {
		t.Fatalf("Expected access denied to propagate, got %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "request failed") || !strings.Contains(out, "access_denied") {
		t.Errorf("Expected failure log entry with error kind, got %q", out)
	}
	if !strings.Contains(out, "duration") {
		t.Errorf("Expected latency in failure log entry, got %q", out)
	}
}

func TestLogging_DoesNotSwallowErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	chain := Default(logger, time.Second)

	sentinel := errors.New("store unavailable")
	_, err := Execute(context.Background(), chain, testRequest{name: "task.get"},
		func(ctx context.Context, req testRequest) (string, error) {
			return "", sentinel
		})
	if !errors.Is(err, sentinel) {
		t.Errorf("Expected sentinel error to propagate unchanged, got %v", err)
	}
}

func TestPerformance_WarnsOnSlowHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	chain := NewChain(PerformanceBehavior{Logger: logger, Threshold: time.Millisecond})

	_, err := Execute(context.Background(), chain, testRequest{name: "dashboard.summary"},
		func(ctx context.Context, req testRequest) (string, error) {
			time.Sleep(5 * time.Millisecond)
			return "ok", nil
		})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(buf.String(), "slow request") {
		t.Errorf("Expected slow request warning, got %q", buf.String())
	}
}

func TestPerformance_SilentUnderThreshold(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	chain := NewChain(PerformanceBehavior{Logger: logger, Threshold: time.Second})

	got, err := Execute(context.Background(), chain, testRequest{name: "task.get"},
		func(ctx context.Context, req testRequest) (string, error) {
			return "fast", nil
		})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != "fast" {
		t.Errorf("Execute() = %q, want %q", got, "fast")
	}
	if buf.Len() != 0 {
		t.Errorf("Expected no output under threshold, got %q", buf.String())
	}
}

func TestDefault_ValidationFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	chain := Default(logger, time.Second)

	_, err := Execute(context.Background(), chain, testRequest{name: "project.create", invalid: true},
		func(ctx context.Context, req testRequest) (string, error) {
			t.Fatal("handler must not run on validation failure")
			return "", nil
		})
	if !errs.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if !strings.Contains(buf.String(), "validation_failed") {
		t.Errorf("Expected validation failure outcome in log, got %q", buf.String())
	}
}
