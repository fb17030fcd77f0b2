package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: ComponentSavings,
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	logger.Info("transaction recorded", FieldAmount, int64(500))

	line := buf.String()
	if !strings.Contains(line, "component=savings") {
		t.Fatalf("missing component attr: %q", line)
	}
	if !strings.Contains(line, "amount=500") {
		t.Fatalf("missing caller attr: %q", line)
	}
}

func TestLoggerDefaultsAndRebind(t *testing.T) {
	logger := New(Config{})
	if logger.Component() != ComponentApp {
		t.Fatalf("default component = %q", logger.Component())
	}

	worker := logger.WithComponent(ComponentWorker)
	if worker.Component() != ComponentWorker {
		t.Fatalf("rebound component = %q", worker.Component())
	}
	if logger.Component() != ComponentApp {
		t.Fatalf("rebind mutated parent: %q", logger.Component())
	}

	if got := NewComponent(ComponentHTTP).Component(); got != ComponentHTTP {
		t.Fatalf("NewComponent = %q", got)
	}
}
