package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/reservodojo/trainer/internal/config"
)

func TestSetup_ProductionUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(&config.Config{Environment: "production", LogLevel: "info"}, &buf)

	log.Info("session started", "seed", 42)
	out := buf.String()
	if !strings.Contains(out, `"msg":"session started"`) || !strings.Contains(out, `"seed":42`) {
		t.Errorf("expected JSON output, got %q", out)
	}
}

func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(&config.Config{Environment: "development", LogLevel: "error"}, &buf)

	log.Info("not visible")
	log.Error("visible")
	out := buf.String()
	if strings.Contains(out, "not visible") {
		t.Errorf("info record leaked past error level: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("error record missing: %q", out)
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	WithError(base, errors.New("disk full")).Warn("append failed")
	out := buf.String()
	if !strings.Contains(out, "error=") || !strings.Contains(out, "disk full") {
		t.Errorf("error attribute missing: %q", out)
	}
}
