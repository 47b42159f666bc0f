package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"sales-analytics/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(config.LoggerConfig{Level: "info", Format: "json"}, &buf)

	ctx := WithRequestID(context.Background(), "req-42")
	logger.InfoContext(ctx, "query finished",
		"report", "summary",
		"rows", 3,
		"duration", 1500*time.Millisecond,
		"error", errors.New("boom"),
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}

	checks := map[string]any{
		"level":      "info",
		"message":    "query finished",
		"report":     "summary",
		"rows":       float64(3),
		"error":      "boom",
		"request_id": "req-42",
		"service":    "sales-analytics",
	}
	for key, want := range checks {
		if entry[key] != want {
			t.Errorf("%s = %v, want %v", key, entry[key], want)
		}
	}
}

func TestNewLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(config.LoggerConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected nothing below warn, got %q", buf.String())
	}

	logger.Warn("shown")
	if !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Error("warn should be logged")
	}
	if logger.Enabled(context.Background(), -4) {
		t.Error("debug should be disabled")
	}
}

func TestLogger_WithGroupAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(config.LoggerConfig{Level: "debug", Format: "json"}, &buf)

	logger.With("component", "store").WithGroup("pool").Debug("stats", "in_use", 2)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if entry["component"] != "store" {
		t.Errorf("component = %v", entry["component"])
	}
	if entry["pool.in_use"] != float64(2) {
		t.Errorf("pool.in_use = %v", entry["pool.in_use"])
	}
}

func TestLogger_AttrsAfterGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(config.LoggerConfig{Level: "debug", Format: "json"}, &buf)

	logger.WithGroup("pool").With("size", 4).Info("stats", "in_use", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if entry["pool.size"] != float64(4) {
		t.Errorf("pool.size = %v", entry["pool.size"])
	}
	if entry["pool.in_use"] != float64(3) {
		t.Errorf("pool.in_use = %v", entry["pool.in_use"])
	}
	if _, ok := entry["in_use"]; ok {
		t.Error("in_use should stay inside the pool group")
	}
}

func TestRequestIDContext(t *testing.T) {
	if GetRequestID(context.Background()) != "" {
		t.Error("empty context should have no request id")
	}
	if GetRequestID(WithRequestID(context.Background(), "abc")) != "abc" {
		t.Error("request id not round-tripped")
	}
}

func TestRecordQuery(t *testing.T) {
	before := testutil.ToFloat64(ReportQueryErrors.WithLabelValues("leaderboard", "duckdb"))

	RecordQuery("leaderboard", "duckdb", 10*time.Millisecond, nil)
	RecordQuery("leaderboard", "duckdb", 10*time.Millisecond, errors.New("fail"))

	after := testutil.ToFloat64(ReportQueryErrors.WithLabelValues("leaderboard", "duckdb"))
	if after-before != 1 {
		t.Errorf("error counter delta = %v, want 1", after-before)
	}
}
