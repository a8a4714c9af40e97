package slogstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/philipp01105/multistream/core"
	"github.com/philipp01105/multistream/formatter"
	"github.com/philipp01105/multistream/multistream"
)

type captureSink struct {
	multistream.MetadataRecorder
	bytes.Buffer
}

func (c *captureSink) Write(p []byte) (int, error) {
	return c.Buffer.Write(p)
}

func decode(t *testing.T, line string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid JSON line %q: %v", line, err)
	}
	return m
}

func TestHandler_FansOutByLevel(t *testing.T) {
	var all, errs bytes.Buffer
	d, err := multistream.New(
		multistream.ByHandle{Sink: &all},
		multistream.BySymbolicLevel{Sink: &errs, Name: "error"},
	)
	if err != nil {
		t.Fatal(err)
	}

	log := slog.New(NewHandler(Config{Output: d}))
	log.Info("started")
	log.Error("broken", "code", 7)

	lines := strings.Split(strings.TrimSpace(all.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("info destination got %d lines: %q", len(lines), all.String())
	}
	if got := decode(t, lines[0])["level"]; got != float64(30) {
		t.Errorf("first level = %v, want 30", got)
	}
	rec := decode(t, strings.TrimSpace(errs.String()))
	if rec["msg"] != "broken" || rec["level"] != float64(50) || rec["code"] != float64(7) {
		t.Errorf("error destination got %v", rec)
	}
}

func TestHandler_Enabled(t *testing.T) {
	h := NewHandler(Config{Output: &bytes.Buffer{}, Level: core.InfoLevel})
	ctx := context.Background()

	if h.Enabled(ctx, slog.LevelDebug) {
		t.Error("Debug should not be enabled when level is Info")
	}
	if !h.Enabled(ctx, slog.LevelInfo) {
		t.Error("Info should be enabled when level is Info")
	}
	if !h.Enabled(ctx, slog.LevelError) {
		t.Error("Error should be enabled when level is Info")
	}
}

func TestHandler_EnabledConsultsDispatcher(t *testing.T) {
	d, _ := multistream.New(multistream.BySymbolicLevel{Sink: &bytes.Buffer{}, Name: "warn"})
	h := NewHandler(Config{Output: d})
	ctx := context.Background()

	if h.Enabled(ctx, slog.LevelInfo) {
		t.Error("Info should be disabled when no destination takes it")
	}
	if !h.Enabled(ctx, slog.LevelWarn) {
		t.Error("Warn should be enabled")
	}
}

func TestHandler_Metadata(t *testing.T) {
	sink := &captureSink{}
	d, _ := multistream.New(multistream.ByHandle{Sink: sink})
	h := NewHandler(Config{Output: d})

	slog.New(h).With("svc", "api").Warn("slow", "ms", 250)

	if got := sink.LastLevel(); got != core.WarnLevel {
		t.Errorf("LastLevel = %v, want warn", got)
	}
	if got := sink.LastMsg(); got != "slow" {
		t.Errorf("LastMsg = %q, want %q", got, "slow")
	}
	fields := sink.LastFields()
	if len(fields) != 2 || fields[0].Key != "svc" || fields[1].Key != "ms" {
		t.Errorf("LastFields = %+v", fields)
	}
	if _, ok := sink.LastLogger().(*Handler); !ok {
		t.Errorf("LastLogger = %T, want *Handler", sink.LastLogger())
	}
}

func TestHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(Config{Output: &buf, Formatter: formatter.NewTextFormatter(formatter.Config{})})
	log := slog.New(h).WithGroup("req").With("id", 7)

	log.Info("done", slog.Group("resp", "status", 200), "err", errors.New("eof"))

	out := buf.String()
	for _, want := range []string{"req.id=7", "req.resp.status=200", "req.err=eof"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got: %s", want, out)
		}
	}
}

func TestHandler_InlineGroup(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(Config{Output: &buf, Formatter: formatter.NewTextFormatter(formatter.Config{})})
	slog.New(h).Info("x", slog.Group("", "a", 1), slog.Attr{})

	out := buf.String()
	if !strings.Contains(out, "a=1") {
		t.Errorf("inline group should join its parent, got: %s", out)
	}
}

func TestHandler_AddSource(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(Config{Output: &buf, AddSource: true})
	slog.New(h).Info("here")

	rec := decode(t, strings.TrimSpace(buf.String()))
	caller, ok := rec["caller"].(map[string]any)
	if !ok {
		t.Fatalf("caller missing: %v", rec)
	}
	if caller["file"] != "handler_test.go" {
		t.Errorf("caller file = %v, want handler_test.go", caller["file"])
	}
}

func TestLevelMapping(t *testing.T) {
	tests := []struct {
		in   slog.Level
		want core.Level
	}{
		{slog.LevelDebug - 4, core.TraceLevel},
		{slog.LevelDebug, core.DebugLevel},
		{slog.LevelInfo, core.InfoLevel},
		{slog.LevelInfo + 2, core.InfoLevel},
		{slog.LevelWarn, core.WarnLevel},
		{slog.LevelError, core.ErrorLevel},
		{LevelFatal, core.FatalLevel},
	}
	for _, tt := range tests {
		if got := FromSlogLevel(tt.in); got != tt.want {
			t.Errorf("FromSlogLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got := FromSlogLevel(ToSlogLevel(tt.want)); got != tt.want {
			t.Errorf("round trip of %v = %v", tt.want, got)
		}
	}
}
