package zapstream

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/multistream/core"
	"github.com/philipp01105/multistream/multistream"
)

type captureSink struct {
	multistream.MetadataRecorder
	bytes.Buffer
}

func (c *captureSink) Write(p []byte) (int, error) {
	return c.Buffer.Write(p)
}

type syncBuffer struct {
	bytes.Buffer
	synced int
}

func (s *syncBuffer) Sync() error {
	s.synced++
	return nil
}

func decodeLines(t *testing.T, s string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestCore_FansOutByLevel(t *testing.T) {
	var all, errs bytes.Buffer
	d, err := multistream.New(
		multistream.ByHandle{Sink: &all},
		multistream.BySymbolicLevel{Sink: &errs, Name: "error"},
	)
	if err != nil {
		t.Fatal(err)
	}

	log := zap.New(NewCore(Config{Output: d}))
	log.Debug("dropped")
	log.Info("hello", zap.Int("n", 1))
	log.Error("boom")

	recs := decodeLines(t, all.String())
	if len(recs) != 2 {
		t.Fatalf("info destination got %d records, want 2: %s", len(recs), all.String())
	}
	if recs[0]["level"] != float64(30) || recs[0]["msg"] != "hello" || recs[0]["n"] != float64(1) {
		t.Errorf("first record = %v", recs[0])
	}
	if _, ok := recs[0]["time"].(float64); !ok {
		t.Errorf("time is not epoch millis: %v", recs[0]["time"])
	}

	errRecs := decodeLines(t, errs.String())
	if len(errRecs) != 1 || errRecs[0]["level"] != float64(50) {
		t.Errorf("error destination = %s", errs.String())
	}
}

func TestCore_EnabledFollowsDispatcher(t *testing.T) {
	d, _ := multistream.New(multistream.BySymbolicLevel{Sink: &bytes.Buffer{}, Name: "warn"})
	c := NewCore(Config{Output: d})

	if c.Enabled(zapcore.InfoLevel) {
		t.Error("Enabled(info) = true with only a warn destination")
	}
	if !c.Enabled(zapcore.WarnLevel) {
		t.Error("Enabled(warn) = false")
	}

	c = NewCore(Config{Output: d, Level: zapcore.ErrorLevel})
	if c.Enabled(zapcore.WarnLevel) {
		t.Error("configured level ignored")
	}
}

func TestCore_SetsMetadata(t *testing.T) {
	sink := &captureSink{}
	d, _ := multistream.New(multistream.ByExplicitLevel{Sink: sink, Level: core.DebugLevel})

	c := NewCore(Config{Output: d})
	log := zap.New(c).With(zap.String("svc", "api"))
	log.Warn("slow", zap.Duration("took", 2*time.Second), zap.Error(errors.New("timeout")), zap.Bool("retry", true))

	if sink.LastLevel() != core.WarnLevel {
		t.Errorf("LastLevel() = %v, want warn", sink.LastLevel())
	}
	if sink.LastMsg() != "slow" {
		t.Errorf("LastMsg() = %q", sink.LastMsg())
	}
	if _, ok := sink.LastLogger().(*Core); !ok {
		t.Errorf("LastLogger() = %T, want *Core", sink.LastLogger())
	}

	got := map[string]string{}
	for _, f := range sink.LastFields() {
		got[f.Key] = f.StringValue()
	}
	want := map[string]string{"svc": "api", "took": "2s", "error": "timeout", "retry": "true"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("field %s = %q, want %q", k, got[k], v)
		}
	}

	rec := decodeLines(t, sink.String())[0]
	if rec["svc"] != "api" || rec["took"] != float64(2*time.Second) {
		t.Errorf("record = %v", rec)
	}
}

func TestCore_WithDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	d, _ := multistream.New(multistream.ByHandle{Sink: &buf})
	parent := zap.New(NewCore(Config{Output: d}))

	parent.With(zap.String("child", "yes")).Info("child")
	parent.Info("parent")

	recs := decodeLines(t, buf.String())
	if recs[0]["child"] != "yes" {
		t.Errorf("child record missing field: %v", recs[0])
	}
	if _, ok := recs[1]["child"]; ok {
		t.Errorf("parent record has child field: %v", recs[1])
	}
}

func TestCore_PropagatesWriteError(t *testing.T) {
	sinkErr := errors.New("closed")
	d, _ := multistream.New(multistream.ByHandle{Sink: failWriter{sinkErr}})
	c := NewCore(Config{Output: d})

	err := c.Write(zapcore.Entry{Level: zapcore.InfoLevel, Message: "x"}, nil)
	if !errors.Is(err, sinkErr) {
		t.Errorf("Write() error = %v, want %v", err, sinkErr)
	}
}

type failWriter struct{ err error }

func (f failWriter) Write(p []byte) (int, error) { return 0, f.err }

func TestCore_Sync(t *testing.T) {
	out := &syncBuffer{}
	c := NewCore(Config{Output: out})

	if err := c.Sync(); err != nil {
		t.Fatal(err)
	}
	if err := c.Write(zapcore.Entry{Level: zapcore.DPanicLevel, Message: "bad"}, nil); err != nil {
		t.Fatal(err)
	}
	if out.synced != 2 {
		t.Errorf("synced = %d, want 2", out.synced)
	}
}

func TestLevelMapping(t *testing.T) {
	tests := []struct {
		zap  zapcore.Level
		want core.Level
	}{
		{zapcore.DebugLevel - 1, core.TraceLevel},
		{zapcore.DebugLevel, core.DebugLevel},
		{zapcore.InfoLevel, core.InfoLevel},
		{zapcore.WarnLevel, core.WarnLevel},
		{zapcore.ErrorLevel, core.ErrorLevel},
		{zapcore.DPanicLevel, core.FatalLevel},
		{zapcore.PanicLevel, core.FatalLevel},
		{zapcore.FatalLevel, core.FatalLevel},
	}

	for _, tt := range tests {
		t.Run(tt.zap.String(), func(t *testing.T) {
			if got := FromZapLevel(tt.zap); got != tt.want {
				t.Errorf("FromZapLevel(%v) = %v, want %v", tt.zap, got, tt.want)
			}
		})
	}

	if ToZapLevel(core.TraceLevel) != zapcore.DebugLevel {
		t.Error("trace should map to zap debug")
	}
	if ToZapLevel(core.Level(45)) != zapcore.WarnLevel {
		t.Error("45 should map to zap warn")
	}
	if ToZapLevel(core.SilentLevel) != zapcore.FatalLevel {
		t.Error("silent should map to zap fatal")
	}
}
