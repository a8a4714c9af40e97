package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/philipp01105/multistream/asyncsink"
	"github.com/philipp01105/multistream/core"
	"github.com/philipp01105/multistream/formatter"
	"github.com/philipp01105/multistream/journald"
	"github.com/philipp01105/multistream/logger"
	"github.com/philipp01105/multistream/metrics"
	"github.com/philipp01105/multistream/multistream"
)

// maxLineSize bounds a single input record.
const maxLineSize = 1 << 20

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Read log lines from stdin and dispatch them",
	Long: `Read newline-delimited log records from stdin and write each one to every
destination whose level is at or below the record's level.

The level is taken from the "level" key of JSON records, either as a number
(trace=10 ... fatal=60) or as a name. Lines without a usable level are info.`,
	Example: `  app | multistream run --dest stdout --dest errors.log=error
  app | multistream run -c multistream.toml --metrics-addr :9100`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringArray("dest", nil, "Destination as path[=level]; stdout, stderr and journal are recognised (can be repeated)")
	runCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address")
	runCmd.Flags().String("override", "", "Send every record at or above this level to all destinations")
	runCmd.Flags().Bool("async", false, "Write --dest destinations through a background queue")
	viper.BindPFlag("metrics_addr", runCmd.Flags().Lookup("metrics-addr"))
	viper.BindPFlag("override", runCmd.Flags().Lookup("override"))

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if flags, _ := cmd.Flags().GetStringArray("dest"); len(flags) > 0 {
		async, _ := cmd.Flags().GetBool("async")
		cfg.Destinations = cfg.Destinations[:0]
		for _, f := range flags {
			dc := parseDestFlag(f)
			dc.Async = async
			cfg.Destinations = append(cfg.Destinations, dc)
		}
		if err := cfg.validate(); err != nil {
			return err
		}
	}

	log := newDiagLogger(cmd.ErrOrStderr(), core.MustParseLevel(cfg.LogLevel))

	var collectors *metrics.Collectors
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		collectors = metrics.NewCollectors(reg)
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server stopped", logger.Err(err))
			}
		}()
		defer srv.Close()
		log.Info("serving metrics", logger.String("addr", cfg.MetricsAddr))
	}

	d, closeAll, err := openDestinations(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), collectors)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeAll(); err != nil {
			log.Warn("closing destinations", logger.Err(err))
		}
	}()

	if cfg.Override != "" {
		d = d.Clone(core.MustParseLevel(cfg.Override))
	}
	for _, dest := range d.Destinations() {
		log.Debug("destination", logger.String("level", dest.Level.String()))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := dispatchLines(ctx, cmd.InOrStdin(), d, log)
	log.Info("done", logger.Int("records", stats.records), logger.Int("failed", stats.failed))
	return err
}

// openDestinations opens every configured destination and registers it
// with a new Dispatcher. The returned func drains async queues and
// closes the opened files, newest first.
func openDestinations(cfg *Config, stdout, stderr io.Writer, c *metrics.Collectors) (*multistream.Dispatcher, func() error, error) {
	var closers []io.Closer
	closeAll := func() error {
		var errs error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = multierr.Append(errs, closers[i].Close())
		}
		return errs
	}

	d, _ := multistream.New()
	for _, dc := range cfg.Destinations {
		var w io.Writer
		switch dc.Path {
		case "stdout", "-":
			w = stdout
		case "stderr":
			w = stderr
		case "journal":
			if !journald.Available() {
				closeAll()
				return nil, nil, fmt.Errorf("destination %s: systemd journal not available", dc.Name)
			}
			w = journald.New(journald.Config{})
		default:
			f, err := os.OpenFile(dc.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				closeAll()
				return nil, nil, fmt.Errorf("open destination %s: %w", dc.Name, err)
			}
			closers = append(closers, f)
			w = f
		}
		if dc.Async {
			s := asyncsink.New(asyncsink.Config{Writer: w, BufferSize: dc.BufferSize})
			closers = append(closers, s)
			w = s
		}
		if c != nil {
			w = c.Wrap(dc.Name, w)
		}
		if _, err := d.Add(dc.spec(w)); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("destination %s: %w", dc.Name, err)
		}
	}
	return d, closeAll, nil
}

type dispatchStats struct {
	records int
	failed  int
}

// dispatchLines writes each line of r to d at the line's level. A
// failed write is logged and does not stop the loop.
func dispatchLines(ctx context.Context, r io.Reader, d *multistream.Dispatcher, log *logger.Logger) (dispatchStats, error) {
	var (
		stats   dispatchStats
		payload []byte
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}

		meta := lineMetadata(line)
		payload = append(append(payload[:0], line...), '\n')
		if _, err := d.WriteLevel(meta, payload); err != nil {
			stats.failed++
			log.Warn("dispatch failed", logger.Err(err))
		}
		stats.records++
	}
	return stats, sc.Err()
}

// lineMetadata derives metadata from a JSON record: the level from
// "level", the message from "msg" and one field per other top-level
// key except "time", in key order. Lines that are not JSON objects are
// info records whose message is the line itself.
func lineMetadata(line []byte) multistream.Metadata {
	meta := multistream.Metadata{Level: core.InfoLevel}

	var rec map[string]any
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	if dec.Decode(&rec) != nil || rec == nil || dec.More() {
		meta.Msg = string(line)
		return meta
	}

	if l, ok := recordLevel(rec["level"]); ok {
		meta.Level = l
	}
	delete(rec, "level")
	if msg, ok := rec["msg"].(string); ok {
		meta.Msg = msg
		delete(rec, "msg")
	}
	delete(rec, "time")

	if len(rec) > 0 {
		keys := slices.Sorted(maps.Keys(rec))
		meta.Fields = make([]core.Field, 0, len(keys))
		for _, k := range keys {
			meta.Fields = append(meta.Fields, jsonField(k, rec[k]))
		}
	}
	return meta
}

// recordLevel reads a level given as a name, a numeric string or a
// JSON number. Integral numbers outside the int32 range clamp to it so
// they stay ordered against the named levels and below silent;
// fractional numbers are not a level.
func recordLevel(v any) (core.Level, bool) {
	switch v := v.(type) {
	case string:
		var l core.Level
		err := l.UnmarshalText([]byte(v))
		return l, err == nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return clampLevel(float64(n)), true
		}
		// ParseFloat reports overflow as ±Inf with an error
		f, err := v.Float64()
		if (err != nil && !math.IsInf(f, 0)) || f != math.Trunc(f) {
			return 0, false
		}
		return clampLevel(f), true
	}
	return 0, false
}

func clampLevel(f float64) core.Level {
	switch {
	case f > math.MaxInt32:
		return core.Level(math.MaxInt32)
	case f < math.MinInt32:
		return core.Level(math.MinInt32)
	}
	return core.Level(f)
}

func jsonField(key string, v any) core.Field {
	switch v := v.(type) {
	case string:
		return core.Field{Key: key, Type: core.StringType, Str: v}
	case bool:
		f := core.Field{Key: key, Type: core.BoolType}
		if v {
			f.Int64 = 1
		}
		return f
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return core.Field{Key: key, Type: core.Int64Type, Int64: n}
		}
		if x, err := v.Float64(); err == nil {
			return core.Field{Key: key, Type: core.Float64Type, Float64: x}
		}
		return core.Field{Key: key, Type: core.StringType, Str: v.String()}
	default:
		return core.Field{Key: key, Type: core.AnyType, Any: v}
	}
}

func newDiagLogger(w io.Writer, level core.Level) *logger.Logger {
	d, _ := multistream.New(multistream.ByExplicitLevel{Sink: w, Level: level})
	return logger.NewBuilder().
		WithOutput(d).
		WithLevel(level).
		WithFormatter(formatter.NewTextFormatter(formatter.Config{})).
		WithFields(logger.String("component", "multistream")).
		Build()
}
