package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tartampluch/birthday-heatmap/internal/config"
)

// SourceConfig describes where the people list comes from.
type SourceConfig struct {
	Mode      string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath string // Path to a .csv or .vcf file
	WebURL    string // HTTP(S) URL serving a .csv or .vcf document
	WebUser   string // HTTP Basic Auth Username
	WebPass   string // HTTP Basic Auth Password
	Format    string // Optional format tag (text/csv, text/vcard); detected when empty
}

// Result is the outcome of one heatmap run.
type Result struct {
	Calendar Calendar
	People   []Person
	Table    *CountTable
	Heatmap  Heatmap
	Stats    AggregateStats
}

// Generator runs the acquire, decode, aggregate and normalize pipeline.
type Generator struct {
	Clock    Clock         // Used for DTSTAMP in exports.
	Fetcher  SourceFetcher // Required for config.SourceModeWeb.
	Calendar Calendar      // Zero value means Gregorian().
}

// calendar returns the configured calendar or the Gregorian default.
func (g *Generator) calendar() Calendar {
	if g.Calendar.Len() == 0 {
		return Gregorian()
	}
	return g.Calendar
}

// Run acquires the configured source and builds its heatmap.
func (g *Generator) Run(ctx context.Context, cfg SourceConfig) (Result, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgRunStarted)

	reader, name, err := g.acquireStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%s: %w", config.ErrSourceRead, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	data, err := io.ReadAll(io.LimitReader(reader, config.MaxInputSize))
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%s: %w", config.ErrSourceRead, err)
	}

	people, err := Decode(cfg.Format, name, string(data))
	if err != nil {
		return Result{}, err
	}

	res := g.Build(people)
	log.Info(config.MsgRunFinished,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyRecords, res.Stats.Records),
			slog.Int(config.LogKeyCounted, res.Stats.Counted),
			slog.Int(config.LogKeySkipped, res.Stats.Unparseable),
			slog.Int(config.LogKeyOutOfRange, res.Stats.OutOfRange),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return res, nil
}

// Build aggregates and normalizes an already decoded people list.
// It has no hidden state: the same input always yields the same Result.
func (g *Generator) Build(people []Person) Result {
	cal := g.calendar()
	table, stats := AggregateWithStats(cal, people)

	slog.Debug(config.MsgAggregated,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyRecords, stats.Records,
		config.LogKeyCounted, stats.Counted)

	return Result{
		Calendar: cal,
		People:   people,
		Table:    table,
		Heatmap:  Normalize(table),
		Stats:    stats,
	}
}

// Decode resolves the format of a document and parses it.
// An explicit tag wins, then the extension of name, then content sniffing.
func Decode(tag, name, text string) ([]Person, error) {
	format, err := resolveFormat(tag, name, text)
	if err != nil {
		return nil, err
	}

	people, err := Parse(format, text)
	if err != nil {
		return nil, err
	}

	slog.Debug(config.MsgParsed,
		config.LogKeyComponent, config.CompParser,
		config.LogKeyFormat, string(format),
		config.LogKeyRecords, len(people))
	return people, nil
}

func resolveFormat(tag, name, text string) (Format, error) {
	if tag != "" {
		return ParseFormat(tag)
	}
	if name != "" {
		if f, err := DetectFormat(name); err == nil {
			return f, nil
		}
	}
	return SniffFormat(text), nil
}

// acquireStream opens the configured source. The returned name is used for
// extension based format detection.
func (g *Generator) acquireStream(ctx context.Context, cfg SourceConfig) (io.ReadCloser, string, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, "", errors.New(config.ErrLocalPathEmpty)
		}
		f, err := os.Open(cfg.LocalPath)
		return f, cfg.LocalPath, err
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, "", errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, "", errors.New(config.ErrFetcherMissing)
		}
		rc, err := g.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
		return rc, cfg.WebURL, err
	default:
		return nil, "", fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}
