package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"fyne.io/fyne/v2/app"
	"github.com/tartampluch/birthday-heatmap/internal/config"
	"github.com/tartampluch/birthday-heatmap/internal/engine"
	"github.com/tartampluch/birthday-heatmap/internal/server"
	"github.com/tartampluch/birthday-heatmap/internal/ui"
)

// options holds the parsed command line.
type options struct {
	version   bool
	debug     bool
	headless  bool
	serve     bool
	input     string
	format    string
	calendar  string
	port      string
	exportICS string
	exportVCF string
}

// main delegates to runMain so deferred calls (closing the log file) run
// before os.Exit.
func main() {
	os.Exit(runMain(os.Args[1:]))
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain(args []string) int {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return config.ExitCodeSuccess
		}
		return config.ExitCodeError
	}

	if opts.version {
		printVersion(os.Stdout)
		return config.ExitCodeSuccess
	}

	// Headless mode prints the heatmap on stdout, so logs go to stderr.
	console := io.Writer(os.Stdout)
	if opts.headless {
		console = os.Stderr
	}
	if logCloser := setupLogging(opts.debug, console); logCloser != nil {
		defer func() { _ = logCloser.Close() }()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	run := runGUI
	if opts.headless {
		run = func(ctx context.Context, opts options) error {
			return runHeadless(ctx, opts, os.Stdout)
		}
	}

	if err := run(ctx, opts); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// parseFlags reads the command line into options.
func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet(config.AppID, flag.ContinueOnError)
	fs.SetOutput(output)

	fs.BoolVar(&opts.version, config.FlagVersion, false, config.FlagDescVersion)
	fs.BoolVar(&opts.debug, config.FlagDebug, false, config.FlagDescDebug)
	fs.BoolVar(&opts.headless, config.FlagHeadless, false, config.FlagDescHeadless)
	fs.BoolVar(&opts.serve, config.FlagServe, false, config.FlagDescServe)
	fs.StringVar(&opts.input, config.FlagInput, "", config.FlagDescInput)
	fs.StringVar(&opts.format, config.FlagFormat, "", config.FlagDescFormat)
	fs.StringVar(&opts.calendar, config.FlagCalendar, "", config.FlagDescCalendar)
	fs.StringVar(&opts.port, config.FlagPort, "", config.FlagDescPort)
	fs.StringVar(&opts.exportICS, config.FlagExportICS, "", config.FlagDescExportICS)
	fs.StringVar(&opts.exportVCF, config.FlagExportVCF, "", config.FlagDescExportVCF)

	err := fs.Parse(args)
	return opts, err
}

// runGUI initializes the Fyne application and blocks until the window closes.
func runGUI(ctx context.Context, opts options) error {
	a := app.NewWithID(config.AppID)

	port := opts.port
	if port == "" {
		port = a.Preferences().StringWithFallback(config.PrefServerPort, config.DefaultPort)
	}

	gui := ui.NewHeatmapApp(a, ctx, server.NewHeatmapServer(port), engine.NewHTTPFetcher())
	if opts.calendar != "" {
		cal, err := loadCalendar(opts.calendar)
		if err != nil {
			return err
		}
		gui.Calendar = cal
	}

	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		a.Quit()
	}()

	gui.Run()
	return nil
}

// runHeadless builds the heatmap once, prints it to out, writes the requested
// exports and, with -serve, publishes the documents until ctx is done.
func runHeadless(ctx context.Context, opts options, out io.Writer) error {
	gen := &engine.Generator{
		Clock:   engine.RealClock{},
		Fetcher: engine.NewHTTPFetcher(),
	}
	if opts.calendar != "" {
		cal, err := loadCalendar(opts.calendar)
		if err != nil {
			return err
		}
		gen.Calendar = cal
	}

	var res engine.Result
	if opts.input == "" {
		res = gen.Build(engine.ExamplePeople())
	} else {
		var err error
		res, err = gen.Run(ctx, sourceFor(opts))
		if err != nil {
			return err
		}
	}

	if err := printHeatmap(out, res); err != nil {
		return err
	}

	if opts.exportICS != "" {
		if err := writeExport(opts.exportICS, func(w io.Writer) error {
			data, err := gen.EncodeCalendar(res.People)
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		}); err != nil {
			return err
		}
	}
	if opts.exportVCF != "" {
		if err := writeExport(opts.exportVCF, func(w io.Writer) error {
			return engine.EncodeCards(w, res.People)
		}); err != nil {
			return err
		}
	}

	if !opts.serve {
		return nil
	}

	port := opts.port
	if port == "" {
		port = config.DefaultPort
	}
	srv := server.NewHeatmapServer(port)
	if err := srv.Publish(gen, res); err != nil {
		return err
	}
	return srv.Start(ctx)
}

// sourceFor maps -input to a source: http(s) URLs are fetched, anything else is a path.
func sourceFor(opts options) engine.SourceConfig {
	if strings.HasPrefix(opts.input, config.SchemeHTTP+"://") || strings.HasPrefix(opts.input, config.SchemeHTTPS+"://") {
		return engine.SourceConfig{Mode: config.SourceModeWeb, WebURL: opts.input, Format: opts.format}
	}
	return engine.SourceConfig{Mode: config.SourceModeLocal, LocalPath: opts.input, Format: opts.format}
}

// loadCalendar reads a YAML calendar definition from path.
func loadCalendar(path string) (engine.Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return engine.Calendar{}, fmt.Errorf("%s: %w", config.ErrCalendarOverride, err)
	}
	defer func() { _ = f.Close() }()

	cal, err := engine.LoadCalendar(f)
	if err != nil {
		return engine.Calendar{}, fmt.Errorf("%s: %w", config.ErrCalendarOverride, err)
	}
	slog.Info(config.MsgCalendarLoaded,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyPath, path)
	return cal, nil
}

// writeExport creates path and fills it with encode.
func writeExport(path string, encode func(io.Writer) error) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, config.FilePermExport)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrExportWrite, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%s: %w", config.ErrExportWrite, cerr)
		}
	}()

	if err := encode(f); err != nil {
		return fmt.Errorf("%s: %w", config.ErrExportWrite, err)
	}
	slog.Info(config.MsgExported,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyPath, path)
	return nil
}

// printHeatmap renders one line per month: name, total, weight and a glyph per day.
func printHeatmap(w io.Writer, res engine.Result) error {
	if _, err := fmt.Fprintf(w, config.TextHeaderFormat,
		len(res.People), res.Stats.Counted, res.Stats.Unparseable, res.Stats.OutOfRange); err != nil {
		return err
	}

	for i, m := range res.Calendar.Months() {
		var days strings.Builder
		for _, v := range res.Heatmap.DayIntensities[i] {
			days.WriteRune(dayGlyph(v))
		}
		if _, err := fmt.Fprintf(w, config.TextRowFormat,
			m.Name, res.Table.MonthTotal(i), res.Heatmap.MonthWeights[i], days.String()); err != nil {
			return err
		}
	}
	return nil
}

// dayGlyph maps a day intensity to a shade.
func dayGlyph(intensity float64) rune {
	if intensity == engine.EmptyIntensity {
		return config.TextEmptyGlyph
	}
	glyphs := []rune(config.TextGlyphs)
	idx := int((intensity - config.MinDayIntensity) / config.TextGlyphStep)
	return glyphs[max(0, min(idx, len(glyphs)-1))]
}

// printVersion outputs the build information.
func printVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging installs a JSON slog logger writing to console and, when
// possible, to a log file in the user's cache directory.
func setupLogging(debugMode bool, console io.Writer) io.Closer {
	writers := []io.Writer{console}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
