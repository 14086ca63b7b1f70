package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/birthday-heatmap/internal/config"
	"github.com/tartampluch/birthday-heatmap/internal/engine"
	"github.com/tartampluch/birthday-heatmap/internal/server"
	"github.com/zalando/go-keyring"
)

// HeatmapApp encapsulates the UI state, preferences, and background refresh.
type HeatmapApp struct {
	App            fyne.App
	MainWindow     fyne.Window
	SettingsWindow fyne.Window
	Preferences    fyne.Preferences
	I18nBundle     *i18n.Bundle
	Localizer      *i18n.Localizer
	Ctx            context.Context

	Server   *server.HeatmapServer
	Fetcher  engine.SourceFetcher
	Clock    engine.Clock    // Stamps exported feeds
	Calendar engine.Calendar // Zero value means Gregorian

	SupportedLanguages []string
	configChan         chan string

	// Current heatmap, written by loaders and the background worker.
	resultMu  sync.RWMutex
	result    engine.Result
	hasResult bool
	failed    bool

	statusLabel *widget.Label
	monthGrid   *fyne.Container
}

// NewHeatmapApp constructs the application and wires dependencies.
func NewHeatmapApp(a fyne.App, ctx context.Context, srv *server.HeatmapServer, fetcher engine.SourceFetcher) *HeatmapApp {
	a.SetIcon(theme.GridIcon())

	return &HeatmapApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Server:             srv,
		Fetcher:            fetcher,
		Clock:              engine.RealClock{},
		SupportedLanguages: config.SupportedLanguages,
		configChan:         make(chan string, config.ChannelBufferSize),
	}
}

// Run launches the HTTP server, the background worker and the main window.
// It blocks until the application quits.
func (app *HeatmapApp) Run() {
	app.SetupI18n()
	app.watchPreferences()

	go func() {
		if err := app.Server.Start(app.Ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)

			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, app.Server.Port)))
		}
	}()

	app.ShowMainWindow()
	if app.isFirstRun() {
		app.loadPeople(engine.ExamplePeople())
	}

	go app.backgroundWorker()
	app.App.Run()
}

// isFirstRun reports whether this version has never run before and records it.
func (app *HeatmapApp) isFirstRun() bool {
	last := app.Preferences.String(config.PrefLastRun)
	app.Preferences.SetString(config.PrefLastRun, config.Version)
	return last == ""
}

// watchPreferences monitors changes to settings to trigger immediate updates.
func (app *HeatmapApp) watchPreferences() {
	app.Preferences.AddChangeListener(func() {
		select {
		case app.configChan <- config.PrefInterval:
		default:
		}
	})
}

// generator builds a pipeline bound to the app's collaborators.
func (app *HeatmapApp) generator() *engine.Generator {
	return &engine.Generator{
		Clock:    app.Clock,
		Fetcher:  app.Fetcher,
		Calendar: app.Calendar,
	}
}

// refreshInterval returns the configured period, or 0 when auto-refresh is off.
func (app *HeatmapApp) refreshInterval() time.Duration {
	val := app.Preferences.IntWithFallback(config.PrefInterval, config.DefaultRefreshMin)
	if val <= config.DisabledInterval {
		return 0
	}
	return time.Duration(val) * time.Minute
}

// backgroundWorker refreshes from the configured source on schedule.
func (app *HeatmapApp) backgroundWorker() {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	app.performSync(false)

	var ticker *time.Ticker
	var tick <-chan time.Time
	current := time.Duration(-1)

	schedule := func(d time.Duration) {
		if d == current {
			return
		}
		log.Info(config.MsgUpdateSync, config.LogKeyOld, current, config.LogKeyNew, d)
		current = d
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
		if d <= 0 {
			log.Info(config.MsgAutoRefreshOff)
			return
		}
		ticker = time.NewTicker(d)
		tick = ticker.C
	}
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	schedule(app.refreshInterval())
	log.Info(config.MsgWorkerStart, config.LogKeyInterval, current)

	for {
		select {
		case <-app.Ctx.Done():
			log.Info(config.MsgWorkerStop)
			return
		case <-app.configChan:
			schedule(app.refreshInterval())
		case <-tick:
			app.performSync(false)
		}
	}
}

// sourceConfigured reports whether cfg points somewhere.
func sourceConfigured(cfg engine.SourceConfig) bool {
	switch cfg.Mode {
	case config.SourceModeLocal:
		return cfg.LocalPath != ""
	case config.SourceModeWeb:
		return cfg.WebURL != ""
	}
	return false
}

// performSync runs the pipeline on the configured source and applies the result.
func (app *HeatmapApp) performSync(manual bool) {
	slog.Info(config.MsgSyncReq,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyManual, manual)

	cfg := app.loadSourceConfig()
	if !sourceConfigured(cfg) {
		slog.Debug(config.MsgNoSource, config.LogKeyComponent, config.CompUI)
		return
	}

	res, err := app.generator().Run(app.Ctx, cfg)
	if err != nil {
		slog.Error(config.MsgRunFailed, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		app.resultMu.Lock()
		app.failed = true
		app.resultMu.Unlock()
		fyne.Do(app.refreshStatus)
		if manual {
			app.App.SendNotification(fyne.NewNotification(config.TitleSyncError, app.GetMsg(config.TKeyNotifError)))
		}
		return
	}

	app.applyResult(res)
	if manual {
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifSuccess)))
	}
}

// loadPeople builds and applies the heatmap of an in-memory people list.
func (app *HeatmapApp) loadPeople(people []engine.Person) {
	app.applyResult(app.generator().Build(people))
}

// loadDocument decodes a document opened by the user and applies it. The
// format comes from the file name, then from the content. The source format
// preference does not apply here.
func (app *HeatmapApp) loadDocument(name string, data []byte) error {
	people, err := engine.Decode("", name, string(data))
	if err != nil {
		return err
	}
	app.loadPeople(people)
	return nil
}

// reset drops the current heatmap.
func (app *HeatmapApp) reset() {
	app.resultMu.Lock()
	app.result = engine.Result{}
	app.hasResult = false
	app.failed = false
	app.resultMu.Unlock()

	app.publish(app.generator().Build(nil))
	fyne.Do(app.refreshView)
}

// applyResult stores res, pushes it to the server and redraws the window.
func (app *HeatmapApp) applyResult(res engine.Result) {
	app.resultMu.Lock()
	app.result = res
	app.hasResult = true
	app.failed = false
	app.resultMu.Unlock()

	slog.Info(config.MsgResultApplied,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyRecords, res.Stats.Records,
		config.LogKeyCounted, res.Stats.Counted)

	app.publish(res)
	fyne.Do(app.refreshView)
}

func (app *HeatmapApp) publish(res engine.Result) {
	if app.Server == nil {
		return
	}
	if err := app.Server.Publish(app.generator(), res); err != nil {
		slog.Error(config.ErrPublish, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
	}
}

// Result returns the heatmap currently shown and whether one is loaded.
func (app *HeatmapApp) Result() (engine.Result, bool) {
	app.resultMu.RLock()
	defer app.resultMu.RUnlock()
	return app.result, app.hasResult
}

// statusText describes the current state for the status line.
func (app *HeatmapApp) statusText() string {
	app.resultMu.RLock()
	defer app.resultMu.RUnlock()

	switch {
	case app.failed:
		return app.getMsgOr(config.TKeyStatusError, config.FallbackStatusError)
	case !app.hasResult || len(app.result.People) == 0:
		return app.getMsgOr(config.TKeyStatusEmpty, config.FallbackStatusEmpty)
	}

	count, counted := len(app.result.People), app.result.Stats.Counted
	return app.GetCountMsg(config.TKeyStatusLoaded, count,
		map[string]any{"Count": count, "Counted": counted},
		fmt.Sprintf(config.FallbackStatusLoaded, count, counted))
}

// ShowMainWindow creates the heatmap window, or focuses it when already open.
func (app *HeatmapApp) ShowMainWindow() {
	if app.MainWindow != nil {
		app.MainWindow.RequestFocus()
		return
	}

	w := app.App.NewWindow(app.GetMsg(config.TKeyWinTitle))
	app.MainWindow = w

	app.statusLabel = widget.NewLabel("")
	app.statusLabel.Wrapping = fyne.TextWrapWord
	app.monthGrid = container.NewGridWithColumns(config.LayoutMonthColumns)

	content := container.NewBorder(
		container.NewVBox(app.buildToolbar(w), app.statusLabel),
		nil, nil, nil,
		container.NewVScroll(container.NewPadded(app.monthGrid)),
	)

	w.SetContent(content)
	w.Resize(fyne.NewSize(config.MainWindowWidth, config.MainWindowHeight))
	w.SetMaster()
	w.SetOnClosed(func() {
		app.MainWindow = nil
		app.statusLabel = nil
		app.monthGrid = nil
	})

	app.refreshView()
	w.Show()
}

// buildToolbar wires the main window actions.
func (app *HeatmapApp) buildToolbar(w fyne.Window) fyne.CanvasObject {
	open := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnOpen), theme.FolderOpenIcon(), func() {
		app.showOpenDialog(w)
	})
	example := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnExample), theme.DocumentIcon(), func() {
		app.loadPeople(engine.ExamplePeople())
	})
	reset := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnReset), theme.ContentClearIcon(), app.reset)
	refresh := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnRefresh), theme.ViewRefreshIcon(), func() {
		go app.performSync(true)
	})
	settings := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSettings), theme.SettingsIcon(), app.ShowSettingsWindow)

	return container.NewHBox(open, example, reset, refresh, settings)
}

// loadSourceConfig assembles the engine configuration from preferences and the keyring.
func (app *HeatmapApp) loadSourceConfig() engine.SourceConfig {
	cfg := engine.SourceConfig{
		Mode:      app.Preferences.String(config.PrefSourceMode),
		LocalPath: app.Preferences.String(config.PrefLocalPath),
		WebURL:    app.Preferences.String(config.PrefSourceURL),
		WebUser:   app.Preferences.String(config.PrefUsername),
		Format:    app.Preferences.String(config.PrefFormat),
	}

	if cfg.WebUser != "" {
		if p, err := keyring.Get(config.KeyringService, cfg.WebUser); err == nil {
			cfg.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, cfg.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}

	return cfg
}
