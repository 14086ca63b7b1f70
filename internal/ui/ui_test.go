package ui

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/birthday-heatmap/internal/config"
	"github.com/tartampluch/birthday-heatmap/internal/engine"
	"github.com/tartampluch/birthday-heatmap/internal/server"
	"github.com/zalando/go-keyring"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates engine.SourceFetcher using testify/mock.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockClock controls time for deterministic exports.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// -----------------------------------------------------------------------------
// Test Setup Helper
// -----------------------------------------------------------------------------

// setupTestApp initializes a headless Fyne app with mocked dependencies.
func setupTestApp(t *testing.T) (*HeatmapApp, *MockFetcher, context.CancelFunc) {
	t.Helper()
	keyring.MockInit()

	a := test.NewApp()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	fetcher := new(MockFetcher)
	app := NewHeatmapApp(a, ctx, server.NewHeatmapServer("0"), fetcher)
	app.Clock = MockClock{CurrentTime: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)}

	// Run() is skipped in tests.
	app.SetupI18n()

	return app, fetcher, cancel
}

func setLanguage(app *HeatmapApp, lang string) {
	app.Preferences.SetString(config.PrefLanguage, lang)
	app.UpdateLocalizer()
}

func serve(t *testing.T, app *HeatmapApp, route string) *http.Response {
	t.Helper()
	w := httptest.NewRecorder()
	app.Server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, route, nil))
	return w.Result()
}

// -----------------------------------------------------------------------------
// Localization Tests
// -----------------------------------------------------------------------------

func TestLocalization_Switching(t *testing.T) {
	app, _, _ := setupTestApp(t)
	assert.ElementsMatch(t, config.SupportedLanguages, app.SupportedLanguages)

	setLanguage(app, "en")
	assert.Equal(t, "Settings", app.GetMsg(config.TKeyBtnSettings))

	setLanguage(app, "fr")
	assert.Equal(t, "Paramètres", app.GetMsg(config.TKeyBtnSettings))

	assert.Equal(t, "no_such_key", app.GetMsg("no_such_key"))
}

func TestLocalization_MonthNames(t *testing.T) {
	app, _, _ := setupTestApp(t)

	setLanguage(app, "en")
	assert.Equal(t, "May", app.MonthName("May"))

	setLanguage(app, "fr")
	assert.Equal(t, "Mai", app.MonthName("May"))
	assert.Equal(t, "Décembre", app.MonthName("December"))
	assert.Equal(t, "Thermidor", app.MonthName("Thermidor"), "Custom calendar names are kept")
}

func TestLocalization_Plurals(t *testing.T) {
	app, _, _ := setupTestApp(t)
	setLanguage(app, "en")

	app.loadPeople([]engine.Person{{Name: "Solo", Birthday: "1990-05-02"}})
	assert.Equal(t, "1 person, 1 birthday placed", app.statusText())

	app.loadPeople(engine.ExamplePeople())
	assert.Equal(t, "32 people, 32 birthdays placed", app.statusText())
}

// -----------------------------------------------------------------------------
// Configuration & Preferences Tests
// -----------------------------------------------------------------------------

func TestConfiguration_Mapping(t *testing.T) {
	app, _, _ := setupTestApp(t)

	app.Preferences.SetString(config.PrefSourceMode, config.SourceModeWeb)
	app.Preferences.SetString(config.PrefSourceURL, "https://secure.example.com/people.csv")
	app.Preferences.SetString(config.PrefUsername, "admin")
	app.Preferences.SetString(config.PrefFormat, config.MimeCSV)
	require.NoError(t, keyring.Set(config.KeyringService, "admin", "hunter2"))

	cfg := app.loadSourceConfig()

	assert.Equal(t, engine.SourceConfig{
		Mode:    config.SourceModeWeb,
		WebURL:  "https://secure.example.com/people.csv",
		WebUser: "admin",
		WebPass: "hunter2",
		Format:  config.MimeCSV,
	}, cfg)
}

func TestConfiguration_RefreshInterval(t *testing.T) {
	app, _, _ := setupTestApp(t)

	assert.Equal(t, time.Duration(config.DefaultRefreshMin)*time.Minute, app.refreshInterval())

	app.Preferences.SetInt(config.PrefInterval, 15)
	assert.Equal(t, 15*time.Minute, app.refreshInterval())

	app.Preferences.SetInt(config.PrefInterval, config.DisabledInterval)
	assert.Zero(t, app.refreshInterval(), "0 disables auto-refresh")
}

func TestConfiguration_WorkerSignal(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.watchPreferences()

	app.Preferences.SetInt(config.PrefInterval, 120)

	select {
	case key := <-app.configChan:
		assert.Equal(t, config.PrefInterval, key)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Changing interval should notify background worker")
	}
}

func TestConfiguration_FirstRun(t *testing.T) {
	app, _, _ := setupTestApp(t)

	assert.True(t, app.isFirstRun())
	assert.False(t, app.isFirstRun())
	assert.Equal(t, config.Version, app.Preferences.String(config.PrefLastRun))
}

// -----------------------------------------------------------------------------
// Sync Logic Integration Tests
// -----------------------------------------------------------------------------

func TestPerformSync_Success(t *testing.T) {
	app, fetcher, _ := setupTestApp(t)
	setLanguage(app, "en")
	app.ShowMainWindow()

	fetcher.On("Fetch", mock.Anything, "http://test.local/people.csv", "", "").
		Return(io.NopCloser(strings.NewReader("A;2000-05-02\nB;1999-05-02\nC;1970-01-01\n")), nil)

	app.Preferences.SetString(config.PrefSourceMode, config.SourceModeWeb)
	app.Preferences.SetString(config.PrefSourceURL, "http://test.local/people.csv")

	app.performSync(true)

	fetcher.AssertExpectations(t)

	res, ok := app.Result()
	require.True(t, ok)
	assert.Equal(t, 3, res.Stats.Counted)
	assert.Equal(t, 80, res.Heatmap.MonthWeights[4])
	assert.Equal(t, "3 people, 3 birthdays placed", app.statusLabel.Text)

	resp := serve(t, app, config.RouteHeatmap)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "Applied results are published")

	cal := serve(t, app, config.RouteCalendar)
	defer func() { _ = cal.Body.Close() }()
	body, _ := io.ReadAll(cal.Body)
	assert.Contains(t, string(body), "DTSTAMP:20250101T100000Z")
}

func TestPerformSync_Failure(t *testing.T) {
	app, fetcher, _ := setupTestApp(t)
	setLanguage(app, "en")
	app.ShowMainWindow()

	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	app.Preferences.SetString(config.PrefSourceMode, config.SourceModeWeb)
	app.Preferences.SetString(config.PrefSourceURL, "http://test.local")

	app.performSync(true)

	fetcher.AssertExpectations(t)
	assert.Equal(t, app.GetMsg(config.TKeyStatusError), app.statusLabel.Text)

	_, ok := app.Result()
	assert.False(t, ok)

	resp := serve(t, app, config.RouteHeatmap)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestPerformSync_NoSource(t *testing.T) {
	app, fetcher, _ := setupTestApp(t)

	app.Preferences.SetString(config.PrefSourceMode, config.SourceModeWeb)
	app.performSync(false)

	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	_, ok := app.Result()
	assert.False(t, ok)
}

func TestPerformSync_LocalFile(t *testing.T) {
	app, _, _ := setupTestApp(t)

	path := filepath.Join(t.TempDir(), "contacts.vcf")
	require.NoError(t, os.WriteFile(path, []byte("BEGIN:VCARD\nFN:Jane\nBDAY:1990-05-02\nEND:VCARD\n"), 0o600))
	app.Preferences.SetString(config.PrefSourceMode, config.SourceModeLocal)
	app.Preferences.SetString(config.PrefLocalPath, path)

	app.performSync(false)

	res, ok := app.Result()
	require.True(t, ok)
	assert.Equal(t, 1, res.Table.Count(4, 1))
}

func TestBackgroundWorker_StopsOnCancel(t *testing.T) {
	app, _, cancel := setupTestApp(t)
	app.Preferences.SetInt(config.PrefInterval, config.DisabledInterval)

	done := make(chan struct{})
	go func() {
		app.backgroundWorker()
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

// -----------------------------------------------------------------------------
// Main Window Tests
// -----------------------------------------------------------------------------

func TestLoadDocument(t *testing.T) {
	app, _, _ := setupTestApp(t)

	require.NoError(t, app.loadDocument("people.csv", []byte("A;2000-01-01\nB;2000-01-01")))
	res, _ := app.Result()
	assert.Equal(t, 2, res.Table.Count(0, 0))

	require.NoError(t, app.loadDocument("contacts.vcf", []byte("BEGIN:VCARD\nFN:A\nBDAY:1990-12-25\nEND:VCARD")))
	res, _ = app.Result()
	assert.Equal(t, 1, res.Table.Count(11, 24))

	err := app.loadDocument("readme.md", []byte("A;2000-01-01"))
	require.NoError(t, err, "unknown extensions fall back to sniffing")
	res, _ = app.Result()
	assert.Equal(t, 1, res.Table.Count(0, 0))
}

func TestLoadDocument_IgnoresSourceFormat(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Preferences.SetString(config.PrefFormat, config.MimeCSV)

	require.NoError(t, app.loadDocument("contacts.vcf", []byte("BEGIN:VCARD\nFN:A\nBDAY:1990-12-25\nEND:VCARD")))

	res, ok := app.Result()
	require.True(t, ok)
	assert.Len(t, res.People, 1)
	assert.Equal(t, 1, res.Stats.Counted)
	assert.Equal(t, 1, res.Table.Count(11, 24), "December 25th")
}

func TestStatusText_FallbacksWithoutLocalizer(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Localizer = nil

	assert.Equal(t, config.FallbackStatusEmpty, app.statusText())

	app.resultMu.Lock()
	app.failed = true
	app.resultMu.Unlock()
	assert.Equal(t, config.FallbackStatusError, app.statusText())
}

func TestMainWindow_RendersMonths(t *testing.T) {
	app, _, _ := setupTestApp(t)
	setLanguage(app, "fr")
	app.ShowMainWindow()

	require.Len(t, app.monthGrid.Objects, 12)
	assert.Equal(t, app.GetMsg(config.TKeyStatusEmpty), app.statusLabel.Text)

	app.loadPeople([]engine.Person{{Name: "A", Birthday: "2000-05-02"}, {Name: "B", Birthday: "1999-05-02"}})

	may, ok := app.monthGrid.Objects[4].(*widget.Card)
	require.True(t, ok)
	assert.Equal(t, "Mai", may.Title)
	assert.Equal(t, "2 anniversaires", may.Subtitle)

	feb := app.monthGrid.Objects[1].(*widget.Card)
	assert.Equal(t, "Février", feb.Title)
}

func TestMainWindow_Reset(t *testing.T) {
	app, _, _ := setupTestApp(t)
	setLanguage(app, "en")
	app.ShowMainWindow()

	app.loadPeople(engine.ExamplePeople())
	app.reset()

	_, ok := app.Result()
	assert.False(t, ok)
	assert.Equal(t, app.GetMsg(config.TKeyStatusEmpty), app.statusLabel.Text)

	resp := serve(t, app, config.RouteHeatmap)
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"people":0`)
}

// -----------------------------------------------------------------------------
// Settings Tests
// -----------------------------------------------------------------------------

func TestSettings_ValidatePort(t *testing.T) {
	app, _, _ := setupTestApp(t)

	assert.NoError(t, app.validatePort("18081"))
	assert.NoError(t, app.validatePort("1"))
	assert.Error(t, app.validatePort(""))
	assert.Error(t, app.validatePort("abc"))
	assert.Error(t, app.validatePort("0"))
	assert.Error(t, app.validatePort("65536"))
}

func TestSettings_Save(t *testing.T) {
	app, _, _ := setupTestApp(t)
	setLanguage(app, "en")

	sw := app.newSettingsWidgets()
	sw.langSelect.SetSelected("fr")
	sw.modeSelect.SetSelected(app.GetMsg(config.TKeyModeLocal))
	sw.formatSelect.SetSelected(config.MimeVCard)
	sw.userEntry.SetText("reader")
	sw.passEntry.SetText("s3cret")
	sw.entryInterval.SetText("")
	sw.entryPort.SetText("19000")

	app.saveSettings(sw)

	assert.Equal(t, "fr", app.Preferences.String(config.PrefLanguage))
	assert.Equal(t, config.SourceModeLocal, app.Preferences.String(config.PrefSourceMode))
	assert.Equal(t, config.MimeVCard, app.Preferences.String(config.PrefFormat))
	assert.Equal(t, config.DisabledInterval, app.Preferences.Int(config.PrefInterval))
	assert.Equal(t, "19000", app.Preferences.String(config.PrefServerPort))
	assert.Equal(t, "Paramètres", app.GetMsg(config.TKeyBtnSettings), "Saving applies the language")

	pwd, err := keyring.Get(config.KeyringService, "reader")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pwd)

	// Reopening pre-fills from preferences and the keyring.
	again := app.newSettingsWidgets()
	assert.Equal(t, "s3cret", again.passEntry.Text)
	assert.Equal(t, config.MimeVCard, again.formatSelect.Selected)
	assert.Equal(t, "0", again.entryInterval.Text)
}

func TestSettings_WindowIsSingleton(t *testing.T) {
	app, _, _ := setupTestApp(t)

	app.ShowSettingsWindow()
	first := app.SettingsWindow
	require.NotNil(t, first)

	app.ShowSettingsWindow()
	assert.Same(t, first, app.SettingsWindow)

	first.Close()
	assert.Nil(t, app.SettingsWindow)
}
