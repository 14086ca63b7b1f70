package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Birthday-Heatmap/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Birthday Heatmap"
	AppID             = "com.github.tartampluch.birthday-heatmap"
	KeyringService    = "com.github.tartampluch.birthday-heatmap"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// FilePermExport is used for exported .ics/.vcf files meant to be shared.
	FilePermExport fs.FileMode = 0644

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion   = "version"
	FlagDebug     = "debug"
	FlagHeadless  = "headless"
	FlagInput     = "input"
	FlagFormat    = "format"
	FlagCalendar  = "calendar"
	FlagServe     = "serve"
	FlagPort      = "port"
	FlagExportICS = "export-ics"
	FlagExportVCF = "export-vcf"

	FlagDescVersion   = "Show application version and exit"
	FlagDescDebug     = "Enable debug logging to stdout"
	FlagDescHeadless  = "Print the heatmap to stdout instead of opening a window"
	FlagDescInput     = "Input file (.csv or .vcf); example data is used when empty"
	FlagDescFormat    = "Input format tag (text/csv, text/vcard); detected when empty"
	FlagDescCalendar  = "YAML calendar definition overriding the Gregorian default"
	FlagDescServe     = "In headless mode, keep serving the heatmap over HTTP until interrupted"
	FlagDescPort      = "HTTP server port"
	FlagDescExportICS = "Write the birthdays as an iCalendar file"
	FlagDescExportVCF = "Write the people as a vCard file"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	MainWindowWidth     = 900
	MainWindowHeight    = 700
	SettingsWindowWidth = 600

	// Swatch geometry (device independent pixels)
	SwatchSize         = 24
	SwatchCornerRadius = 4
	SwatchStrokeWidth  = 1
	MonthCardWidth     = 200

	// Preference Keys
	PrefSourceURL  = "source_url"
	PrefUsername   = "username"
	PrefLanguage   = "language"
	PrefInterval   = "refresh_interval_min"
	PrefServerPort = "server_port"
	PrefSourceMode = "source_mode"
	PrefLocalPath  = "local_path"
	PrefFormat     = "source_format"
	PrefLastRun    = "last_run_version"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle      = "win_title"
	TKeyWinSettings   = "win_settings_title"
	TKeyBtnOpen       = "btn_open_file"
	TKeyBtnExample    = "btn_example_data"
	TKeyBtnReset      = "btn_reset"
	TKeyBtnRefresh    = "btn_refresh"
	TKeyBtnSettings   = "btn_settings"
	TKeyStatusEmpty   = "status_empty"
	TKeyStatusLoaded  = "status_loaded" // Requires Count, Counted
	TKeyStatusError   = "status_error"
	TKeyModeWeb       = "mode_web"
	TKeyModeLocal     = "mode_local"
	TKeyLblLanguage   = "lbl_language"
	TKeyHelpLanguage  = "help_language"
	TKeyLblMinutes    = "lbl_minutes_suffix"
	TKeyLblRefresh    = "lbl_refresh_interval"
	TKeyHelpInterval  = "help_interval"
	TKeyLblPort       = "lbl_server_port"
	TKeyHelpPort      = "help_port"
	TKeyLblGeneral    = "lbl_general"
	TKeyBtnSave       = "btn_save"
	TKeyBtnCancel     = "btn_cancel"
	TKeyLblFooter     = "lbl_footer"
	TKeyBtnBrowse     = "btn_browse"
	TKeyLblURL        = "lbl_url"
	TKeyHelpURL       = "help_source_url"
	TKeyLblUser       = "lbl_user"
	TKeyLblPass       = "lbl_pass"
	TKeyLblSource     = "lbl_source"
	TKeyLblMonthTotal = "lbl_month_total" // Requires Count
	TKeyNotifError    = "notif_err_sync"
	TKeyNotifSuccess  = "notif_success"
	TKeyLblFormat     = "lbl_format"
	TKeyFormatAuto    = "format_auto"

	// Validation Errors (UI)
	TKeyErrPortReq   = "err_port_required"
	TKeyErrPortNum   = "err_port_number"
	TKeyErrPortRange = "err_port_range"

	// TKeyMonthPrefix prefixes the lowercase English month name (e.g. "month_january").
	TKeyMonthPrefix = "month_"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb     = "web"
	SourceModeLocal   = "local"
	DefaultPort       = "18081"
	DefaultRefreshMin = 60
	DefaultLanguage   = "en"
	DefaultLeapYear   = 2000 // Leap year fallback for birthdays without a usable year
	UIDNamespace      = "birthday-heatmap-v1" // Name-based UUID seed for event UIDs
	DisabledInterval  = 0
)

// -----------------------------------------------------------------------------
// Calendar Definition
// -----------------------------------------------------------------------------

const (
	MonthsPerYear = 12
	MinMonthDays  = 1
	MaxMonthDays  = 31

	// MaxAggregateWorkers bounds AggregateAll concurrency.
	MaxAggregateWorkers = 8
)

// GregorianMonthNames lists the default month names in order.
var GregorianMonthNames = [MonthsPerYear]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// GregorianMonthDays lists the default day counts. February carries 29 days so
// that leap-day birthdays have a cell.
var GregorianMonthDays = [MonthsPerYear]int{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// -----------------------------------------------------------------------------
// Heatmap Scale
// -----------------------------------------------------------------------------

const (
	// Month weight: round(total/max*100) - MonthWeightOffset, rounded to MonthWeightStep.
	MonthWeightScale  = 100
	MonthWeightOffset = 20
	MonthWeightStep   = 10
	MinMonthWeight    = 0

	// Day intensity: (count + DayIntensityBias) * DayIntensityScale, capped at MaxDayIntensity.
	DayIntensityBias  = 1.5
	DayIntensityScale = 10
	MaxDayIntensity   = 80

	// EmptyDayIntensity marks a day without any birthday.
	EmptyDayIntensity = -1
)

// Presentation palette (HSL). Hue is shared by every swatch.
const (
	SwatchHue             = 73
	SwatchSaturation      = 0.60
	EmptySwatchSaturation = 0.15
	EmptySwatchLightness  = 0.10
	BorderSaturation      = 0.10
	BorderLightness       = 0.20
)

// -----------------------------------------------------------------------------
// Text Rendering (headless mode)
// -----------------------------------------------------------------------------

// Glyphs go from the dimmest non-empty day to the brightest.
const (
	TextEmptyGlyph   = '.'
	TextGlyphs       = "░▒▓█"
	TextGlyphStep    = 15 // Intensity span covered by one glyph, starting at MinDayIntensity
	MinDayIntensity  = 25
	TextRowFormat    = "%-10s %4d %3d%% %s\n"
	TextHeaderFormat = "%d people, %d placed, %d unparseable, %d out of range\n"
)

// -----------------------------------------------------------------------------
// Input Formats
// -----------------------------------------------------------------------------

const (
	MimeCSV        = "text/csv"
	MimeVCard      = "text/vcard"
	MimeVCardX     = "text/x-vcard"
	FormatNameCSV  = "csv"
	FormatNameVCF  = "vcf"
	FormatNameCard = "vcard"

	DelimitedSeparator = ";"
	BirthdaySeparator  = "-"
	LineSeparator      = "\n"
	CarriageReturn     = "\r"

	CardBeginMarker = "BEGIN:VCARD"
	CardNamePattern = `FN:(.*)`
	CardBdayPattern = `BDAY:(.*)`

	// File Extensions
	ExtCSV   = ".csv"
	ExtTXT   = ".txt"
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
	ExtICS   = ".ics"

	// MaxInputSize caps how much of a local file is read into memory.
	MaxInputSize = 64 * 1024 * 1024
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Birthday Heatmap//Engine//EN"
	ICalCalName = "Birthdays"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "birthday-heatmap"

	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTStamp    = "DTSTAMP"
	PropRefresh    = "REFRESH-INTERVAL"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	DefaultICalRefresh = 1 * time.Hour

	FormatUID      = "%s@%s"
	FormatUIDInput = "%s|%s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 256 * 1024 * 1024 // 256MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteHeatmap        = "/heatmap.json"
	RouteCalendar       = "/birthdays.ics"
	AddrSeparator       = ":"
	MinPort             = 1
	MaxPort             = 65535
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderAccept          = "Accept"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"
	AcceptSources       = "text/vcard, text/csv;q=0.9, text/plain;q=0.5"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrFormatUnsupport  = "unsupported input format"
	ErrCalendarInvalid  = "invalid calendar definition"
	ErrCalendarMonths   = "calendar must define exactly 12 months"
	ErrCalendarDays     = "month day count must be between 1 and 31"
	ErrCalendarDecode   = "failed to decode calendar definition"
	ErrTableShape       = "count tables have different shapes"
	ErrSourceRead       = "failed to read source data"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrRequestBuild     = "failed to create request"
	ErrNetwork          = "network error during fetch"
	ErrHTTPStatus       = "server returned unexpected status"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrVCardEncode      = "failed to encode vCard data"
	ErrReportEncode     = "failed to encode heatmap report"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrExportWrite      = "failed to write export file"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrFileOpen         = "failed to open selected file"
	ErrLocNotInit       = "localizer not initialized"
	ErrKeyringSave      = "failed to save credentials to keyring"
	ErrPublish          = "failed to publish heatmap documents"
	ErrCalendarOverride = "failed to load calendar override"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Heatmap initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummary      = "Birthday: %s"
	FallbackStatusLoaded = "%d people, %d birthdays placed"
	FallbackStatusEmpty  = "No data loaded"
	FallbackStatusError  = "Could not load data. Check logs."

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	TitleStartupError = "Startup Error"
	TitleSyncError    = "Load Error"

	MsgPortBusy        = "Port %s is busy or unavailable."
	MsgRunStarted      = "Heatmap run started"
	MsgRunFinished     = "Heatmap run finished"
	MsgRunFailed       = "Heatmap run failed"
	MsgSyncReq         = "Refresh requested"
	MsgNoSource        = "No source configured, skipping refresh"
	MsgWorkerStart     = "Background worker started"
	MsgWorkerStop      = "Worker stopping due to context cancellation"
	MsgUpdateSync      = "Updating refresh interval"
	MsgAppStop         = "Application stopped gracefully"
	MsgCtxCancel       = "Context cancelled, shutting down UI"
	MsgSkippedRecord   = "Skipping record with unparseable birthday"
	MsgOutOfRange      = "Skipping record with out-of-range birthday"
	MsgParsed          = "Source decoded"
	MsgAggregated      = "Birthdays aggregated"
	MsgMerged          = "Partial count tables merged"
	MsgAppStarting     = "Starting application"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgCacheUpdated    = "Document cache updated"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgPassFail        = "Password retrieval failed (might be empty)"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgExported        = "Export written"
	MsgResultApplied   = "Heatmap result applied"
	MsgCalendarLoaded  = "Calendar definition loaded"
	MsgAutoRefreshOff  = "Auto-refresh disabled via settings"
	MsgSavingPrefs     = "Saving preferences"
	MsgOpenSettings    = "Opening settings window"
	MsgSettingsFocused = "Settings window already open, requesting focus"
	MsgFetchStart      = "Initiating source download"
	MsgFetchStatus     = "Server returned error status"
	MsgFetchStream     = "Source downloading"

	PlaceholderURL = "https://..."
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent  = "component"
	LogKeyError      = "error"
	LogKeyURL        = "url"
	LogKeyStatus     = "status_code"
	LogKeyFile       = "file"
	LogKeyLang       = "lang"
	LogKeyKey        = "key"
	LogKeyPort       = "port"
	LogKeyMode       = "mode"
	LogKeyFormat     = "format"
	LogKeyInterval   = "interval"
	LogKeyOld        = "old"
	LogKeyNew        = "new"
	LogKeyUser       = "user"
	LogKeyRecords    = "records"
	LogKeyCounted    = "counted"
	LogKeySkipped    = "unparseable"
	LogKeyOutOfRange = "out_of_range"
	LogKeyBatches    = "batches"
	LogKeySizeBytes  = "size_bytes"
	LogKeyETag       = "etag"
	LogKeyRoute      = "route"
	LogKeyManual     = "manual"
	LogKeyValue      = "value"
	LogKeyStats      = "stats"
	LogKeyMonth      = "month"
	LogKeyDay        = "day"
	LogKeyPath       = "path"
	LogKeyDuration   = "duration_ms"
	LogKeyLength     = "content_length"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI      = "ui"
	CompUISet   = "ui_settings"
	CompEngine  = "engine"
	CompParser  = "parser"
	CompAggr    = "aggregator"
	CompExport  = "export"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompWorker  = "worker"
	CompMain    = "main"
	CompI18n    = "i18n"
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	LayoutColumnsDouble = 2
	LayoutMonthColumns  = 4
)
