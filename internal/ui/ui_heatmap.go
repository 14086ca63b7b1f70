package ui

import (
	"image/color"
	"io"
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/tartampluch/birthday-heatmap/internal/config"
	"github.com/tartampluch/birthday-heatmap/internal/engine"
)

// MonthSwatchColor maps a month weight (0-80) to hsl(73, 60%, weight%).
func MonthSwatchColor(weight int) color.Color {
	return colorful.Hsl(config.SwatchHue, config.SwatchSaturation, float64(weight)/100).Clamped()
}

// DaySwatchColor maps a day intensity to hsl(73, 60%, intensity%).
// Empty days get the dim hsl(73, 15%, 10%).
func DaySwatchColor(intensity float64) color.Color {
	if intensity == engine.EmptyIntensity {
		return colorful.Hsl(config.SwatchHue, config.EmptySwatchSaturation, config.EmptySwatchLightness)
	}
	return colorful.Hsl(config.SwatchHue, config.SwatchSaturation, intensity/100).Clamped()
}

// BorderColor is the stroke shared by every swatch.
func BorderColor() color.Color {
	return colorful.Hsl(config.SwatchHue, config.BorderSaturation, config.BorderLightness)
}

func newSwatch(fill color.Color, size fyne.Size) *canvas.Rectangle {
	r := canvas.NewRectangle(fill)
	r.StrokeColor = BorderColor()
	r.StrokeWidth = config.SwatchStrokeWidth
	r.CornerRadius = config.SwatchCornerRadius
	r.SetMinSize(size)
	return r
}

// refreshView redraws the status line and the month cards. Must run on the UI goroutine.
func (app *HeatmapApp) refreshView() {
	app.refreshStatus()
	if app.monthGrid == nil {
		return
	}

	res, ok := app.Result()
	if !ok {
		res = app.generator().Build(nil)
	}

	cards := make([]fyne.CanvasObject, 0, res.Calendar.Len())
	for i, m := range res.Calendar.Months() {
		cards = append(cards, app.buildMonthCard(m.Name, res.Table.MonthTotal(i),
			res.Heatmap.MonthWeights[i], res.Heatmap.DayIntensities[i]))
	}
	app.monthGrid.Objects = cards
	app.monthGrid.Refresh()
}

// refreshStatus updates the status line only. Must run on the UI goroutine.
func (app *HeatmapApp) refreshStatus() {
	if app.statusLabel != nil {
		app.statusLabel.SetText(app.statusText())
	}
}

// buildMonthCard renders one month: a wide month swatch above a grid of day swatches.
func (app *HeatmapApp) buildMonthCard(name string, total, weight int, intensities []float64) *widget.Card {
	monthSwatch := newSwatch(MonthSwatchColor(weight), fyne.NewSize(config.MonthCardWidth, config.SwatchSize))

	days := container.NewGridWrap(fyne.NewSquareSize(config.SwatchSize))
	for _, v := range intensities {
		days.Add(newSwatch(DaySwatchColor(v), fyne.NewSquareSize(config.SwatchSize)))
	}

	subtitle := app.GetCountMsg(config.TKeyLblMonthTotal, total,
		map[string]any{"Count": total}, strconv.Itoa(total))

	return widget.NewCard(app.MonthName(name), subtitle, container.NewVBox(monthSwatch, days))
}

// showOpenDialog lets the user pick a people list from disk.
func (app *HeatmapApp) showOpenDialog(w fyne.Window) {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if r == nil {
			return
		}
		defer func() { _ = r.Close() }()

		data, err := io.ReadAll(io.LimitReader(r, config.MaxInputSize))
		if err == nil {
			err = app.loadDocument(r.URI().Name(), data)
		}
		if err != nil {
			slog.Error(config.ErrFileOpen,
				config.LogKeyComponent, config.CompUI,
				config.LogKeyPath, r.URI().Path(),
				config.LogKeyError, err)
			dialog.ShowError(err, w)
		}
	}, w)
	d.SetFilter(storage.NewExtensionFileFilter([]string{config.ExtCSV, config.ExtTXT, config.ExtVCF, config.ExtVCard}))
	d.Show()
}
