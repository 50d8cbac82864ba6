package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"PeerStudio/internal/board"
	"PeerStudio/internal/engine"
)

// Keep track of the last pen color when switching back from the eraser.
var lastSelectedColor = "#000000"

type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	Hex      string
	OnTapped func(hex string)
}

func newColorSwatch(c color.RGBA, tapped func(hex string)) *colorSwatch {
	s := &colorSwatch{Color: c, Hex: board.FormatHexColor(c), OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Hex)
	}
}

// NewToolbar builds the drawing controls: pen/eraser, palette, width,
// clear, transparency toggle and export.
func NewToolbar(stroke *engine.StrokeEngine, settings *engine.SettingsEngine, onClear, onExport func()) fyne.CanvasObject {
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() {
			stroke.SetTool(board.ToolPen)
			stroke.SetColor(lastSelectedColor)
		}), // Pen
		widget.NewToolbarAction(theme.DeleteIcon(), func() {
			stroke.SetTool(board.ToolEraser)
		}), // Eraser
		widget.NewToolbarAction(theme.ContentClearIcon(), func() {
			if onClear != nil {
				onClear()
			}
		}),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() {
			if onExport != nil {
				onExport()
			}
		}),
	)

	onColorTapped := func(hex string) {
		lastSelectedColor = hex
		stroke.SetTool(board.ToolPen)
		stroke.SetColor(hex)
	}
	colorBox := container.NewHBox(
		newColorSwatch(color.RGBA{A: 255}, onColorTapped),
		newColorSwatch(color.RGBA{R: 255, A: 255}, onColorTapped),
		newColorSwatch(color.RGBA{G: 255, A: 255}, onColorTapped),
		newColorSwatch(color.RGBA{B: 255, A: 255}, onColorTapped),
		newColorSwatch(color.RGBA{R: 255, G: 255, A: 255}, onColorTapped),
	)

	strokeSlider := widget.NewSlider(1.0, 30.0)
	strokeSlider.SetValue(3.0)
	strokeSlider.OnChanged = func(val float64) {
		stroke.SetWidth(val)
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), strokeSlider)

	transparency := widget.NewCheck("Transparent", func(on bool) {
		settings.SetTransparent(on)
	})

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		widget.NewSeparator(),
		transparency,
		layout.NewSpacer(),
	)
}
