package ui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"PeerStudio/internal/board"
	"PeerStudio/internal/engine"
)

// BoardWidget displays the shared raster surface and feeds pointer gestures
// into the stroke engine. It holds no drawing state of its own: the surface
// is the single source of truth, and the widget only blits it.
type BoardWidget struct {
	widget.BaseWidget
	surface *board.Surface
	stroke  *engine.StrokeEngine
	raster  *canvas.Raster
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

func NewBoardWidget(surface *board.Surface, stroke *engine.StrokeEngine) *BoardWidget {
	b := &BoardWidget{surface: surface, stroke: stroke}
	b.raster = canvas.NewRaster(func(w, h int) image.Image {
		return b.surface.Snapshot()
	})
	b.ExtendBaseWidget(b)
	return b
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		b.stroke.BeginStroke(float64(e.Position.X), float64(e.Position.Y))
	}
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		b.stroke.EndStroke()
		b.Refresh()
	}
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	b.stroke.StrokeTo(float64(e.Position.X), float64(e.Position.Y))
	b.Refresh()
}

func (b *BoardWidget) DragEnd() {
	b.stroke.EndStroke()
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent)    {}
func (b *BoardWidget) MouseOut()                      {}
func (b *BoardWidget) MouseMoved(*desktop.MouseEvent) {}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return &boardRenderer{board: b}
}

type boardRenderer struct {
	board *BoardWidget
}

func (r *boardRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.board.raster}
}

func (r *boardRenderer) Layout(size fyne.Size) {
	r.board.raster.Resize(size)
}

func (r *boardRenderer) MinSize() fyne.Size {
	bounds := r.board.surface.Bounds()
	return fyne.NewSize(float32(bounds.Dx()), float32(bounds.Dy()))
}

func (r *boardRenderer) Refresh() {
	canvas.Refresh(r.board.raster)
}

func (r *boardRenderer) Destroy() {}
