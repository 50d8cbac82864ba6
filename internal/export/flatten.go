// Package export flattens the whiteboard into a shareable raster image.
// In opaque mode the surface already holds the complete picture. In
// transparent mode the drawing floats over the rest of the screen, so the
// background has to be captured and composited underneath, with the crop
// math carefully separating capture pixels from viewport points.
package export

import (
	"image"
	"image/draw"
	"log"
	"math"

	xdraw "golang.org/x/image/draw"

	"PeerStudio/internal/board"
)

// FrameCapturer produces one frame of the screen behind the panel.
type FrameCapturer interface {
	Capture() (image.Image, error)
}

// Bounds is the panel's bounding box in viewport points. Viewport points
// are not capture pixels: on a scaled display the captured frame is larger
// than the viewport by the device ratio, and conflating the two is the
// classic source of misaligned exports.
type Bounds struct {
	X, Y, Width, Height float64
}

// Options selects the background strategy for a transparent-mode flatten.
type Options struct {
	Panel          Bounds
	ViewportWidth  float64
	ViewportHeight float64

	// Page captures without a permission prompt (preferred). Display
	// grabs one frame of a live capture behind a prompt (fallback).
	// Either may be nil; with both failed or absent the drawing layer is
	// exported alone.
	Page    FrameCapturer
	Display FrameCapturer
}

// CropRect maps the panel's viewport-point bounding box into the captured
// frame's pixel space. The ratio captured_dimension / viewport_dimension
// carries the device scale; at 2× a 100-point panel crops 200 pixels.
func CropRect(panel Bounds, viewportW, viewportH float64, captured image.Rectangle) image.Rectangle {
	rx := float64(captured.Dx()) / viewportW
	ry := float64(captured.Dy()) / viewportH
	return image.Rect(
		captured.Min.X+int(math.Round(panel.X*rx)),
		captured.Min.Y+int(math.Round(panel.Y*ry)),
		captured.Min.X+int(math.Round((panel.X+panel.Width)*rx)),
		captured.Min.Y+int(math.Round((panel.Y+panel.Height)*ry)),
	)
}

// Flatten composites the drawing surface into a single exportable image.
//
// Opaque surfaces serialize directly. Transparent surfaces walk a
// three-path strategy: page capture, then one-frame display capture, then
// the drawing layer alone. Capture failures degrade silently with
// diagnostics only; Flatten itself never fails.
func Flatten(surface *board.Surface, opts Options) *image.RGBA {
	drawing := surface.Snapshot()
	if !surface.Transparent() {
		return drawing
	}

	if opts.Page != nil {
		if frame, err := opts.Page.Capture(); err == nil {
			return overlay(frame, drawing, opts)
		} else {
			log.Printf("[export] page capture failed, falling back: %v", err)
		}
	}
	if opts.Display != nil {
		if frame, err := opts.Display.Capture(); err == nil {
			return overlay(frame, drawing, opts)
		} else {
			log.Printf("[export] display capture failed, falling back: %v", err)
		}
	}

	log.Printf("[export] no background available, exporting drawing layer alone")
	return drawing
}

// overlay crops the captured frame to the panel, scales the crop to the
// drawing surface's pixel size and draws the strokes on top. Because the
// crop used the same capture/viewport ratio for its offset, the strokes
// land exactly over the background they were drawn against.
func overlay(frame image.Image, drawing *image.RGBA, opts Options) *image.RGBA {
	out := image.NewRGBA(drawing.Bounds())
	crop := CropRect(opts.Panel, opts.ViewportWidth, opts.ViewportHeight, frame.Bounds())
	xdraw.BiLinear.Scale(out, out.Bounds(), frame, crop, xdraw.Src, nil)
	draw.Draw(out, out.Bounds(), drawing, drawing.Bounds().Min, draw.Over)
	return out
}
