// Package board implements the shared raster surface and the interpolated
// stroke renderer. Convergence between peers depends on this renderer being
// deterministic: both sides apply the same ordered segments through the same
// code path, so the buffers must come out byte-identical.
package board

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"
)

// stepLength is the interpolation step between brush stamps, in pixels.
// Pointer sampling lags fast movement; stamping every ~2px keeps the
// rendered line gap-free regardless of how far apart the samples are.
const stepLength = 2.0

// Surface is a single-writer raster buffer. The owning client mutates it for
// local gestures; the remote applier mutates it for inbound segments. All
// mutation goes through ApplySegment and Clear so both call sites render
// identically.
type Surface struct {
	mu          sync.RWMutex
	img         *image.RGBA
	transparent bool
	background  color.RGBA
}

// NewSurface creates a surface of the given size. An opaque surface starts
// filled with the background color; a transparent one starts with zero
// coverage everywhere.
func NewSurface(width, height int, transparent bool, background color.RGBA) *Surface {
	s := &Surface{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		transparent: transparent,
		background:  background,
	}
	s.fill()
	return s
}

func (s *Surface) fill() {
	if s.transparent {
		draw.Draw(s.img, s.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
		return
	}
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(s.background), image.Point{}, draw.Src)
}

// Clear resets the surface to its empty state for the current mode.
func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fill()
}

// SetTransparent switches the compositing mode. Existing pixels are kept;
// only the eraser semantics and the empty-fill color change.
func (s *Surface) SetTransparent(transparent bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transparent = transparent
}

// Transparent reports the current compositing mode.
func (s *Surface) Transparent() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transparent
}

// Background returns the erase-by-overpaint color used in opaque mode.
func (s *Surface) Background() color.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}

// ApplySegment renders one stroke segment. The distance between the
// endpoints is subdivided into stepLength increments and a round brush is
// stamped at every interpolated point, which gives rounded caps and joins
// for free. The compositing rule is chosen per call and no rule survives
// into the next call:
//
//   - pen: source-over with the segment color
//   - eraser, opaque surface: source-over with the background color
//   - eraser, transparent surface: destructive alpha, coverage removed
func (s *Surface) ApplySegment(seg Segment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	radius := seg.Width / 2
	punch := false
	var src color.RGBA
	switch seg.Tool {
	case ToolEraser:
		radius *= EraserWidthFactor
		if s.transparent {
			punch = true
		} else {
			src = s.background
		}
	default:
		src = ParseHexColor(seg.Color)
	}
	if radius < 0.5 {
		radius = 0.5
	}

	dx := seg.ToX - seg.FromX
	dy := seg.ToY - seg.FromY
	dist := math.Hypot(dx, dy)
	steps := int(dist / stepLength)
	if steps < 1 {
		steps = 1
	}
	mask := brushMask(radius)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := seg.FromX + dx*t
		y := seg.FromY + dy*t
		if punch {
			punchDisc(s.img, x, y, radius)
		} else {
			stampDisc(s.img, x, y, mask, src)
		}
	}
}

// brushMask builds the hard-edged round brush used for paint stamps. The
// mask is rebuilt from the radius alone, so identical segments produce
// identical stamps on every peer.
func brushMask(radius float64) *image.Alpha {
	r := int(math.Ceil(radius))
	size := 2*r + 1
	mask := image.NewAlpha(image.Rect(0, 0, size, size))
	rr := radius * radius
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx := float64(x - r)
			fy := float64(y - r)
			if fx*fx+fy*fy <= rr {
				mask.SetAlpha(x, y, color.Alpha{A: 255})
			}
		}
	}
	return mask
}

func stampDisc(dst *image.RGBA, cx, cy float64, mask *image.Alpha, src color.RGBA) {
	r := mask.Bounds().Dx() / 2
	x := int(math.Round(cx)) - r
	y := int(math.Round(cy)) - r
	rect := image.Rect(x, y, x+mask.Bounds().Dx(), y+mask.Bounds().Dy())
	draw.DrawMask(dst, rect, image.NewUniform(src), image.Point{}, mask, image.Point{}, draw.Over)
}

// punchDisc removes pixel coverage entirely inside the brush disc. Neither
// draw.Over nor draw.Src expresses destination-out, so the bytes are zeroed
// directly; pixels outside the disc are untouched.
func punchDisc(dst *image.RGBA, cx, cy, radius float64) {
	r := int(math.Ceil(radius))
	icx := int(math.Round(cx))
	icy := int(math.Round(cy))
	rr := radius * radius
	b := dst.Bounds()
	for y := icy - r; y <= icy+r; y++ {
		if y < b.Min.Y || y >= b.Max.Y {
			continue
		}
		for x := icx - r; x <= icx+r; x++ {
			if x < b.Min.X || x >= b.Max.X {
				continue
			}
			fx := float64(x - icx)
			fy := float64(y - icy)
			if fx*fx+fy*fy > rr {
				continue
			}
			i := dst.PixOffset(x, y)
			dst.Pix[i] = 0
			dst.Pix[i+1] = 0
			dst.Pix[i+2] = 0
			dst.Pix[i+3] = 0
		}
	}
}

// Snapshot returns a deep copy of the raster buffer, for export and for the
// local-only gesture thumbnail. The copy shares no memory with the surface.
func (s *Surface) Snapshot() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

// AlphaAt reports the alpha channel at a pixel, for tests and hit checks.
func (s *Surface) AlphaAt(x, y int) uint8 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img.Pix[s.img.PixOffset(x, y)+3]
}

// Bounds returns the pixel bounds of the surface.
func (s *Surface) Bounds() image.Rectangle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img.Bounds()
}

// Equal reports whether two surfaces hold byte-identical raster buffers.
func Equal(a, b *Surface) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	b.mu.RLock()
	defer b.mu.RUnlock()
	return a.img.Bounds() == b.img.Bounds() && bytes.Equal(a.img.Pix, b.img.Pix)
}
