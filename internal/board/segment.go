package board

import (
	"fmt"
	"image/color"
)

// Tool selects the compositing behaviour of a stroke segment.
type Tool string

const (
	ToolPen    Tool = "pen"
	ToolEraser Tool = "eraser"
)

// The eraser always paints wider than the pen so a single pass removes a
// whole stroke instead of scratching a thin line through it.
const EraserWidthFactor = 3

// Segment is the atomic drawing operation exchanged between peers: a short
// line between two pointer samples with the tool state that produced it.
// Segments are ephemeral; nothing stores them after they are applied.
type Segment struct {
	Tool   Tool    `json:"tool"`
	Color  string  `json:"color"`
	Width  float64 `json:"strokeWidth"`
	FromX  float64 `json:"fromX"`
	FromY  float64 `json:"fromY"`
	ToX    float64 `json:"toX"`
	ToY    float64 `json:"toY"`
}

// ParseHexColor decodes a "#rrggbb" string. Malformed input falls back to
// black rather than failing: segments arrive off the network and a bad color
// must never take the renderer down.
func ParseHexColor(s string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// FormatHexColor is the inverse of ParseHexColor for outbound segments.
func FormatHexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
