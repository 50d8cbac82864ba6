package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// WritePNG saves the flattened image into dir as
// whiteboard-<unixtimestamp>.png and returns the full path.
func WritePNG(img image.Image, dir string) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("whiteboard-%d.png", time.Now().Unix()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("export: encode png: %w", err)
	}
	return path, nil
}

// WritePDF embeds the flattened image on a single A4 landscape page. PDF is
// the secondary artifact next to the PNG, for sessions that end in a
// printable handout.
func WritePDF(img image.Image, path string) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("export: encode png for pdf: %w", err)
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("whiteboard", opts, &buf)

	// Fit the image to the page width, keeping aspect ratio.
	pageW, pageH := pdf.GetPageSize()
	margin := 10.0
	w := pageW - 2*margin
	h := w * float64(img.Bounds().Dy()) / float64(img.Bounds().Dx())
	if h > pageH-2*margin {
		h = pageH - 2*margin
		w = h * float64(img.Bounds().Dx()) / float64(img.Bounds().Dy())
	}
	pdf.ImageOptions("whiteboard", margin, margin, w, h, false, opts, 0, "")

	return pdf.OutputFileAndClose(path)
}
