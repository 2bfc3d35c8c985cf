// Package export converts the canvas to and from files.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"time"

	"github.com/h2non/filetype"
	"github.com/jung-kurt/gofpdf"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// MaxImagePixels bounds the decoded size DecodeImage accepts, the area of the
// largest canvas.
const MaxImagePixels = 4096 * 4096

var (
	// ErrNotImage is returned by DecodeImage for data that is not a known
	// image format.
	ErrNotImage = errors.New("not an image")
	// ErrImageTooLarge is returned by DecodeImage when the header declares
	// more than MaxImagePixels.
	ErrImageTooLarge = errors.New("image too large")
)

// FileName builds the timestamped download name, e.g.
// canvas-editor-1700000000000.png.
func FileName(t time.Time, ext string) string {
	return fmt.Sprintf("canvas-editor-%d.%s", t.UnixMilli(), ext)
}

// PNG encodes img.
func PNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// PDF writes a single page sized to the image, one point per pixel, with
// the image as its only content.
func PDF(w io.Writer, img image.Image) error {
	var buf bytes.Buffer
	if err := PNG(&buf, img); err != nil {
		return err
	}

	b := img.Bounds()
	width, height := float64(b.Dx()), float64(b.Dy())
	orientation := "P"
	if width > height {
		orientation = "L"
	}
	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader("canvas", opts, &buf)
	p.ImageOptions("canvas", 0, 0, width, height, false, opts, 0, "")
	if err := p.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// DecodeImage sniffs data and decodes it when it is an image. The header is
// checked against MaxImagePixels before any pixels are decoded.
func DecodeImage(data []byte) (image.Image, error) {
	if !filetype.IsImage(data) {
		return nil, ErrNotImage
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
