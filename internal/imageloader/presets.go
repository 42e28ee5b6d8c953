package imageloader

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/yt2ig/yt2ig"
)

type PresetImageID int

const (
	PresetYouTubeLogo PresetImageID = iota
	// PresetExampleThumbnail stands in for a real thumbnail when rendering a sample card.
	PresetExampleThumbnail
)

func (id PresetImageID) String() string {
	switch id {
	case PresetYouTubeLogo:
		return "youtube_logo"
	case PresetExampleThumbnail:
		return "example_thumbnail"
	default:
		return fmt.Sprintf("preset_%d", int(id))
	}
}

// Presets holds encoded preset images. It is built once and never modified afterwards.
type Presets map[PresetImageID][]byte

var (
	logoRed       = color.RGBA{R: 0xff, A: 0xff}
	logoWhite     = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	exampleTop    = color.RGBA{R: 0x1e, G: 0x3c, B: 0x72, A: 0xff}
	exampleBottom = color.RGBA{R: 0xe0, G: 0x5a, B: 0x47, A: 0xff}
)

// LoadPresets renders the built-in presets. If logoPath is set, the logo is read from that PNG file instead.
func LoadPresets(logoPath string) (Presets, error) {
	logo, err := encodePNG(RenderLogo(284, 200))
	if err != nil {
		return nil, err
	}
	if logoPath != "" {
		logo, err = os.ReadFile(logoPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read logo: %w", err)
		}
		if _, err := png.DecodeConfig(bytes.NewReader(logo)); err != nil {
			return nil, fmt.Errorf("%w: logo %s: %v", yt2ig.ErrImageDecodeFailed, logoPath, err)
		}
	}
	example, err := encodePNG(RenderExampleThumbnail(1280, 720))
	if err != nil {
		return nil, err
	}
	return Presets{
		PresetYouTubeLogo:      logo,
		PresetExampleThumbnail: example,
	}, nil
}

// RenderLogo draws the red rounded "play button" logo.
func RenderLogo(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	w, h := float64(width), float64(height)
	radius := h * 0.22
	// Play triangle, centred, pointing right
	triH := h * 0.42
	triW := triH * 0.87
	x0 := (w-triW)/2 + triW*0.08
	y0 := (h - triH) / 2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			if !insideRoundedRect(px, py, w, h, radius) {
				continue
			}
			if insideTriangle(px, py, x0, y0, x0, y0+triH, x0+triW, y0+triH/2) {
				img.SetRGBA(x, y, logoWhite)
			} else {
				img.SetRGBA(x, y, logoRed)
			}
		}
	}
	return img
}

// RenderExampleThumbnail draws a diagonal gradient.
func RenderExampleThumbnail(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	span := float64(width + height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, lerp(exampleTop, exampleBottom, float64(x+y)/span))
		}
	}
	return img
}

func insideRoundedRect(px, py, w, h, r float64) bool {
	cx := math.Max(r, math.Min(px, w-r))
	cy := math.Max(r, math.Min(py, h-r))
	dx, dy := px-cx, py-cy
	return dx*dx+dy*dy <= r*r
}

func insideTriangle(px, py, ax, ay, bx, by, cx, cy float64) bool {
	sign := func(x1, y1, x2, y2, x3, y3 float64) float64 {
		return (x1-x3)*(y2-y3) - (x2-x3)*(y1-y3)
	}
	d1 := sign(px, py, ax, ay, bx, by)
	d2 := sign(px, py, bx, by, cx, cy)
	d3 := sign(px, py, cx, cy, ax, ay)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
