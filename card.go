package yt2ig

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
)

// GradientColors are the background colours handed to the share target alongside the card.
type GradientColors struct {
	Primary   color.RGBA
	Secondary color.RGBA
}

// ShareCard is a finished card image ready for export.
type ShareCard struct {
	Image    *image.RGBA
	Gradient GradientColors
}

func (c *ShareCard) EncodePNG(w io.Writer) error {
	if c == nil || c.Image == nil {
		return fmt.Errorf("no card image")
	}
	return png.Encode(w, c.Image)
}

// ToHexRGB formats a colour as "#RRGGBB", ignoring alpha.
func ToHexRGB(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8)
}
