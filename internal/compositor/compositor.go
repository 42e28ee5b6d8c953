// Package compositor renders share cards: the video thumbnail above a bar with the title, channel and logo.
package compositor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net/url"

	"github.com/cenkalti/dominantcolor"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"

	"github.com/yt2ig/yt2ig"
	"github.com/yt2ig/yt2ig/internal/imageloader"
)

const (
	MinCardWidth = 800
	MaxCardWidth = 1800

	// Layout at MaxCardWidth, scaled down for narrower cards
	baseHorizontalPadding = 48
	baseVerticalPadding   = 48
	baseLogoHeight        = 100
	baseLogoTitleSpacing  = 32
	baseTitleSpacing      = 12
	baseTitleTextSize     = 48
	baseChannelTextSize   = 32

	maxTitleLines   = 4
	maxChannelLines = 2
)

var (
	FrameColor   = color.RGBA{R: 0xfa, G: 0xfa, B: 0xfa, A: 0xff}
	TitleColor   = color.RGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xff}
	ChannelColor = color.RGBA{R: 0x61, G: 0x61, B: 0x61, A: 0xff}
)

// ImageSource provides the images a card is made from.
type ImageSource interface {
	FetchImage(ctx context.Context, u *url.URL) ([]byte, error)
	FetchPresetImage(id imageloader.PresetImageID) []byte
}

type Compositor struct {
	titleFont   *opentype.Font
	channelFont *opentype.Font
	log         *zap.SugaredLogger
}

func New() (*Compositor, error) {
	titleFont, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse title font: %w", err)
	}
	channelFont, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse channel font: %w", err)
	}
	return &Compositor{
		titleFont:   titleFont,
		channelFont: channelFont,
		log:         zap.S().Named("compositor"),
	}, nil
}

// Generate fetches the thumbnail and logo for info and renders the card.
func (c *Compositor) Generate(ctx context.Context, info yt2ig.VideoInfo, images ImageSource) (*yt2ig.ShareCard, error) {
	data, err := images.FetchImage(ctx, info.ThumbnailURL)
	if err != nil {
		return nil, err
	}
	thumbnail, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("thumbnail: %w", err)
	}
	logo, err := decode(images.FetchPresetImage(imageloader.PresetYouTubeLogo))
	if err != nil {
		return nil, fmt.Errorf("logo: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.Render(info, thumbnail, logo)
}

// Render draws a card from already decoded images.
func (c *Compositor) Render(info yt2ig.VideoInfo, thumbnail image.Image, logo image.Image) (*yt2ig.ShareCard, error) {
	l := newLayout(thumbnail.Bounds().Dx(), logo.Bounds())

	titleFace, err := opentype.NewFace(c.titleFont, &opentype.FaceOptions{Size: float64(l.titleTextSize), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	defer titleFace.Close()
	channelFace, err := opentype.NewFace(c.channelFont, &opentype.FaceOptions{Size: float64(l.channelTextSize), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	defer channelFace.Close()

	textWidth := fixed.I(l.textWidth())
	titleLines := wrapText(titleFace, info.Title, textWidth, maxTitleLines)
	channelLines := wrapText(channelFace, info.Channel, textWidth, maxChannelLines)
	titleHeight := textHeight(titleFace, titleLines)
	channelHeight := textHeight(channelFace, channelLines)

	contentHeight := max(titleHeight+l.titleSpacing+channelHeight, l.logoHeight)
	bottomBarHeight := l.verticalPadding + contentHeight + l.verticalPadding
	card := image.NewRGBA(image.Rect(0, 0, l.cardWidth, l.thumbHeight+bottomBarHeight))

	draw.Draw(card, card.Bounds(), image.NewUniform(FrameColor), image.Point{}, draw.Src)
	drawThumbnail(card, thumbnail, l.cardWidth, l.thumbHeight)

	contentTop := l.thumbHeight + l.verticalPadding
	logoRect := image.Rect(l.cardWidth-l.horizontalPadding-l.logoWidth, contentTop, l.cardWidth-l.horizontalPadding, contentTop+l.logoHeight)
	draw.CatmullRom.Scale(card, logoRect, logo, logo.Bounds(), draw.Over, nil)

	drawLines(card, titleFace, TitleColor, titleLines, l.horizontalPadding, contentTop)
	drawLines(card, channelFace, ChannelColor, channelLines, l.horizontalPadding, contentTop+titleHeight+l.titleSpacing)

	c.log.Debugw("rendered card", "width", card.Bounds().Dx(), "height", card.Bounds().Dy(),
		"title_lines", len(titleLines), "channel_lines", len(channelLines))

	return &yt2ig.ShareCard{
		Image:    card,
		Gradient: GradientColors(thumbnail),
	}, nil
}

// GradientColors picks the dominant colour of the thumbnail, plus a dark muted shade of it.
func GradientColors(img image.Image) yt2ig.GradientColors {
	primary := dominantcolor.Find(img)
	primary.A = 0xff
	return yt2ig.GradientColors{
		Primary:   primary,
		Secondary: darkMuted(primary),
	}
}

type layout struct {
	cardWidth         int
	thumbHeight       int
	horizontalPadding int
	verticalPadding   int
	logoHeight        int
	logoWidth         int
	logoTitleSpacing  int
	titleSpacing      int
	titleTextSize     int
	channelTextSize   int
}

func newLayout(thumbnailWidth int, logoBounds image.Rectangle) layout {
	cardWidth := min(max(thumbnailWidth, MinCardWidth), MaxCardWidth)
	scale := float64(cardWidth) / MaxCardWidth
	scaled := func(base int) int {
		return int(math.Round(float64(base) * scale))
	}
	l := layout{
		cardWidth:         cardWidth,
		thumbHeight:       cardWidth * 9 / 16,
		horizontalPadding: scaled(baseHorizontalPadding),
		verticalPadding:   scaled(baseVerticalPadding),
		logoHeight:        scaled(baseLogoHeight),
		logoTitleSpacing:  scaled(baseLogoTitleSpacing),
		titleSpacing:      scaled(baseTitleSpacing),
		titleTextSize:     scaled(baseTitleTextSize),
		channelTextSize:   scaled(baseChannelTextSize),
	}
	if logoBounds.Dy() > 0 {
		l.logoWidth = int(float64(l.logoHeight) * float64(logoBounds.Dx()) / float64(logoBounds.Dy()))
	}
	return l
}

func (l layout) textWidth() int {
	return l.cardWidth - 2*l.horizontalPadding - l.logoWidth - l.logoTitleSpacing
}

// drawThumbnail scales the thumbnail to the card width, cropping the centre if it ends up taller than height.
func drawThumbnail(dst *image.RGBA, thumbnail image.Image, width, height int) {
	src := thumbnail.Bounds()
	scaledHeight := int(float64(src.Dy()) * float64(width) / float64(src.Dx()))
	scaled := image.NewRGBA(image.Rect(0, 0, width, scaledHeight))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), thumbnail, src, draw.Src, nil)
	yOffset := 0
	if scaledHeight > height {
		yOffset = (scaledHeight - height) / 2
	}
	draw.Draw(dst, image.Rect(0, 0, width, min(height, scaledHeight)), scaled, image.Pt(0, yOffset), draw.Src)
}

func lineHeight(face font.Face) int {
	return face.Metrics().Height.Ceil()
}

func textHeight(face font.Face, lines []string) int {
	return len(lines) * lineHeight(face)
}

func drawLines(dst *image.RGBA, face font.Face, c color.Color, lines []string, x, top int) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face}
	ascent := face.Metrics().Ascent.Ceil()
	for i, line := range lines {
		d.Dot = fixed.P(x, top+i*lineHeight(face)+ascent)
		d.DrawString(line)
	}
}

func decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", yt2ig.ErrImageDecodeFailed, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", yt2ig.ErrImageDecodeFailed)
	}
	return img, nil
}
