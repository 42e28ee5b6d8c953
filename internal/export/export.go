// Package export hands finished cards off to where they are shared from: a local file, or an S3 bucket.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/yt2ig/yt2ig"
)

var (
	ErrEmptyName = errors.New("export name is empty")
)

// Export describes where a card ended up, with the background colours to show it against.
type Export struct {
	// Location is a file path or URL, depending on the Exporter.
	Location    string `json:"location"`
	TopColor    string `json:"top_color"`
	BottomColor string `json:"bottom_color"`
}

type Exporter interface {
	Export(ctx context.Context, name string, card *yt2ig.ShareCard) (*Export, error)
}

func newExport(location string, card *yt2ig.ShareCard) *Export {
	return &Export{
		Location:    location,
		TopColor:    yt2ig.ToHexRGB(card.Gradient.Primary),
		BottomColor: yt2ig.ToHexRGB(card.Gradient.Secondary),
	}
}

// Namer names exported cards from a text/template, e.g. "{{.VideoID}} - {{.Title}}".
type Namer struct {
	tmpl *template.Template
}

func NewNamer(text string) (*Namer, error) {
	tmpl, err := template.New("export_name").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid export name template: %w", err)
	}
	return &Namer{tmpl: tmpl}, nil
}

type nameTemplateArgs struct {
	VideoID string
	Type    string
	App     string
	Title   string
	Channel string
}

// Name executes the template for a video, returning a name safe to use as a file name or object key.
func (n *Namer) Name(target yt2ig.YouTubeVideo, info yt2ig.VideoInfo) (string, error) {
	args := nameTemplateArgs{
		VideoID: target.VideoID,
		Type:    target.Type.String(),
		App:     target.App.String(),
		Title:   info.Title,
		Channel: info.Channel,
	}
	builder := strings.Builder{}
	if err := n.tmpl.Execute(&builder, &args); err != nil {
		return "", err
	}
	name := sanitizeName(builder.String())
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

var nameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	"\x00", "",
)

func sanitizeName(name string) string {
	name = nameReplacer.Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	return strings.Trim(name, ". ")
}
