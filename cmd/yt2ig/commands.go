package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/r3labs/diff/v3"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/yt2ig/yt2ig"
	"github.com/yt2ig/yt2ig/async"
	"github.com/yt2ig/yt2ig/generic"
	"github.com/yt2ig/yt2ig/internal/cardcreation"
	"github.com/yt2ig/yt2ig/internal/compositor"
	"github.com/yt2ig/yt2ig/internal/config"
	"github.com/yt2ig/yt2ig/internal/export"
	"github.com/yt2ig/yt2ig/internal/httpclient"
	"github.com/yt2ig/yt2ig/internal/imageloader"
	"github.com/yt2ig/yt2ig/internal/navigation"
	"github.com/yt2ig/yt2ig/internal/server"
	"github.com/yt2ig/yt2ig/internal/youtube"
)

func parse(w io.Writer, texts []string) error {
	for _, text := range texts {
		parsed := yt2ig.NewParsedText(text)
		if parsed.IsValid() {
			_, _ = fmt.Fprintf(w, "%s\t%s\n", parsed.Target.DisplayURL(), describeTarget(parsed.Target))
		} else {
			msg := yt2ig.NewErrorMessage(parsed.Err)
			_, _ = fmt.Fprintf(w, "%s\t%s\n", msg.Code, msg.Text())
		}
	}
	return nil
}

func listProviders(w io.Writer) error {
	registry := &yt2ig.DefaultProviderRegistry
	for _, name := range registry.List() {
		hosts, err := registry.Hosts(name)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", name, strings.Join(hosts, ", "))
	}
	return nil
}

func describeTarget(target yt2ig.ShareTarget) string {
	if video, ok := target.(yt2ig.YouTubeVideo); ok {
		return fmt.Sprintf("%s on %s", video.Type, video.App)
	}
	return ""
}

// collaborators builds the pieces a card creation run needs from cfg.
func collaborators(cfg *config.Config) (youtube.Fetcher, *imageloader.Loader, *compositor.Compositor, error) {
	client := httpclient.New(cfg.HTTP.ConnectTimeout, cfg.HTTP.CallTimeout)
	fetcher, err := youtube.NewFetcher(cfg, client)
	if err != nil {
		return nil, nil, nil, err
	}
	loader, err := imageloader.NewFromConfig(cfg, client)
	if err != nil {
		return nil, nil, nil, err
	}
	generator, err := compositor.New()
	if err != nil {
		return nil, nil, nil, err
	}
	return fetcher, loader, generator, nil
}

func newExporter(ctx context.Context, cfg *config.Config, useS3 bool) (export.Exporter, error) {
	if !useS3 {
		return export.NewFileExporter(cfg.Export.Dir), nil
	}
	if err := cfg.ValidateS3(); err != nil {
		return nil, err
	}
	return export.NewS3Exporter(ctx, cfg.S3)
}

func create(ctx context.Context, w io.Writer, cfg *config.Config, text string, useS3 bool) error {
	logger := zap.S()

	parsed, err := yt2ig.Parse(text)
	if err != nil {
		return cli.Exit(yt2ig.NewErrorMessage(err).Text(), 1)
	}
	target, ok := parsed.(yt2ig.YouTubeVideo)
	if !ok {
		return cli.Exit(yt2ig.NewErrorMessage(yt2ig.ErrUnknownShareTarget).Text(), 1)
	}
	namer, err := export.NewNamer(cfg.Export.NameTemplate)
	if err != nil {
		return err
	}
	// Setting up S3 can be slow, so do it while the card is being created
	exporterResult := async.RunResult(func() (export.Exporter, error) {
		return newExporter(ctx, cfg, useS3)
	})
	fetcher, loader, generator, err := collaborators(cfg)
	if err != nil {
		return err
	}

	stack := navigation.NewStack()
	defer stack.Close()
	events, err := stack.Subscribe()
	if err != nil {
		return err
	}
	bar := progressbar.Default(int64(yt2ig.StageCount), "creating card for "+target.DisplayURL())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for event := range events.Receive() {
			e, ok := event.(navigation.StateReplaced)
			if !ok {
				continue
			}
			changes, err := diff.Diff(e.Old.Summary(), e.New.Summary())
			if err != nil {
				logger.Errorf("failed to diff old and new state: %v", err)
			} else {
				for _, change := range changes {
					logger.Debugf("%v: %#v -> %#v", change.Path, change.From, change.To)
				}
			}
			if share, ok := e.New.(yt2ig.Share); ok {
				generic.Unwrap_(bar.Set(int(share.Loading.Stage())))
			}
		}
	}()

	result := cardcreation.NewService(fetcher, loader, generator, stack).CreateCard(ctx, target)
	stack.Close()
	wg.Wait()

	switch state := result.(type) {
	case nil:
		logger.Info("Cancelled")
		return nil
	case yt2ig.ErrorState:
		return cli.Exit(fmt.Sprintf("%s (%s)", state.Message.Text(), state.Message.Code), 1)
	case yt2ig.Share:
		exporter, err := (<-exporterResult).Parts()
		if err != nil {
			return err
		}
		created := state.Loading.(yt2ig.Created)
		return exportCard(ctx, w, exporter, namer, created)
	default:
		return fmt.Errorf("unexpected result %T", result)
	}
}

func sample(ctx context.Context, w io.Writer, cfg *config.Config) error {
	namer, err := export.NewNamer(cfg.Export.NameTemplate)
	if err != nil {
		return err
	}
	exporter := export.NewFileExporter(cfg.Export.Dir)
	presets, err := imageloader.LoadPresets(cfg.Assets.LogoPath)
	if err != nil {
		return err
	}
	loader := imageloader.New(nil, nil, presets)
	generator, err := compositor.New()
	if err != nil {
		return err
	}
	images := presetImages{loader}
	target := yt2ig.YouTubeVideo{VideoID: "example", Type: yt2ig.VideoTypeNormal, App: yt2ig.AppYouTube}
	info := yt2ig.VideoInfo{
		App:          target.App,
		Title:        "An example video with a title long enough to need wrapping onto more than one line",
		Channel:      "yt2ig",
		ThumbnailURL: &url.URL{Scheme: "preset", Opaque: imageloader.PresetExampleThumbnail.String()},
	}
	card, err := generator.Generate(ctx, info, images)
	if err != nil {
		return err
	}
	return exportCard(ctx, w, exporter, namer, yt2ig.Created{Target: target, Info: info, Card: card})
}

// presetImages serves the example thumbnail in place of a download.
type presetImages struct {
	*imageloader.Loader
}

func (p presetImages) FetchImage(ctx context.Context, u *url.URL) ([]byte, error) {
	return p.FetchPresetImage(imageloader.PresetExampleThumbnail), nil
}

func exportCard(ctx context.Context, w io.Writer, exporter export.Exporter, namer *export.Namer, created yt2ig.Created) error {
	name, err := namer.Name(created.Target, created.Info)
	if err != nil {
		return err
	}
	res, err := exporter.Export(ctx, name, created.Card)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "%s\ntop: %s\nbottom: %s\n", res.Location, res.TopColor, res.BottomColor)
	return nil
}

func serve(ctx context.Context, cfg *config.Config, useS3 bool) error {
	fetcher, loader, generator, err := collaborators(cfg)
	if err != nil {
		return err
	}
	namer, err := export.NewNamer(cfg.Export.NameTemplate)
	if err != nil {
		return err
	}
	exporter, err := newExporter(ctx, cfg, useS3)
	if err != nil {
		return err
	}
	s := server.New(fetcher, loader, generator, server.WithExporter(exporter, namer))
	return s.Run(ctx, cfg.Server.Addr)
}
