// Package youtube fetches the video metadata a card is rendered from.
package youtube

import (
	"context"
	"net/http"

	"github.com/yt2ig/yt2ig"
	"github.com/yt2ig/yt2ig/internal/config"
	"github.com/yt2ig/yt2ig/internal/httpclient"
)

// A Fetcher looks up the metadata for a video.
//
// Implementations fail with yt2ig.ErrVideoInfoNotFound when there is no such video, yt2ig.ErrYouTubeError when the
// upstream service reports a failure, and yt2ig.ErrNoThumbnailAvailable when the video has no thumbnail. Transport
// errors are wrapped, not replaced, so they can still be classified.
type Fetcher interface {
	GetVideoInfo(ctx context.Context, video yt2ig.YouTubeVideo) (*yt2ig.VideoInfo, error)
}

// NewFetcher uses the YouTube Data API if an API key is configured, otherwise the keyless innertube client.
func NewFetcher(cfg *config.Config, client *http.Client) (Fetcher, error) {
	if client == nil {
		client = httpclient.New(cfg.HTTP.ConnectTimeout, cfg.HTTP.CallTimeout)
	}
	if cfg.YouTube.APIKey != "" {
		return NewDataAPIClient(client, cfg.YouTube.APIURL, cfg.YouTube.APIKey)
	}
	return NewInnertubeClient(client), nil
}
