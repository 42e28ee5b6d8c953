package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	kkdai "github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"github.com/yt2ig/yt2ig"
)

// InnertubeClient needs no API key, using the same endpoints as the YouTube web player.
type InnertubeClient struct {
	client *kkdai.Client
	log    *zap.SugaredLogger
}

func NewInnertubeClient(client *http.Client) *InnertubeClient {
	return &InnertubeClient{
		client: &kkdai.Client{HTTPClient: client},
		log:    zap.S().Named("youtube-innertube"),
	}
}

func (c *InnertubeClient) GetVideoInfo(ctx context.Context, video yt2ig.YouTubeVideo) (*yt2ig.VideoInfo, error) {
	log := c.log.With("video_id", video.VideoID)
	details, err := c.client.GetVideoContext(ctx, video.VideoID)
	if err != nil {
		log.Debugw("failed to get video", "error", err)
		return nil, classifyInnertubeError(err)
	}

	best := largestThumbnail(details.Thumbnails)
	if best == nil {
		return nil, yt2ig.ErrNoThumbnailAvailable
	}
	thumbnailURL, err := url.Parse(best.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid thumbnail URL: %w", err)
	}

	return &yt2ig.VideoInfo{
		App:          video.App,
		Title:        details.Title,
		Channel:      details.Author,
		ThumbnailURL: thumbnailURL,
	}, nil
}

func largestThumbnail(thumbnails kkdai.Thumbnails) *kkdai.Thumbnail {
	var best *kkdai.Thumbnail
	for i := range thumbnails {
		t := &thumbnails[i]
		if t.URL == "" {
			continue
		}
		if best == nil || t.Width*t.Height > best.Width*best.Height {
			best = t
		}
	}
	return best
}

// classifyInnertubeError maps client errors for videos that can't be shown onto ErrVideoInfoNotFound, and upstream
// HTTP failures onto ErrYouTubeError. Anything else, including transport errors, is wrapped unchanged.
func classifyInnertubeError(err error) error {
	var status kkdai.ErrPlayabiltyStatus
	var statusPtr *kkdai.ErrPlayabiltyStatus
	var code kkdai.ErrUnexpectedStatusCode
	switch {
	case errors.As(err, &status), errors.As(err, &statusPtr),
		errors.Is(err, kkdai.ErrVideoPrivate),
		errors.Is(err, kkdai.ErrLoginRequired),
		errors.Is(err, kkdai.ErrNotPlayableInEmbed),
		errors.Is(err, kkdai.ErrInvalidCharactersInVideoID),
		errors.Is(err, kkdai.ErrVideoIDMinLength):
		return fmt.Errorf("%w: %v", yt2ig.ErrVideoInfoNotFound, err)
	case errors.As(err, &code):
		return fmt.Errorf("%w: %v", yt2ig.ErrYouTubeError, err)
	default:
		return fmt.Errorf("failed to get video info: %w", err)
	}
}
