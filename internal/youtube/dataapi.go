package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/yt2ig/yt2ig"
)

// Thumbnail tiers, best first.
var thumbnailTiers = []string{"maxres", "high", "medium", "default"}

// DataAPIClient uses the YouTube Data API v3 videos endpoint.
type DataAPIClient struct {
	client  *http.Client
	baseURL *url.URL
	apiKey  string
	log     *zap.SugaredLogger
}

func NewDataAPIClient(client *http.Client, baseURL string, apiKey string) (*DataAPIClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid YouTube API URL: %w", err)
	}
	return &DataAPIClient{
		client:  client,
		baseURL: u,
		apiKey:  apiKey,
		log:     zap.S().Named("youtube-api"),
	}, nil
}

type videoListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			Thumbnails   map[string]struct {
				URL    string `json:"url"`
				Width  int    `json:"width"`
				Height int    `json:"height"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

func (c *DataAPIClient) GetVideoInfo(ctx context.Context, video yt2ig.YouTubeVideo) (*yt2ig.VideoInfo, error) {
	log := c.log.With("video_id", video.VideoID)
	u := c.baseURL.JoinPath("videos")
	u.RawQuery = url.Values{
		"part": {"snippet,contentDetails"},
		"id":   {video.VideoID},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Errorw("video info request failed", "status", resp.Status)
		return nil, fmt.Errorf("%w: %s", yt2ig.ErrYouTubeError, resp.Status)
	}

	var body videoListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode video info: %w", err)
	}
	if len(body.Items) == 0 {
		log.Warn("no video info found")
		return nil, yt2ig.ErrVideoInfoNotFound
	}
	item := body.Items[0]

	var thumbnail string
	for _, tier := range thumbnailTiers {
		if t, ok := item.Snippet.Thumbnails[tier]; ok && t.URL != "" {
			thumbnail = t.URL
			break
		}
	}
	if thumbnail == "" {
		return nil, yt2ig.ErrNoThumbnailAvailable
	}
	thumbnailURL, err := url.Parse(thumbnail)
	if err != nil {
		return nil, fmt.Errorf("invalid thumbnail URL: %w", err)
	}

	return &yt2ig.VideoInfo{
		App:          video.App,
		Title:        item.Snippet.Title,
		Channel:      item.Snippet.ChannelTitle,
		ThumbnailURL: thumbnailURL,
	}, nil
}
