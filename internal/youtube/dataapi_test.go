package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	assert_ "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yt2ig/yt2ig"
	"github.com/yt2ig/yt2ig/internal/config"
	"github.com/yt2ig/yt2ig/internal/httpclient"
)

const videoResponse = `{
  "items": [{
    "id": "abc123",
    "snippet": {
      "title": "A Video",
      "channelTitle": "A Channel",
      "thumbnails": {
        "default": {"url": "https://i.ytimg.com/vi/abc123/default.jpg", "width": 120, "height": 90},
        "medium": {"url": "https://i.ytimg.com/vi/abc123/mqdefault.jpg", "width": 320, "height": 180},
        "high": {"url": "https://i.ytimg.com/vi/abc123/hqdefault.jpg", "width": 480, "height": 360}
      }
    }
  }]
}`

func newTestAPI(t *testing.T, handler http.HandlerFunc) *DataAPIClient {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c, err := NewDataAPIClient(httpclient.New(time.Second, 500*time.Millisecond), server.URL+"/youtube/v3/", "secret")
	require.NoError(t, err)
	return c
}

func TestDataAPIClient_GetVideoInfo(t *testing.T) {
	assert := assert_.New(t)
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("/youtube/v3/videos", r.URL.Path)
		assert.Equal("snippet,contentDetails", r.URL.Query().Get("part"))
		assert.Equal("abc123", r.URL.Query().Get("id"))
		assert.Equal("secret", r.Header.Get("X-Goog-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(videoResponse))
	})

	info, err := c.GetVideoInfo(context.Background(), yt2ig.YouTubeVideo{VideoID: "abc123", App: yt2ig.AppYouTubeMusic})
	require.NoError(t, err)
	assert.Equal("A Video", info.Title)
	assert.Equal("A Channel", info.Channel)
	assert.Equal(yt2ig.AppYouTubeMusic, info.App)
	// No maxres, so high is the best available
	assert.Equal("https://i.ytimg.com/vi/abc123/hqdefault.jpg", info.ThumbnailURL.String())
}

func TestDataAPIClient_Errors(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		expected error
	}{
		{"not found", http.StatusOK, `{"items": []}`, yt2ig.ErrVideoInfoNotFound},
		{"forbidden", http.StatusForbidden, `{"error": {"code": 403}}`, yt2ig.ErrYouTubeError},
		{"server error", http.StatusInternalServerError, ``, yt2ig.ErrYouTubeError},
		{"no thumbnail", http.StatusOK, `{"items": [{"snippet": {"title": "t", "channelTitle": "c", "thumbnails": {}}}]}`, yt2ig.ErrNoThumbnailAvailable},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.status)
				_, _ = w.Write([]byte(c.body))
			})
			_, err := client.GetVideoInfo(context.Background(), yt2ig.YouTubeVideo{VideoID: "x"})
			assert_.ErrorIs(t, err, c.expected)
		})
	}
}

func TestDataAPIClient_PrefersMaxres(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": [{"snippet": {"thumbnails": {
			"default": {"url": "https://example.com/default.jpg"},
			"maxres": {"url": "https://example.com/maxres.jpg"}
		}}}]}`))
	})
	info, err := c.GetVideoInfo(context.Background(), yt2ig.YouTubeVideo{VideoID: "x"})
	require.NoError(t, err)
	assert_.Equal(t, "https://example.com/maxres.jpg", info.ThumbnailURL.String())
}

func TestDataAPIClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	_, err := c.GetVideoInfo(context.Background(), yt2ig.YouTubeVideo{VideoID: "x"})
	require.Error(t, err)
	assert_.Equal(t, yt2ig.CodeNetworkTimeout, yt2ig.NewErrorMessage(err).Code)
}

func TestDataAPIClient_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()
	c, err := NewDataAPIClient(httpclient.New(time.Second, time.Second), addr, "secret")
	require.NoError(t, err)
	_, err = c.GetVideoInfo(context.Background(), yt2ig.YouTubeVideo{VideoID: "x"})
	require.Error(t, err)
	assert_.Equal(t, yt2ig.CodeNetworkConnectionRefused, yt2ig.NewErrorMessage(err).Code)
}

func TestNewFetcher(t *testing.T) {
	assert := assert_.New(t)
	cfg := config.Default()
	f, err := NewFetcher(cfg, nil)
	require.NoError(t, err)
	assert.IsType(&InnertubeClient{}, f)

	cfg.YouTube.APIKey = "key"
	f, err = NewFetcher(cfg, http.DefaultClient)
	require.NoError(t, err)
	assert.IsType(&DataAPIClient{}, f)

	cfg.YouTube.APIURL = "://bad"
	_, err = NewFetcher(cfg, nil)
	assert.Error(err)
}

func TestClassifyInnertubeError(t *testing.T) {
	assert := assert_.New(t)
	assert.ErrorIs(classifyInnertubeError(kkdaiPlayability("ERROR", "Video unavailable")), yt2ig.ErrVideoInfoNotFound)
	assert.ErrorIs(classifyInnertubeError(kkdaiStatusCode(500)), yt2ig.ErrYouTubeError)
	other := errors.New("boom")
	wrapped := classifyInnertubeError(other)
	assert.ErrorIs(wrapped, other)
	assert.Equal(yt2ig.CodeAny, yt2ig.NewErrorMessage(wrapped).Code)
}
