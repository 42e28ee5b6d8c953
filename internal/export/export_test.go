package export

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	assert_ "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yt2ig/yt2ig"
	"github.com/yt2ig/yt2ig/internal/config"
)

func testCard() *yt2ig.ShareCard {
	return &yt2ig.ShareCard{
		Image: image.NewRGBA(image.Rect(0, 0, 80, 60)),
		Gradient: yt2ig.GradientColors{
			Primary:   color.RGBA{R: 0xcc, G: 0x11, B: 0x22, A: 0xff},
			Secondary: color.RGBA{R: 0x33, G: 0x22, B: 0x22, A: 0xff},
		},
	}
}

func TestNamer(t *testing.T) {
	target := yt2ig.YouTubeVideo{VideoID: "abc123", Type: yt2ig.VideoTypeShorts, App: yt2ig.AppYouTube}
	info := yt2ig.VideoInfo{Title: "AC/DC: Live?  ", Channel: "Some Channel"}

	cases := []struct {
		template string
		expected string
	}{
		{config.DefaultNameTemplate, "abc123"},
		{"{{.VideoID}} - {{.Title}}", "abc123 - AC_DC_ Live_"},
		{"{{.Channel}}/{{.Type}}", "Some Channel_SHORTS"},
		{"  ..{{.VideoID}}..  ", "abc123"},
	}
	for _, c := range cases {
		t.Run(c.template, func(t *testing.T) {
			n, err := NewNamer(c.template)
			require.NoError(t, err)
			name, err := n.Name(target, info)
			require.NoError(t, err)
			assert_.Equal(t, c.expected, name)
		})
	}
}

func TestNamer_Errors(t *testing.T) {
	assert := assert_.New(t)
	_, err := NewNamer("{{.VideoID")
	assert.Error(err)

	n, err := NewNamer("{{.Title}}")
	require.NoError(t, err)
	name, err := n.Name(yt2ig.YouTubeVideo{VideoID: "x"}, yt2ig.VideoInfo{Title: " / "})
	assert.NoError(err)
	assert.Equal("_", name)
	_, err = n.Name(yt2ig.YouTubeVideo{VideoID: "x"}, yt2ig.VideoInfo{Title: " .. "})
	assert.ErrorIs(err, ErrEmptyName)

	n, err = NewNamer("{{.Missing}}")
	require.NoError(t, err)
	_, err = n.Name(yt2ig.YouTubeVideo{VideoID: "x"}, yt2ig.VideoInfo{})
	assert.Error(err)
}

func TestFileExporter(t *testing.T) {
	assert := assert_.New(t)
	dir := filepath.Join(t.TempDir(), "cards")
	e := NewFileExporter(dir)

	res, err := e.Export(context.Background(), "abc123", testCard())
	require.NoError(t, err)
	assert.Equal(filepath.Join(dir, "abc123.png"), res.Location)
	assert.Equal("#CC1122", res.TopColor)
	assert.Equal("#332222", res.BottomColor)

	f, err := os.Open(res.Location)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(80, img.Bounds().Dx())

	// Only the card is left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(entries, 1)

	// Exporting again replaces the file
	_, err = e.Export(context.Background(), "abc123", testCard())
	assert.NoError(err)
}

func TestFileExporter_Errors(t *testing.T) {
	assert := assert_.New(t)
	dir := t.TempDir()
	e := NewFileExporter(dir)

	_, err := e.Export(context.Background(), "", testCard())
	assert.ErrorIs(err, ErrEmptyName)

	_, err = e.Export(context.Background(), "empty", &yt2ig.ShareCard{})
	assert.Error(err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(entries)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Export(ctx, "cancelled", testCard())
	assert.ErrorIs(err, context.Canceled)
}

type recordedRequest struct {
	method string
	path   string
	header http.Header
}

func TestS3Exporter(t *testing.T) {
	assert := assert_.New(t)
	var mu sync.Mutex
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, recordedRequest{r.Method, r.URL.Path, r.Header.Clone()})
		mu.Unlock()
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	e, err := NewS3Exporter(context.Background(), config.S3Config{
		Bucket:          "cards",
		Region:          "us-east-1",
		EndpointURL:     server.URL,
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		PresignExpiry:   time.Hour,
	})
	require.NoError(t, err)

	res, err := e.Export(context.Background(), "abc123", testCard())
	require.NoError(t, err)
	assert.Equal("#CC1122", res.TopColor)
	assert.Equal("#332222", res.BottomColor)
	assert.True(strings.HasPrefix(res.Location, server.URL+"/cards/abc123.png?"), res.Location)
	assert.Contains(res.Location, "X-Amz-Expires=3600")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, requests, 1)
	assert.Equal(http.MethodPut, requests[0].method)
	assert.Equal("/cards/abc123.png", requests[0].path)
	assert.Equal("image/png", requests[0].header.Get("Content-Type"))
	assert.Equal("#CC1122", requests[0].header.Get("X-Amz-Meta-Top-Color"))
	assert.Equal("#332222", requests[0].header.Get("X-Amz-Meta-Bottom-Color"))
}

func TestS3Exporter_UploadFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`))
	}))
	defer server.Close()

	e, err := NewS3Exporter(context.Background(), config.S3Config{
		Bucket:          "cards",
		Region:          "us-east-1",
		EndpointURL:     server.URL,
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		PresignExpiry:   time.Hour,
	})
	require.NoError(t, err)
	_, err = e.Export(context.Background(), "abc123", testCard())
	assert_.ErrorContains(t, err, "failed to upload to S3")
}
