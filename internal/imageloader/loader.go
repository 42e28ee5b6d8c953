// Package imageloader downloads and caches images by URL, and holds the preset images bundled with the application.
package imageloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yt2ig/yt2ig"
	"github.com/yt2ig/yt2ig/internal/config"
	"github.com/yt2ig/yt2ig/internal/httpclient"
)

type Loader struct {
	client  *http.Client
	cache   *Cache
	group   singleflight.Group
	presets Presets
	log     *zap.SugaredLogger
}

func New(client *http.Client, cache *Cache, presets Presets) *Loader {
	if cache == nil {
		cache = NewCache()
	}
	return &Loader{
		client:  client,
		cache:   cache,
		presets: presets,
		log:     zap.S().Named("imageloader"),
	}
}

// EnsureLoaded makes sure the image at u is in the cache, downloading it if necessary.
func (l *Loader) EnsureLoaded(ctx context.Context, u *url.URL) error {
	_, err := l.FetchImage(ctx, u)
	return err
}

// FetchImage returns the bytes of the image at u, from the cache if possible. Concurrent requests for the same URL
// share a single download. If ctx is done first, FetchImage returns immediately, but the shared download carries on
// (bounded by the client timeout) for the benefit of other callers and the cache.
func (l *Loader) FetchImage(ctx context.Context, u *url.URL) ([]byte, error) {
	key := u.String()
	if cached := l.cache.Get(key); cached.IsSome() {
		return cached.Value, nil
	}
	ch := l.group.DoChan(key, func() (interface{}, error) {
		if cached := l.cache.Get(key); cached.IsSome() {
			return cached.Value, nil
		}
		data, err := l.download(context.WithoutCancel(ctx), key)
		if err != nil {
			return nil, err
		}
		return l.cache.PutIfAbsent(key, data), nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// FetchPresetImage returns a preset image. Presets are fixed at construction, so an unknown id is a programming error.
func (l *Loader) FetchPresetImage(id PresetImageID) []byte {
	data, ok := l.presets[id]
	if !ok {
		panic(fmt.Sprintf("unknown preset image %v", id))
	}
	return data
}

// Cached reports whether the image at u is already cached.
func (l *Loader) Cached(u *url.URL) bool {
	cached := l.cache.Get(u.String())
	return cached.IsSome()
}

func (l *Loader) download(ctx context.Context, rawURL string) ([]byte, error) {
	log := l.log.With("url", rawURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Errorw("image download failed", "status", resp.Status)
		return nil, fmt.Errorf("%w: %s", yt2ig.ErrImageDownloadFailed, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	log.Debugw("downloaded image", "bytes", len(data))
	return data, nil
}

// NewFromConfig builds a Loader with the configured presets and a fresh Cache.
func NewFromConfig(cfg *config.Config, client *http.Client) (*Loader, error) {
	presets, err := LoadPresets(cfg.Assets.LogoPath)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = httpclient.New(cfg.HTTP.ConnectTimeout, cfg.HTTP.CallTimeout)
	}
	return New(client, NewCache(), presets), nil
}
