// Package yt2ig turns shared YouTube links into shareable image cards.
//
// The root package holds the domain types shared by every other package: share targets and the parser that produces
// them, the loading states of a card creation run, and the error taxonomy presented to users.
package yt2ig

import (
	"errors"
	"net/url"
	"strings"
)

var ErrBlankVideoID = errors.New("video ID must not be blank")

// VideoType is the kind of YouTube link a video was shared from.
type VideoType int

const (
	VideoTypeNormal VideoType = iota
	VideoTypeShorts
	VideoTypeLive
)

func (t VideoType) String() string {
	switch t {
	case VideoTypeNormal:
		return "NORMAL"
	case VideoTypeShorts:
		return "SHORTS"
	case VideoTypeLive:
		return "LIVE"
	default:
		return "UNKNOWN"
	}
}

func (t VideoType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// App is the YouTube application a video belongs to.
type App int

const (
	AppYouTube App = iota
	AppYouTubeMusic
)

func (a App) String() string {
	switch a {
	case AppYouTube:
		return "YOUTUBE"
	case AppYouTubeMusic:
		return "YOUTUBE_MUSIC"
	default:
		return "UNKNOWN"
	}
}

func (a App) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// A ShareTarget is a validated link that a card can be created for.
type ShareTarget interface {
	// URL returns the canonical URL for the target. Parsing the canonical URL yields a target with the same canonical
	// URL.
	URL() *url.URL
	// DisplayURL is the canonical URL without its scheme, for showing to users.
	DisplayURL() string
	shareTarget()
}

// YouTubeVideo is a single video on YouTube or YouTube Music.
type YouTubeVideo struct {
	VideoID string    `json:"video_id"`
	Type    VideoType `json:"type"`
	App     App       `json:"app"`
}

// NewYouTubeVideo validates and creates a YouTubeVideo.
func NewYouTubeVideo(videoID string, videoType VideoType, app App) (YouTubeVideo, error) {
	if strings.TrimSpace(videoID) == "" {
		return YouTubeVideo{}, ErrBlankVideoID
	}
	return YouTubeVideo{VideoID: videoID, Type: videoType, App: app}, nil
}

// URL derives the canonical URL from the video ID and app only; the video type does not affect it.
func (v YouTubeVideo) URL() *url.URL {
	switch v.App {
	case AppYouTubeMusic:
		return &url.URL{
			Scheme:   "https",
			Host:     "music.youtube.com",
			Path:     "/watch",
			RawQuery: url.Values{"v": {v.VideoID}}.Encode(),
		}
	default:
		return &url.URL{
			Scheme:  "https",
			Host:    "youtu.be",
			Path:    "/" + v.VideoID,
			RawPath: "/" + url.PathEscape(v.VideoID),
		}
	}
}

func (v YouTubeVideo) DisplayURL() string {
	return strings.TrimPrefix(v.URL().String(), "https://")
}

func (v YouTubeVideo) String() string {
	return v.URL().String()
}

func (YouTubeVideo) shareTarget() {}
