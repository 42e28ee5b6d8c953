package youtube

import (
	"net/url"
	"strings"

	"github.com/yt2ig/yt2ig"
	"github.com/yt2ig/yt2ig/generic"
)

// Classify a youtube.com URL.
//
// Allowed URL formats:
//
//	http(s?)://(www.)?youtube.com/watch?v={VIDEO_ID}
//	http(s?)://(www.)?youtube.com/(shorts|live)/{VIDEO_ID}
func Classify(u *url.URL) (yt2ig.ShareTarget, error) {
	segments := yt2ig.PathSegments(u)
	switch segments[0] {
	case "":
		return nil, yt2ig.ErrNoPath
	case "watch":
		return classifyWatch(u, yt2ig.AppYouTube)
	case "shorts", "live":
		if len(segments) < 2 {
			return nil, yt2ig.ErrNoVideoID
		}
		return newVideo(segments[1], videoTypes[segments[0]], yt2ig.AppYouTube)
	case "channel", "c", "user":
		return nil, yt2ig.ErrIsChannel
	case "playlist":
		return nil, yt2ig.ErrIsPlaylist
	default:
		return nil, yt2ig.ErrUnknownPath
	}
}

// ClassifyShort classifies a youtu.be URL, where the first path segment is the video ID.
func ClassifyShort(u *url.URL) (yt2ig.ShareTarget, error) {
	return newVideo(yt2ig.PathSegments(u)[0], yt2ig.VideoTypeNormal, yt2ig.AppYouTube)
}

// ClassifyMusic classifies a music.youtube.com URL. Shorts and live links don't exist there, so are unknown paths.
func ClassifyMusic(u *url.URL) (yt2ig.ShareTarget, error) {
	switch yt2ig.PathSegments(u)[0] {
	case "":
		return nil, yt2ig.ErrNoPath
	case "watch":
		return classifyWatch(u, yt2ig.AppYouTubeMusic)
	case "channel":
		return nil, yt2ig.ErrIsChannel
	case "playlist":
		return nil, yt2ig.ErrIsPlaylist
	default:
		return nil, yt2ig.ErrUnknownPath
	}
}

var videoTypes = map[string]yt2ig.VideoType{
	"shorts": yt2ig.VideoTypeShorts,
	"live":   yt2ig.VideoTypeLive,
}

func classifyWatch(u *url.URL, app yt2ig.App) (yt2ig.ShareTarget, error) {
	return newVideo(u.Query().Get("v"), yt2ig.VideoTypeNormal, app)
}

func newVideo(videoID string, videoType yt2ig.VideoType, app yt2ig.App) (yt2ig.ShareTarget, error) {
	if strings.TrimSpace(videoID) == "" {
		return nil, yt2ig.ErrNoVideoID
	}
	return generic.Unwrap(yt2ig.NewYouTubeVideo(videoID, videoType, app)), nil
}

func Providers() []yt2ig.Provider {
	return []yt2ig.Provider{
		{Name: "youtube", Hosts: generic.NewSet("youtube.com", "www.youtube.com"), Classify: Classify},
		{Name: "youtu.be", Hosts: generic.NewSet("youtu.be"), Classify: ClassifyShort},
		{Name: "youtube-music", Hosts: generic.NewSet("music.youtube.com"), Classify: ClassifyMusic},
	}
}

func init() {
	for _, p := range Providers() {
		yt2ig.DefaultProviderRegistry.MustAdd(p)
	}
}
