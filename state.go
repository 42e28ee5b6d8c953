package yt2ig

import (
	"net/url"
)

// VideoInfo is the metadata needed to render a card for a video.
type VideoInfo struct {
	App          App
	Title        string
	Channel      string
	ThumbnailURL *url.URL
}

// Stage identifies a LoadingState variant, in the order a card creation run passes through them.
type Stage int

const (
	StageStarting Stage = iota
	StageLoadedInfo
	StageLoadedThumbnail
	StageCreated
)

// StageCount is the number of transitions from StageStarting to StageCreated.
const StageCount = int(StageCreated)

func (s Stage) String() string {
	switch s {
	case StageStarting:
		return "starting"
	case StageLoadedInfo:
		return "loaded_info"
	case StageLoadedThumbnail:
		return "loaded_thumbnail"
	case StageCreated:
		return "created"
	default:
		return "unknown"
	}
}

// LoadingState is the progress of a single card creation run. Each variant carries everything the previous one did.
type LoadingState interface {
	Stage() Stage
	Video() YouTubeVideo
	Summary() StateSummary
	loadingState()
}

type Starting struct {
	Target YouTubeVideo
}

type LoadedInfo struct {
	Target YouTubeVideo
	Info   VideoInfo
}

type LoadedThumbnail struct {
	Target YouTubeVideo
	Info   VideoInfo
}

type Created struct {
	Target YouTubeVideo
	Info   VideoInfo
	Card   *ShareCard
}

func (Starting) Stage() Stage        { return StageStarting }
func (LoadedInfo) Stage() Stage      { return StageLoadedInfo }
func (LoadedThumbnail) Stage() Stage { return StageLoadedThumbnail }
func (Created) Stage() Stage         { return StageCreated }

func (s Starting) Video() YouTubeVideo        { return s.Target }
func (s LoadedInfo) Video() YouTubeVideo      { return s.Target }
func (s LoadedThumbnail) Video() YouTubeVideo { return s.Target }
func (s Created) Video() YouTubeVideo         { return s.Target }

func (Starting) loadingState()        {}
func (LoadedInfo) loadingState()      {}
func (LoadedThumbnail) loadingState() {}
func (Created) loadingState()         {}

// StateSummary is a flat, comparable view of an AppState, for logging and diffing.
type StateSummary struct {
	Kind         string `diff:"kind"`
	Stage        string `diff:"stage"`
	VideoID      string `diff:"video_id"`
	VideoType    string `diff:"video_type"`
	App          string `diff:"app"`
	Title        string `diff:"title"`
	Channel      string `diff:"channel"`
	ThumbnailURL string `diff:"thumbnail_url"`
	CardWidth    int    `diff:"card_width"`
	CardHeight   int    `diff:"card_height"`
	GradientTop  string `diff:"gradient_top"`
	GradientBot  string `diff:"gradient_bottom"`
	ErrorCode    string `diff:"error_code"`
	RawInput     string `diff:"raw_input"`
}

func summarizeTarget(stage Stage, target YouTubeVideo) StateSummary {
	return StateSummary{
		Kind:      "share",
		Stage:     stage.String(),
		VideoID:   target.VideoID,
		VideoType: target.Type.String(),
		App:       target.App.String(),
	}
}

func (s *StateSummary) addInfo(info VideoInfo) {
	s.Title = info.Title
	s.Channel = info.Channel
	if info.ThumbnailURL != nil {
		s.ThumbnailURL = info.ThumbnailURL.String()
	}
}

func (s Starting) Summary() StateSummary {
	return summarizeTarget(s.Stage(), s.Target)
}

func (s LoadedInfo) Summary() StateSummary {
	res := summarizeTarget(s.Stage(), s.Target)
	res.addInfo(s.Info)
	return res
}

func (s LoadedThumbnail) Summary() StateSummary {
	res := summarizeTarget(s.Stage(), s.Target)
	res.addInfo(s.Info)
	return res
}

func (s Created) Summary() StateSummary {
	res := summarizeTarget(s.Stage(), s.Target)
	res.addInfo(s.Info)
	if s.Card != nil && s.Card.Image != nil {
		res.CardWidth = s.Card.Image.Bounds().Dx()
		res.CardHeight = s.Card.Image.Bounds().Dy()
		res.GradientTop = ToHexRGB(s.Card.Gradient.Primary)
		res.GradientBot = ToHexRGB(s.Card.Gradient.Secondary)
	}
	return res
}

// AppState is an entry on the navigation stack.
type AppState interface {
	Summary() StateSummary
	appState()
}

// Home is the entry screen, optionally prefilled with text found on the clipboard.
type Home struct {
	Clipboard *ParsedText
}

// Share is a card creation run in progress (or finished) for a target.
type Share struct {
	Target  YouTubeVideo
	Loading LoadingState
}

// ErrorState is the terminal state of a failed run. RawInput is the target URL, so the run can be retried.
type ErrorState struct {
	Message  ErrorMessage
	RawInput string
}

func (s Home) Summary() StateSummary {
	res := StateSummary{Kind: "home"}
	if s.Clipboard != nil {
		res.RawInput = s.Clipboard.Text
	}
	return res
}

func (s Share) Summary() StateSummary {
	if s.Loading == nil {
		return summarizeTarget(StageStarting, s.Target)
	}
	return s.Loading.Summary()
}

func (s ErrorState) Summary() StateSummary {
	return StateSummary{Kind: "error", ErrorCode: s.Message.Code, RawInput: s.RawInput}
}

func (Home) appState()       {}
func (Share) appState()      {}
func (ErrorState) appState() {}
