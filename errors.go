package yt2ig

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// A Coder is an error with a stable identifier that the presentation layer can map to a message.
type Coder interface {
	error
	Code() string
}

// ParseError is the closed set of reasons shared text could not be turned into a ShareTarget.
type ParseError int

const (
	ErrInvalidURL ParseError = iota + 1
	ErrMultipleURLs
	ErrUnknownShareTarget
	ErrNoVideoID
	ErrIsChannel
	ErrIsPlaylist
	ErrNoPath
	ErrUnknownPath
)

var parseErrorNames = map[ParseError]string{
	ErrInvalidURL:         "invalidurl",
	ErrMultipleURLs:       "multipleurls",
	ErrUnknownShareTarget: "unknownsharetarget",
	ErrNoVideoID:          "novideoid",
	ErrIsChannel:          "ischannel",
	ErrIsPlaylist:         "isplaylist",
	ErrNoPath:             "nopath",
	ErrUnknownPath:        "unknownpath",
}

var parseErrorDescriptions = map[ParseError]string{
	ErrInvalidURL:         "no valid URL found",
	ErrMultipleURLs:       "more than one URL found",
	ErrUnknownShareTarget: "URL is not a supported share target",
	ErrNoVideoID:          "URL has no video ID",
	ErrIsChannel:          "URL is a channel, not a video",
	ErrIsPlaylist:         "URL is a playlist, not a video",
	ErrNoPath:             "URL has no path",
	ErrUnknownPath:        "URL path is not recognised",
}

func (e ParseError) Code() string {
	if name, ok := parseErrorNames[e]; ok {
		return "error_parsing_" + name
	}
	return fmt.Sprintf("error_parsing_%d", int(e))
}

func (e ParseError) Error() string {
	if desc, ok := parseErrorDescriptions[e]; ok {
		return desc
	}
	return "unknown parse error"
}

// A CodedError is a failure reported by a card creation collaborator, matched with errors.Is.
type CodedError struct {
	code string
	msg  string
}

func NewCodedError(code, msg string) *CodedError {
	return &CodedError{code: code, msg: msg}
}

func (e *CodedError) Code() string  { return e.code }
func (e *CodedError) Error() string { return e.msg }

var (
	ErrVideoInfoNotFound    = NewCodedError("error_youtube_videoinfonotfound", "video info not found")
	ErrYouTubeError         = NewCodedError("error_youtube_youtubeerror", "YouTube returned an error")
	ErrNoThumbnailAvailable = NewCodedError("error_youtube_nothumbnailavailable", "no thumbnail available")
	ErrImageDownloadFailed  = NewCodedError("error_imageloader_imagedownloadfailed", "image download failed")
	ErrImageDecodeFailed    = NewCodedError("error_imageloader_imagedecodefailed", "image decode failed")
)

const (
	CodeNetworkTimeout           = "error_network_timeout"
	CodeNetworkUnknownHost       = "error_network_unknownhost"
	CodeNetworkConnectionRefused = "error_network_connectionrefused"
	CodeAny                      = "error_any"
)

// ErrorMessage is a stable error code plus optional parameters, rendered to text only at the presentation boundary.
type ErrorMessage struct {
	Code   string   `json:"code"`
	Params []string `json:"params,omitempty"`
}

// NewErrorMessage classifies any error into exactly one ErrorMessage. Coded errors keep their own code, recognised
// transport failures get a network code, and anything else falls back to CodeAny with the error text as parameter.
func NewErrorMessage(err error) ErrorMessage {
	var coder Coder
	if errors.As(err, &coder) {
		return ErrorMessage{Code: coder.Code()}
	}
	if isTimeout(err) {
		return ErrorMessage{Code: CodeNetworkTimeout}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrorMessage{Code: CodeNetworkUnknownHost}
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ErrorMessage{Code: CodeNetworkConnectionRefused}
	}
	desc := "unknown error"
	if err != nil && err.Error() != "" {
		desc = err.Error()
	}
	return ErrorMessage{Code: CodeAny, Params: []string{desc}}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Messages holds the default English template for each error code. Templates take the ErrorMessage parameters as %s
// verbs, in order.
var Messages = map[string]string{
	ErrInvalidURL.Code():           "That doesn't look like a valid link.",
	ErrMultipleURLs.Code():         "The text contains more than one link. Share a single video link.",
	ErrUnknownShareTarget.Code():   "Only YouTube and YouTube Music links are supported.",
	ErrNoVideoID.Code():            "The link doesn't point to a video.",
	ErrIsChannel.Code():            "That's a channel link. Share a link to a single video instead.",
	ErrIsPlaylist.Code():           "That's a playlist link. Share a link to a single video instead.",
	ErrNoPath.Code():               "The link doesn't point to a video.",
	ErrUnknownPath.Code():          "This kind of YouTube link isn't supported.",
	ErrVideoInfoNotFound.Code():    "The video could not be found. It may be private or deleted.",
	ErrYouTubeError.Code():         "YouTube returned an error. Try again later.",
	ErrNoThumbnailAvailable.Code(): "The video has no thumbnail.",
	ErrImageDownloadFailed.Code():  "The thumbnail could not be downloaded.",
	ErrImageDecodeFailed.Code():    "The thumbnail could not be read.",
	CodeNetworkTimeout:             "The request timed out. Check your connection and try again.",
	CodeNetworkUnknownHost:         "Couldn't reach the server. Are you offline?",
	CodeNetworkConnectionRefused:   "The server refused the connection.",
	CodeAny:                        "Something went wrong: %s",
}

// Text renders the message with the default English templates.
func (m ErrorMessage) Text() string {
	tmpl, ok := Messages[m.Code]
	if !ok {
		return "Unknown error: " + m.Code
	}
	if n := strings.Count(tmpl, "%s"); n > 0 {
		args := make([]any, n)
		for i := range args {
			if i < len(m.Params) {
				args[i] = m.Params[i]
			} else {
				args[i] = ""
			}
		}
		return fmt.Sprintf(tmpl, args...)
	}
	return tmpl
}

func (m ErrorMessage) String() string {
	if len(m.Params) == 0 {
		return m.Code
	}
	return m.Code + " " + strings.Join(m.Params, ", ")
}
