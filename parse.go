package yt2ig

import (
	"errors"
	"net"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// urlCandidateRegexp is intentionally liberal; candidates are validated by parseStrictURL afterwards. The final
// character of a path/query excludes punctuation that usually ends a sentence or closes a quote.
var urlCandidateRegexp = regexp.MustCompile(`(?i)\b(` +
	`(?:https?://)?` +
	`(?:[1-9]\d{0,2}(?:\.\d{1,3}){3}|(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,})` +
	"(?:[^\\s()<>{}\\[\\]]*[^\\s`!()\\[\\]{};:'\".,<>?«»“”‘’])?" +
	`)`)

var errNotHTTPURL = errors.New("not an absolute http(s) URL")

// ParsedText keeps the user's original text next to the parse result, so an error can be shown beside the input.
type ParsedText struct {
	Text   string
	Target ShareTarget
	Err    error
}

func (p ParsedText) IsValid() bool {
	return p.Err == nil && p.Target != nil
}

// NewParsedText parses text with the DefaultProviderRegistry.
func NewParsedText(text string) ParsedText {
	target, err := Parse(text)
	return ParsedText{Text: text, Target: target, Err: err}
}

// Parse turns shared text into a ShareTarget using the DefaultProviderRegistry. The error is always a ParseError.
func Parse(input string) (ShareTarget, error) {
	return DefaultProviderRegistry.Parse(input)
}

// Parse turns shared text into a ShareTarget. Text that is a single URL is classified directly, otherwise exactly one
// URL must be found in the text. The error is always a ParseError.
func (r *ProviderRegistry) Parse(input string) (ShareTarget, error) {
	log := zap.S().Named("parse")
	trimmed := strings.TrimSpace(input)

	if !strings.ContainsFunc(trimmed, unicode.IsSpace) {
		u, err := parseStrictURL(trimmed)
		if err != nil {
			// An explicit but malformed URL is not re-interpreted as free text
			if hasHTTPScheme(trimmed) {
				log.Debugw("explicit URL failed to parse", "input", trimmed, "error", err)
				return nil, ErrInvalidURL
			}
			u, err = parseStrictURL("https://" + trimmed)
		}
		if err == nil {
			log.Debugw("input is a direct URL", "url", u.String())
			return r.classify(u)
		}
	}

	var candidates []*url.URL
	for _, s := range urlCandidateRegexp.FindAllString(trimmed, -1) {
		if u, err := normalizeCandidate(s); err == nil {
			candidates = append(candidates, u)
		}
	}
	switch len(candidates) {
	case 0:
		log.Debugw("no valid URLs found in input", "input", trimmed)
		return nil, ErrInvalidURL
	case 1:
		return r.classify(candidates[0])
	default:
		log.Debugw("multiple URLs found in input", "count", len(candidates))
		return nil, ErrMultipleURLs
	}
}

func (r *ProviderRegistry) classify(u *url.URL) (ShareTarget, error) {
	m, err := r.Match(u)
	if err != nil {
		var parseErr ParseError
		if errors.As(err, &parseErr) {
			return nil, parseErr
		}
		// Providers only report ParseError, anything else is a broken provider
		zap.S().Named("parse").Warnw("provider returned unexpected error", "url", u.String(), "error", err)
		return nil, ErrUnknownShareTarget
	}
	return m.Target, nil
}

func normalizeCandidate(s string) (*url.URL, error) {
	if hasHTTPScheme(s) {
		return parseStrictURL(s)
	}
	return parseStrictURL("https://" + s)
}

func hasHTTPScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// parseStrictURL only accepts absolute http(s) URLs with a hostname made of letters, digits, '-', '_' and '.', or an
// IP literal.
func parseStrictURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errNotHTTPURL
	}
	// A ':' must be followed by a port
	if u.Opaque != "" || u.Host == "" || strings.HasSuffix(u.Host, ":") {
		return nil, errNotHTTPURL
	}
	if !validHostname(u.Hostname()) {
		return nil, errNotHTTPURL
	}
	return u, nil
}

func validHostname(host string) bool {
	if host == "" {
		return false
	}
	if net.ParseIP(host) != nil {
		return true
	}
	if strings.HasPrefix(host, ".") || strings.Contains(host, "..") {
		return false
	}
	for _, c := range host {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}

// PathSegments splits the URL path into its decoded segments, without the leading slash. An escaped '/' stays inside
// its segment. An empty path gives a single empty segment.
func PathSegments(u *url.URL) []string {
	segments := strings.Split(strings.TrimPrefix(u.EscapedPath(), "/"), "/")
	for i, segment := range segments {
		if decoded, err := url.PathUnescape(segment); err == nil {
			segments[i] = decoded
		}
	}
	return segments
}
