package yt2ig

import (
	"errors"
	"net/url"
	"testing"

	assert_ "github.com/stretchr/testify/assert"

	"github.com/yt2ig/yt2ig/generic"
)

func constClassify(target ShareTarget, err error) ClassifyFunc {
	return func(*url.URL) (ShareTarget, error) {
		return target, err
	}
}

func TestProviderRegistry_Add(t *testing.T) {
	assert := assert_.New(t)
	var r ProviderRegistry

	err := r.Add(Provider{})
	assert.ErrorIs(err, ErrInvalidProvider)
	assert.Contains(err.Error(), "missing name")
	assert.Contains(err.Error(), "missing classify function")
	assert.Contains(err.Error(), "no hosts")

	assert.NoError(r.Create("a", []string{"A.example.com"}, constClassify(nil, ErrNoPath)))
	assert.ErrorIs(r.Create("a", []string{"b.example.com"}, constClassify(nil, ErrNoPath)), ErrDuplicateProvider)
	assert.Equal([]string{"a"}, r.List())
	assert.Panics(func() { r.MustCreate("a", []string{"c.example.com"}, constClassify(nil, ErrNoPath)) })
}

func TestProviderRegistry_Match(t *testing.T) {
	assert := assert_.New(t)
	var r ProviderRegistry
	first := YouTubeVideo{VideoID: "first"}
	second := YouTubeVideo{VideoID: "second"}
	r.MustAdd(Provider{Name: "low", Hosts: generic.NewSet("example.com"), Classify: constClassify(second, nil)})
	r.MustAdd(Provider{Name: "high", Hosts: generic.NewSet("EXAMPLE.com"), Classify: constClassify(first, nil), Priority: -1})
	assert.Equal([]string{"high", "low"}, r.List())
	hosts, err := r.Hosts("high")
	assert.NoError(err)
	assert.Equal([]string{"example.com"}, hosts)
	_, err = r.Hosts("missing")
	assert.ErrorIs(err, ErrUnknownProvider)

	m, err := r.Match(&url.URL{Scheme: "https", Host: "Example.COM:8443"})
	assert.NoError(err)
	assert.Equal("high", m.ProviderName)
	assert.Equal(first, m.Target)

	assert.NoError(r.SetPriority("low", PriorityHighest))
	m, err = r.Match(&url.URL{Scheme: "https", Host: "example.com"})
	assert.NoError(err)
	assert.Equal("low", m.ProviderName)
	p, err := r.GetPriority("low")
	assert.NoError(err)
	assert.Equal(PriorityHighest, p)

	_, err = r.Match(&url.URL{Scheme: "https", Host: "other.com"})
	assert.Equal(ErrUnknownShareTarget, err)

	m, err = r.MatchWith("high", &url.URL{Scheme: "https", Host: "other.com"})
	assert.NoError(err)
	assert.Equal(first, m.Target)
	_, err = r.MatchWith("missing", &url.URL{})
	assert.Equal(ErrUnknownProvider, err)
	assert.Equal(ErrUnknownProvider, r.SetPriority("missing", 0))
}

func TestProviderRegistry_Parse_UnexpectedError(t *testing.T) {
	assert := assert_.New(t)
	var r ProviderRegistry
	r.MustCreate("broken", []string{"example.com"}, constClassify(nil, errors.New("boom")))
	_, err := r.Parse("https://example.com/x")
	assert.Equal(ErrUnknownShareTarget, err)
}

func TestProviderRegistry_Parse_ProviderError(t *testing.T) {
	assert := assert_.New(t)
	var r ProviderRegistry
	r.MustCreate("p", []string{"example.com"}, constClassify(nil, ErrIsPlaylist))
	_, err := r.Parse("text with example.com/list in it")
	assert.Equal(ErrIsPlaylist, err)
}
