package yt2ig

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/yt2ig/yt2ig/generic"
)

var (
	ErrDuplicateProvider = errors.New("duplicate provider name")
	ErrInvalidProvider   = errors.New("invalid provider")
	ErrUnknownProvider   = errors.New("unknown provider")
)

var (
	PriorityHighest int16 = math.MinInt16
	PriorityDefault int16 = 0
	PriorityLowest  int16 = math.MaxInt16
)

// ClassifyFunc turns a URL on one of the provider's hosts into a ShareTarget, or a ParseError explaining why the URL
// is not something a card can be made for.
type ClassifyFunc = func(*url.URL) (ShareTarget, error)

// A Provider classifies URLs for the set of hosts it claims.
type Provider struct {
	Name string
	// Hosts are matched against the lowercased URL host, without port.
	Hosts    generic.Set[string]
	Classify ClassifyFunc
	// Priority of the provider, lower (including negative) means matching earlier.
	Priority int16
}

func (p Provider) validate() error {
	var result error
	if p.Name == "" {
		result = multierror.Append(result, fmt.Errorf("%w: missing name", ErrInvalidProvider))
	}
	if p.Classify == nil {
		result = multierror.Append(result, fmt.Errorf("%w: missing classify function", ErrInvalidProvider))
	}
	if p.Hosts.Count() == 0 {
		result = multierror.Append(result, fmt.Errorf("%w: no hosts", ErrInvalidProvider))
	}
	return result
}

// A Match is the result of a Provider successfully classifying a URL.
type Match struct {
	ProviderName string
	Target       ShareTarget
}

// A ProviderRegistry is a collection of Provider instances which share targets are classified through.
type ProviderRegistry struct {
	providers   []*Provider
	providerMap map[string]*Provider
}

// Add registers a Provider with the ProviderRegistry. Provider.Name, Provider.Hosts and Provider.Classify must be set,
// and Provider.Name must be unique within the ProviderRegistry.
func (r *ProviderRegistry) Add(p Provider) error {
	if r.providerMap == nil {
		r.providerMap = make(map[string]*Provider)
	}
	if err := p.validate(); err != nil {
		return err
	}
	if _, ok := r.providerMap[p.Name]; ok {
		return ErrDuplicateProvider
	}
	normalized := generic.NewSet[string]()
	for _, h := range p.Hosts.ToSlice() {
		normalized.Add(strings.ToLower(h))
	}
	p.Hosts = normalized
	r.providerMap[p.Name] = &p
	r.providers = append(r.providers, r.providerMap[p.Name])
	r.sortByPriority()
	return nil
}

// Create is a shortcut for Add(Provider{Name: ..., Hosts: ..., Classify: ...}).
func (r *ProviderRegistry) Create(name string, hosts []string, f ClassifyFunc) error {
	return r.Add(Provider{
		Name:     name,
		Hosts:    generic.NewSet(hosts...),
		Classify: f,
	})
}

// GetPriority gets the priority of the named Provider. If ErrUnknownProvider is returned, the returned priority is the
// default priority.
func (r *ProviderRegistry) GetPriority(name string) (int16, error) {
	if p, ok := r.providerMap[name]; ok {
		return p.Priority, nil
	}
	return PriorityDefault, ErrUnknownProvider
}

// List returns the names of registered providers in priority order.
func (r *ProviderRegistry) List() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name)
	}
	return names
}

// Hosts returns the hosts claimed by the named Provider, sorted.
func (r *ProviderRegistry) Hosts(name string) ([]string, error) {
	if p, ok := r.providerMap[name]; ok {
		return generic.Sorted(p.Hosts), nil
	}
	return nil, ErrUnknownProvider
}

// Match classifies u with the highest priority provider claiming its host. A URL on a host nobody claims is
// ErrUnknownShareTarget.
func (r *ProviderRegistry) Match(u *url.URL) (*Match, error) {
	host := strings.ToLower(u.Hostname())
	for _, p := range r.providers {
		if !p.Hosts.Contains(host) {
			continue
		}
		target, err := p.Classify(u)
		if err != nil {
			return nil, err
		}
		return &Match{ProviderName: p.Name, Target: target}, nil
	}
	return nil, ErrUnknownShareTarget
}

// MatchWith classifies u with a specific provider, regardless of the hosts it claims.
func (r *ProviderRegistry) MatchWith(name string, u *url.URL) (*Match, error) {
	p, ok := r.providerMap[name]
	if !ok {
		return nil, ErrUnknownProvider
	}
	target, err := p.Classify(u)
	if err != nil {
		return nil, err
	}
	return &Match{ProviderName: p.Name, Target: target}, nil
}

// MustAdd wraps Add but panics if there is an error.
func (r *ProviderRegistry) MustAdd(p Provider) {
	generic.Unwrap_(r.Add(p))
}

// MustCreate wraps Create but panics if there is an error.
func (r *ProviderRegistry) MustCreate(name string, hosts []string, f ClassifyFunc) {
	generic.Unwrap_(r.Create(name, hosts, f))
}

// SetPriority adjust the priority of a named Provider.
func (r *ProviderRegistry) SetPriority(name string, priority int16) error {
	if p, ok := r.providerMap[name]; ok {
		p.Priority = priority
		r.sortByPriority()
		return nil
	}
	return ErrUnknownProvider
}

func (r *ProviderRegistry) sortByPriority() {
	sort.SliceStable(r.providers, func(i, j int) bool {
		return r.providers[i].Priority < r.providers[j].Priority
	})
}

// DefaultProviderRegistry is populated by the provider packages; import package providers to register all of them.
var DefaultProviderRegistry ProviderRegistry
