package provider

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"datafeed/internal/logging"
	"datafeed/internal/schema"
)

// Provider describes a vendor and the datasets ("models") it serves.
type Provider struct {
	Name        string
	Description string
	Website     string
	// Credentials lists the credential names the vendor needs, e.g. "fmp_api_key".
	Credentials []string
	Fetchers    map[string]Fetcher
}

// Models lists the provider's dataset names, sorted.
func (p Provider) Models() []string {
	out := make([]string, 0, len(p.Fetchers))
	for m := range p.Fetchers {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Registry holds providers by name.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewRegistry(ps ...Provider) (*Registry, error) {
	r := &Registry{providers: make(map[string]Provider, len(ps))}
	for _, p := range ps {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(p Provider) error {
	if p.Name == "" {
		return fmt.Errorf("register provider: empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[p.Name]; ok {
		return fmt.Errorf("register provider: %s already registered", p.Name)
	}
	r.providers[p.Name] = p
	return nil
}

func (r *Registry) Provider(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return Provider{}, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}

// Fetcher resolves one dataset of one provider.
func (r *Registry) Fetcher(providerName, model string) (Provider, Fetcher, error) {
	p, err := r.Provider(providerName)
	if err != nil {
		return Provider{}, nil, err
	}
	f, ok := p.Fetchers[model]
	if !ok {
		return Provider{}, nil, fmt.Errorf("%w: %s has no %s", ErrUnknownModel, providerName, model)
	}
	return p, f, nil
}

// Names lists registered providers, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.providers))
	for n := range r.providers {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Executor runs fetchers from a registry with the credentials they are
// allowed to see.
type Executor struct {
	registry *Registry
	creds    Credentials
}

func NewExecutor(r *Registry, creds Credentials) *Executor {
	return &Executor{registry: r, creds: creds}
}

func (e *Executor) Registry() *Registry { return e.registry }

// Execute resolves provider and model and runs the pipeline.
func (e *Executor) Execute(ctx context.Context, providerName, model string, params map[string]any) ([]schema.Record, error) {
	p, f, err := e.registry.Fetcher(providerName, model)
	if err != nil {
		return nil, err
	}
	creds, err := FilterCredentials(p, e.creds, RequiresCredentials(f))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	recs, err := Fetch(ctx, f, params, creds)
	attrs := []any{
		slog.String("rqID", logging.RequestID(ctx)),
		slog.String("provider", providerName),
		slog.String("model", model),
		slog.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		slog.Info("fetch failed", append(attrs, slog.String("err", err.Error()))...)
		return nil, err
	}
	slog.Debug("fetch completed", append(attrs, slog.Int("records", len(recs)))...)
	return recs, nil
}

// FilterCredentials keeps only the credentials p declares. When require is
// set, a declared credential that is missing or blank is an error.
func FilterCredentials(p Provider, all Credentials, require bool) (Credentials, error) {
	out := make(Credentials, len(p.Credentials))
	for _, name := range p.Credentials {
		v := all[name]
		if v == "" {
			if require {
				return nil, &MissingCredentialError{Provider: p.Name, Credential: name, Website: p.Website}
			}
			continue
		}
		out[name] = v
	}
	return out, nil
}
