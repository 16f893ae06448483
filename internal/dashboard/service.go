// Package dashboard turns a filter and a dimension selection into chart
// payloads over the shared cleaned dataset.
package dashboard

import (
	"context"
	"fmt"
	"sync"

	"gtdash/domain/core"
	"gtdash/domain/incident"
	"gtdash/internal"
	"gtdash/internal/explore"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSampleSize = 5000
	DefaultSampleSeed = 5
	DefaultCacheSize  = 128
	defaultWorkers    = 4
)

// DatasetSource yields the cleaned dataset; satisfied by *snapshot.Provider
type DatasetSource interface {
	Dataset(ctx context.Context) (*incident.Dataset, error)
}

// Request selects what the charts show. A nil Filter admits the whole
// dataset; nil Dims means the default metric. An empty, non-nil Dims is
// rejected.
type Request struct {
	Filter *explore.FilterSpec  `json:"filter,omitempty"`
	Dims   []incident.Dimension `json:"dims,omitempty"`
}

// Service builds chart payloads and caches them per request fingerprint
type Service struct {
	source     DatasetSource
	sampleSize int
	sampleSeed int64
	workers    int
	cache      *lru.Cache
	logger     *internal.Logger
}

// Option configures a Service
type Option func(*Service)

// WithSampling sets the row cap and seed used by the detail charts
func WithSampling(size int, seed int64) Option {
	return func(s *Service) {
		s.sampleSize = size
		s.sampleSeed = seed
	}
}

// WithWorkers bounds how many charts Build computes concurrently
func WithWorkers(n int) Option {
	return func(s *Service) { s.workers = n }
}

// WithLogger sets the service logger
func WithLogger(logger *internal.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a chart service with an LRU cache of cacheSize entries
func NewService(source DatasetSource, cacheSize int, opts ...Option) (*Service, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart cache: %w", err)
	}

	s := &Service{
		source:     source,
		sampleSize: DefaultSampleSize,
		sampleSeed: DefaultSampleSeed,
		workers:    defaultWorkers,
		cache:      cache,
		logger:     internal.DefaultLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// resolved is a request with defaults applied against a concrete dataset
type resolved struct {
	ds     *incident.Dataset
	filter explore.FilterSpec
	dims   []incident.Dimension

	once sync.Once
	in   input
}

func (s *Service) resolve(ctx context.Context, req Request) (*resolved, error) {
	ds, err := s.source.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	dims := req.Dims
	if dims == nil {
		dims = incident.DefaultDimensions
	}
	if err := explore.ValidateDimensions(dims); err != nil {
		return nil, err
	}

	filter := explore.DefaultFilter(ds)
	if req.Filter != nil {
		filter = *req.Filter
	}
	return &resolved{ds: ds, filter: filter, dims: dims}, nil
}

// input filters and samples at most once per resolved request
func (r *resolved) input(size int, seed int64) input {
	r.once.Do(func() {
		view := explore.Filter(r.ds.All(), r.filter)
		r.in = input{view: view, sample: explore.Sample(view, size, seed), dims: r.dims}
	})
	return r.in
}

func (s *Service) cacheKey(r *resolved, chart string) core.Hash {
	dims := make([]string, len(r.dims))
	for i, d := range r.dims {
		dims[i] = string(d)
	}
	return core.ComputeRequestHash(map[string][]string{
		"dataset":      {r.ds.ID().String()},
		"chart":        {chart},
		"dims":         dims,
		"years":        {fmt.Sprintf("%d..%d", r.filter.Years.Lo, r.filter.Years.Hi)},
		"countries":    r.filter.Countries,
		"regions":      r.filter.Regions,
		"attack_types": r.filter.AttackTypes,
		"sample":       {fmt.Sprintf("%d/%d", s.sampleSize, s.sampleSeed)},
	})
}

func (s *Service) build(r *resolved, name string) (*Payload, error) {
	b, ok := builders[name]
	if !ok {
		return nil, core.NewUnknownChartError(name)
	}

	key := s.cacheKey(r, name)
	if cached, ok := s.cache.Get(key); ok {
		s.logger.Trace("[Dashboard] cache hit for %s", name)
		return cached.(*Payload), nil
	}

	payload, err := b(r.input(s.sampleSize, s.sampleSeed))
	if err != nil {
		return nil, err
	}
	payload.Chart = name
	s.cache.Add(key, payload)
	s.logger.Debug("[Dashboard] built %s from %d rows", name, payload.Rows)
	return payload, nil
}

// Chart builds one named chart. Returned payloads are shared with the
// cache and must not be modified.
func (s *Service) Chart(ctx context.Context, name string, req Request) (*Payload, error) {
	if _, ok := builders[name]; !ok {
		return nil, core.NewUnknownChartError(name)
	}
	r, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.build(r, name)
}

// Build computes every chart concurrently. The first failure cancels the
// remaining builds.
func (s *Service) Build(ctx context.Context, req Request) (map[string]*Payload, error) {
	r, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	names := ChartNames()
	results := make([]*Payload, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := s.build(r, name)
			if err != nil {
				return fmt.Errorf("chart %s: %w", name, err)
			}
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*Payload, len(names))
	for i, name := range names {
		out[name] = results[i]
	}
	return out, nil
}

// Summary returns the KPI row for a request's filter
func (s *Service) Summary(ctx context.Context, filter *explore.FilterSpec) (explore.KPIs, error) {
	r, err := s.resolve(ctx, Request{Filter: filter})
	if err != nil {
		return explore.KPIs{}, err
	}
	return explore.Summarize(r.input(0, 0).view), nil
}
