// Package snapshot builds the cleaned dataset at most once per process and
// hands the same immutable value to every caller.
package snapshot

import (
	"context"
	"log"
	"sync"

	"gtdash/domain/incident"
	"gtdash/internal/cleaning"
	"gtdash/ports"
)

// Provider lazily loads and cleans one incident source
type Provider struct {
	source  ports.IncidentSourcePort
	cleaner *cleaning.Cleaner

	once    sync.Once
	dataset *incident.Dataset
	report  *cleaning.CleanReport
	err     error
}

// NewProvider creates a provider; nothing is read until Dataset is called
func NewProvider(source ports.IncidentSourcePort, cleaner *cleaning.Cleaner) *Provider {
	if cleaner == nil {
		cleaner = cleaning.NewCleaner()
	}
	return &Provider{source: source, cleaner: cleaner}
}

// Dataset returns the cleaned dataset, building it on first call. A failed
// build is not retried; every later call returns the same error.
func (p *Provider) Dataset(ctx context.Context) (*incident.Dataset, error) {
	p.once.Do(func() {
		log.Printf("[Snapshot] Building dataset from %s", p.source.Describe())
		p.dataset, p.report, p.err = p.cleaner.Load(ctx, p.source)
		if p.err != nil {
			log.Printf("[Snapshot] Build failed: %v", p.err)
			return
		}
		log.Printf("[Snapshot] Dataset %s ready: %s", p.dataset.ID(), p.report.Summary())
	})
	return p.dataset, p.err
}

// Report returns the cleaning report, or nil before a successful build
func (p *Provider) Report() *cleaning.CleanReport {
	if _, err := p.Dataset(context.Background()); err != nil {
		return nil
	}
	return p.report
}

// Static wraps an already built dataset
func Static(ds *incident.Dataset) *Provider {
	p := &Provider{dataset: ds}
	p.once.Do(func() {})
	return p
}
