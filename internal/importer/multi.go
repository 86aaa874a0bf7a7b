package importer

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	// CountryBatchSize is how many country pipelines run concurrently.
	CountryBatchSize = 5

	// countryBatchDelay separates consecutive country batches.
	countryBatchDelay = 5000 * time.Millisecond
)

// CountryResult is the outcome of one country in a multi-country run.
type CountryResult struct {
	CountryCode string  `json:"country_code"`
	Report      *Report `json:"report,omitempty"`
	Err         error   `json:"-"`
}

// ImportAll processes every pending catalogue country in concurrent batches
// of CountryBatchSize. Pipelines share only the connection pool and the
// progress table; one country's failure never affects the others.
func (p *Pipeline) ImportAll(ctx context.Context, catalogue []string, minLevel, maxLevel int) ([]CountryResult, error) {
	pending, err := p.tracker.Pending(ctx, catalogue)
	if err != nil {
		return nil, err
	}
	log.Printf("[importer] multi-country run: %d of %d catalogue countries pending", len(pending), len(catalogue))

	var results []CountryResult
	for i := 0; i < len(pending); i += CountryBatchSize {
		end := i + CountryBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[i:end]

		batchResults := make([]CountryResult, len(batch))
		var wg sync.WaitGroup
		for j, country := range batch {
			wg.Add(1)
			go func(j int, country string) {
				defer wg.Done()
				report, err := p.ImportCountry(ctx, country, minLevel, maxLevel)
				if err != nil {
					log.Printf("[importer] %s failed: %v", country, err)
				}
				batchResults[j] = CountryResult{CountryCode: country, Report: report, Err: err}
			}(j, country)
		}
		wg.Wait()
		results = append(results, batchResults...)

		if end < len(pending) {
			select {
			case <-time.After(countryBatchDelay):
			case <-ctx.Done():
				return results, ctx.Err()
			}
		}
	}

	return results, nil
}
