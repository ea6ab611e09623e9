// Package search fans a text query out across every resource the caller may
// view and collects contains-matches on text fields.
package search

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vivek100/oneShotCodeGen-sub000/internal/appconfig"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/permission"
	"github.com/vivek100/oneShotCodeGen-sub000/internal/store"
	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// Provider orchestrates cross-resource search.
type Provider struct {
	registry           *appconfig.Registry
	gate               *permission.Gate
	records            store.Store
	timeoutPerResource time.Duration
	maxPerResource     int
}

// NewProvider creates a search Provider.
func NewProvider(registry *appconfig.Registry, gate *permission.Gate, records store.Store, timeoutPerResource time.Duration, maxPerResource int) *Provider {
	if timeoutPerResource <= 0 {
		timeoutPerResource = 3 * time.Second
	}
	if maxPerResource <= 0 {
		maxPerResource = 50
	}
	return &Provider{
		registry:           registry,
		gate:               gate,
		records:            records,
		timeoutPerResource: timeoutPerResource,
		maxPerResource:     maxPerResource,
	}
}

// resourceResult collects the outcome of searching a single resource.
type resourceResult struct {
	Resource string
	Results  []model.SearchResult
	Status   string // "ok", "timeout", "error"
}

// Search runs a case-insensitive contains-match over the text fields of all
// resources the caller's role may view.
func (p *Provider) Search(ctx context.Context, rctx *model.RequestContext, query string) (model.SearchResponse, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return model.SearchResponse{}, model.NewBadRequestError(
			"Search query must be at least 2 characters",
		)
	}

	var eligible []string
	for name := range p.registry.Resources() {
		if p.gate.Can(rctx.Role, name, "view") {
			eligible = append(eligible, name)
		}
	}
	sort.Strings(eligible)

	startTime := time.Now()
	results := p.searchResources(ctx, rctx, eligible, query)

	var merged []model.SearchResult
	sources := make(map[string]string, len(results))
	for _, r := range results {
		sources[r.Resource] = r.Status
		merged = append(merged, r.Results...)
	}

	// Stable output order: resource, then record, then field.
	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Resource != b.Resource {
			return a.Resource < b.Resource
		}
		if a.RecordID != b.RecordID {
			return a.RecordID < b.RecordID
		}
		return a.Field < b.Field
	})

	if merged == nil {
		merged = []model.SearchResult{}
	}
	return model.SearchResponse{
		Results:     merged,
		Total:       len(merged),
		Query:       query,
		Sources:     sources,
		QueryTimeMs: time.Since(startTime).Milliseconds(),
	}, nil
}

// searchResources scans all eligible resources concurrently.
func (p *Provider) searchResources(ctx context.Context, rctx *model.RequestContext, resources []string, query string) []resourceResult {
	if len(resources) == 0 {
		return nil
	}

	ch := make(chan resourceResult, len(resources))
	var wg sync.WaitGroup

	for _, name := range resources {
		wg.Add(1)
		go func(resource string) {
			defer wg.Done()
			ch <- p.searchResource(ctx, resource, query)
		}(name)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var results []resourceResult
	for r := range ch {
		results = append(results, r)
	}
	return results
}

// searchResource scans one resource's text fields with a timeout.
func (p *Provider) searchResource(ctx context.Context, resource, query string) resourceResult {
	ctx, cancel := context.WithTimeout(ctx, p.timeoutPerResource)
	defer cancel()

	def, ok := p.registry.GetResource(resource)
	if !ok {
		return resourceResult{Resource: resource, Status: "error"}
	}

	var textFields []string
	for name, f := range def.Fields {
		if f.Type == "text" {
			textFields = append(textFields, name)
		}
	}
	sort.Strings(textFields)
	if len(textFields) == 0 {
		return resourceResult{Resource: resource, Status: "ok"}
	}

	listing, err := p.records.GetList(ctx, resource, store.ListParams{})
	if err != nil {
		status := "error"
		if ctx.Err() == context.DeadlineExceeded {
			status = "timeout"
		}
		return resourceResult{Resource: resource, Status: status}
	}

	needle := strings.ToLower(query)
	var matches []model.SearchResult
	for _, rec := range listing.Data {
		for _, field := range textFields {
			s, ok := rec[field].(string)
			if !ok || !strings.Contains(strings.ToLower(s), needle) {
				continue
			}
			matches = append(matches, model.SearchResult{
				Resource: resource,
				RecordID: store.FormatValue(rec["id"]),
				Field:    field,
				Value:    s,
			})
			if len(matches) >= p.maxPerResource {
				return resourceResult{Resource: resource, Results: matches, Status: "ok"}
			}
		}
	}

	return resourceResult{Resource: resource, Results: matches, Status: "ok"}
}
