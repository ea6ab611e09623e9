// Package store implements the record store: a CRUD plus aggregate engine
// over named collections of flat records, seeded from the app config's
// resource definitions. Drivers share one query pipeline so filter, sort,
// pagination, and aggregation behave identically regardless of persistence.
package store

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vivek100/oneShotCodeGen-sub000/model"
)

// Sort orders a listing by one field. Any order other than "ASC"
// (case-insensitive) sorts descending.
type Sort struct {
	Field string `json:"field"`
	Order string `json:"order"` // "ASC" or "DESC"
}

// Search narrows a listing to records where at least one of Fields contains
// Query, case-insensitively. It runs after filtering and before sorting and
// pagination. Non-string values never match.
type Search struct {
	Query  string
	Fields []string
}

// Pagination selects a 1-indexed page slice.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
}

// ListParams carries the filter/search/sort/pagination tuple for GetList.
//
// A nil Filter with no Search bypasses the whole pipeline: the full
// collection is returned as-is with Total equal to its length, regardless of
// Sort and Pagination. An empty non-nil Filter matches every record but
// still sorts and paginates, and a Search always engages the pipeline.
type ListParams struct {
	Filter     map[string]any
	Search     *Search
	Sort       *Sort
	Pagination *Pagination
}

// ListResult is the outcome of GetList. Total is the filtered count before
// pagination.
type ListResult struct {
	Data  []model.Record `json:"data"`
	Total int            `json:"total"`
}

// AggregateParams describes a reduction over a (filtered) collection.
type AggregateParams struct {
	Field  string
	Fn     string // count|sum|avg|min|max
	Filter map[string]any
}

// Store is the record store contract. All view providers and the resource
// API consume exactly these operations; a persistent driver is a drop-in
// replacement for the in-memory one.
type Store interface {
	GetList(ctx context.Context, resource string, p ListParams) (ListResult, error)
	GetOne(ctx context.Context, resource, id string) (model.Record, error)
	Create(ctx context.Context, resource string, data model.Record) (model.Record, error)
	Update(ctx context.Context, resource, id string, data model.Record) (model.Record, error)
	Delete(ctx context.Context, resource, id string) (model.Record, error)
	Aggregate(ctx context.Context, resource string, p AggregateParams) (float64, error)

	// Resources returns the known collection names, sorted.
	Resources() []string

	// AddMutationHook registers a callback invoked after every successful
	// write to a resource. Used for reference cache invalidation.
	AddMutationHook(fn func(resource string))

	HealthCheck(ctx context.Context) error
}

// defaultPerPage applies when pagination is requested without a page size.
const defaultPerPage = 10

// --- shared query pipeline ---

// applyFilter returns the records matching every filter key with strict
// equality. The caller handles the nil-filter bypass before calling this.
func applyFilter(records []model.Record, filter map[string]any) []model.Record {
	if len(filter) == 0 {
		out := make([]model.Record, len(records))
		copy(out, records)
		return out
	}
	var out []model.Record
	for _, rec := range records {
		match := true
		for k, want := range filter {
			if !strictEq(rec[k], want) {
				match = false
				break
			}
		}
		if match {
			out = append(out, rec)
		}
	}
	if out == nil {
		out = []model.Record{}
	}
	return out
}

// strictEq compares two record values without type coercion: values of
// different kinds never match, and composite values never match anything.
func strictEq(a, b any) bool {
	switch a.(type) {
	case map[string]any, []any:
		return false
	}
	switch b.(type) {
	case map[string]any, []any:
		return false
	}
	return a == b
}

// applySearch keeps the records where any of the search fields contains the
// query, case-insensitively.
func applySearch(records []model.Record, s *Search) []model.Record {
	if s == nil || strings.TrimSpace(s.Query) == "" || len(s.Fields) == 0 {
		return records
	}
	needle := strings.ToLower(s.Query)
	out := []model.Record{}
	for _, rec := range records {
		for _, field := range s.Fields {
			v, ok := rec[field].(string)
			if ok && strings.Contains(strings.ToLower(v), needle) {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

// sortRecords sorts in place by the given field. Numbers compare
// numerically, strings lexicographically; values are not coerced by the
// field's declared type, so numeric values stored as strings sort as strings.
// Only an "asc" order (case-insensitive) sorts ascending; anything else,
// including an empty order, sorts descending.
func sortRecords(records []model.Record, s *Sort) {
	if s == nil || s.Field == "" {
		return
	}
	desc := !strings.EqualFold(s.Order, "ASC")
	sort.SliceStable(records, func(i, j int) bool {
		less := compareValues(records[i][s.Field], records[j][s.Field]) < 0
		if desc {
			return compareValues(records[j][s.Field], records[i][s.Field]) < 0
		}
		return less
	})
}

// compareValues returns -1, 0, or 1. Both numbers → numeric order; both
// strings → lexicographic; anything else falls back to string form.
func compareValues(a, b any) int {
	af, aNum := a.(float64)
	bf, bNum := b.(float64)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		return strings.Compare(as, bs)
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// paginate returns the 1-indexed page slice. Out-of-range pages are empty.
func paginate(records []model.Record, p *Pagination) []model.Record {
	if p == nil {
		return records
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	perPage := p.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	start := (page - 1) * perPage
	if start >= len(records) {
		return []model.Record{}
	}
	end := start + perPage
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// runList executes the full list pipeline over an in-memory collection.
func runList(records []model.Record, p ListParams) ListResult {
	if p.Filter == nil && p.Search == nil {
		out := make([]model.Record, len(records))
		for i, rec := range records {
			out[i] = cloneRecord(rec)
		}
		return ListResult{Data: out, Total: len(out)}
	}

	filtered := applyFilter(records, p.Filter)
	filtered = applySearch(filtered, p.Search)
	sortRecords(filtered, p.Sort)
	paged := paginate(filtered, p.Pagination)

	out := make([]model.Record, len(paged))
	for i, rec := range paged {
		out[i] = cloneRecord(rec)
	}
	return ListResult{Data: out, Total: len(filtered)}
}

// runAggregate executes a reduction over an in-memory collection.
//
// A nil filter short-circuits to the collection length no matter which
// function was requested. That matches the long-standing behavior metric
// callers rely on for count-style cards; pair a non-nil filter with sum or
// avg to get an actual sum or average.
func runAggregate(records []model.Record, p AggregateParams) (float64, error) {
	if p.Filter == nil {
		return float64(len(records)), nil
	}

	filtered := applyFilter(records, p.Filter)

	switch p.Fn {
	case "count":
		return float64(len(filtered)), nil
	case "sum":
		var sum float64
		for _, rec := range filtered {
			sum += JSNumber(rec[p.Field])
		}
		return sum, nil
	case "avg":
		var sum float64
		for _, rec := range filtered {
			sum += JSNumber(rec[p.Field])
		}
		n := len(filtered)
		if n == 0 {
			n = 1
		}
		return sum / float64(n), nil
	case "min":
		min := math.Inf(1)
		for _, rec := range filtered {
			if v := JSNumber(rec[p.Field]); v < min {
				min = v
			}
		}
		return min, nil
	case "max":
		max := math.Inf(-1)
		for _, rec := range filtered {
			if v := JSNumber(rec[p.Field]); v > max {
				max = v
			}
		}
		return max, nil
	default:
		return 0, model.NewUnsupportedAggregateError(p.Fn)
	}
}

// JSNumber coerces a record value to a number: numeric strings parse,
// booleans become 1 or 0, and everything unparseable or absent becomes 0.
func JSNumber(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) {
			return 0
		}
		return f
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// cloneRecord returns a shallow copy so callers cannot mutate stored state.
func cloneRecord(rec model.Record) model.Record {
	out := make(model.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

// mergeRecord shallow-merges data over base. The id field is never
// overwritten, even when present in data.
func mergeRecord(base, data model.Record) model.Record {
	out := cloneRecord(base)
	for k, v := range data {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// synthesizeID generates a record id in the form {unix-ms}_{9 base36 chars}.
func synthesizeID() string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(time.Now().UnixMilli(), 10))
	b.WriteByte('_')
	max := big.NewInt(int64(len(base36Alphabet)))
	for i := 0; i < 9; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			b.WriteByte('0')
			continue
		}
		b.WriteByte(base36Alphabet[n.Int64()])
	}
	return b.String()
}

// FormatValue renders a record value as the string JavaScript would use for
// an object key: floats without a trailing ".0", nil as the empty string.
func FormatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// recordID extracts the string form of a record's id.
func recordID(rec model.Record) string {
	return FormatValue(rec["id"])
}
