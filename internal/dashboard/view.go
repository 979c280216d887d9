// Package dashboard holds the activity dashboard's view model: the filter,
// sort and pagination applied to the loaded activity list, the
// loading/ready/refreshing/error state machine and the poller that keeps it
// fresh.
package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"gitactivity/internal/models"
)

// All is the wildcard value for the action and author filters.
const All = "all"

type Field string

const (
	FieldID         Field = "id"
	FieldRequestID  Field = "request_id"
	FieldAuthor     Field = "author"
	FieldAction     Field = "action"
	FieldFromBranch Field = "from_branch"
	FieldToBranch   Field = "to_branch"
	FieldTimestamp  Field = "timestamp"
)

var fields = []Field{FieldID, FieldRequestID, FieldAuthor, FieldAction, FieldFromBranch, FieldToBranch, FieldTimestamp}

func ParseField(s string) (Field, error) {
	for _, f := range fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type SortConfig struct {
	Key       Field
	Direction Direction
}

func DefaultSort() SortConfig {
	return SortConfig{Key: FieldTimestamp, Direction: Desc}
}

// Toggle is the column-click transition: the same column flips direction,
// a new column starts ascending.
func (s SortConfig) Toggle(key Field) SortConfig {
	if s.Key == key && s.Direction == Asc {
		return SortConfig{Key: key, Direction: Desc}
	}
	return SortConfig{Key: key, Direction: Asc}
}

type FilterState struct {
	Search string
	Action string
	Author string
}

func DefaultFilter() FilterState {
	return FilterState{Action: All, Author: All}
}

func isAll(v string) bool {
	return v == "" || v == All
}

// Match reports whether a passes the search term and both selectors.
func (f FilterState) Match(a models.ActivityRecord) bool {
	term := strings.ToLower(f.Search)
	matchesSearch := strings.Contains(strings.ToLower(a.Author), term) ||
		strings.Contains(strings.ToLower(string(a.Action)), term) ||
		strings.Contains(strings.ToLower(a.FromBranch), term) ||
		strings.Contains(strings.ToLower(a.ToBranch), term)
	matchesAction := isAll(f.Action) || strings.EqualFold(string(a.Action), f.Action)
	matchesAuthor := isAll(f.Author) || a.Author == f.Author
	return matchesSearch && matchesAction && matchesAuthor
}

// Filter returns the matching records in their original order.
func Filter(records []models.ActivityRecord, f FilterState) []models.ActivityRecord {
	out := make([]models.ActivityRecord, 0, len(records))
	for _, a := range records {
		if f.Match(a) {
			out = append(out, a)
		}
	}
	return out
}

// Sort returns a stably sorted copy of records.
func Sort(records []models.ActivityRecord, cfg SortConfig) []models.ActivityRecord {
	out := make([]models.ActivityRecord, len(records))
	copy(out, records)
	if cfg.Key == "" {
		return out
	}

	less := func(a, b models.ActivityRecord) bool {
		return fieldValue(a, cfg.Key) < fieldValue(b, cfg.Key)
	}
	if cfg.Key == FieldTimestamp {
		less = func(a, b models.ActivityRecord) bool {
			return a.Time().UnixMilli() < b.Time().UnixMilli()
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if cfg.Direction == Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func fieldValue(a models.ActivityRecord, key Field) string {
	switch key {
	case FieldID:
		return a.ID
	case FieldRequestID:
		return a.RequestID
	case FieldAuthor:
		return a.Author
	case FieldAction:
		return string(a.Action)
	case FieldFromBranch:
		return a.FromBranch
	case FieldToBranch:
		return a.ToBranch
	default:
		return a.Timestamp
	}
}

var PageSizes = []int{5, 10, 25, 50}

const DefaultPageSize = 10

func ValidPageSize(size int) bool {
	for _, s := range PageSizes {
		if s == size {
			return true
		}
	}
	return false
}

type Page struct {
	Items      []models.ActivityRecord
	Number     int
	Size       int
	TotalPages int
	Total      int
}

// From and To are the 1-based bounds shown as "Showing From to To of Total".
func (p Page) From() int {
	if p.Total == 0 {
		return 0
	}
	return (p.Number-1)*p.Size + 1
}

func (p Page) To() int {
	return min(p.Number*p.Size, p.Total)
}

// Paginate slices one page out of records. Out-of-range pages are clamped to
// the nearest valid page and unsupported sizes fall back to DefaultPageSize.
func Paginate(records []models.ActivityRecord, page, size int) Page {
	if !ValidPageSize(size) {
		size = DefaultPageSize
	}
	total := len(records)
	totalPages := (total + size - 1) / size

	page = min(page, totalPages)
	page = max(page, 1)

	start := min((page-1)*size, total)
	end := min(start+size, total)

	return Page{
		Items:      records[start:end],
		Number:     page,
		Size:       size,
		TotalPages: totalPages,
		Total:      total,
	}
}

// Authors lists the distinct authors in records, sorted.
func Authors(records []models.ActivityRecord) []string {
	seen := make(map[string]struct{}, len(records))
	authors := []string{}
	for _, a := range records {
		if _, ok := seen[a.Author]; ok {
			continue
		}
		seen[a.Author] = struct{}{}
		authors = append(authors, a.Author)
	}
	sort.Strings(authors)
	return authors
}
