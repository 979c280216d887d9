package dashboard

import (
	"sync"
	"time"

	"gitactivity/internal/models"
)

type State int

const (
	StateLoading State = iota
	StateReady
	StateRefreshing
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateRefreshing:
		return "refreshing"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// View is the dashboard's in-memory state. It is safe for concurrent use;
// the poller writes fetch results while the renderer reads snapshots.
type View struct {
	mu sync.Mutex

	state       State
	activity    []models.ActivityRecord
	stats       *models.StatsSummary
	lastUpdated time.Time
	err         error

	filter   FilterState
	sort     SortConfig
	page     int
	pageSize int

	// started is the sequence number of the newest fetch begun.
	started uint64
}

func NewView() *View {
	return &View{
		state:    StateLoading,
		filter:   DefaultFilter(),
		sort:     DefaultSort(),
		page:     1,
		pageSize: DefaultPageSize,
	}
}

// Snapshot is a consistent, derived read of the view.
type Snapshot struct {
	State       State
	Err         error
	Stats       *models.StatsSummary
	LastUpdated time.Time
	Filter      FilterState
	Sort        SortConfig
	Authors     []string
	Page        Page

	// Skeletons are shown only for sections whose data is still absent.
	StatsPending    bool
	ActivityPending bool
}

// beginFetch moves the view into loading or refreshing and returns the
// sequence number the caller must hand back to finishFetch.
func (v *View) beginFetch() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.started++
	if v.activity != nil {
		v.state = StateRefreshing
	} else {
		v.state = StateLoading
	}
	v.err = nil
	return v.started
}

// finishFetch applies a fetch result unless a newer fetch has started since
// seq was issued. It reports whether the result was applied.
func (v *View) finishFetch(seq uint64, activity *models.ActivityResponse, stats *models.StatsResponse, err error) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if seq != v.started {
		return false
	}

	if err != nil {
		v.err = err
		v.state = StateError
		return true
	}

	v.activity = activity.Data
	if v.activity == nil {
		v.activity = []models.ActivityRecord{}
	}
	summary := stats.Data
	v.stats = &summary
	v.lastUpdated = models.ParseTimestamp(activity.Timestamp)
	if v.lastUpdated.IsZero() {
		v.lastUpdated = time.Now()
	}
	v.state = StateReady
	return true
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *View) SetSearch(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.Search = term
	v.page = 1
}

func (v *View) SetActionFilter(action string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.Action = action
	v.page = 1
}

func (v *View) SetAuthorFilter(author string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.Author = author
	v.page = 1
}

// SetPageSize ignores sizes outside PageSizes.
func (v *View) SetPageSize(size int) {
	if !ValidPageSize(size) {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pageSize = size
	v.page = 1
}

func (v *View) SetPage(page int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.page = max(page, 1)
}

func (v *View) SetSort(cfg SortConfig) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sort = cfg
}

func (v *View) ToggleSort(key Field) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sort = v.sort.Toggle(key)
}

func (v *View) NextPage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	totalPages := Paginate(Filter(v.activity, v.filter), v.page, v.pageSize).TotalPages
	v.page = max(min(v.page+1, totalPages), 1)
}

func (v *View) PrevPage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.page = max(v.page-1, 1)
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	visible := Sort(Filter(v.activity, v.filter), v.sort)

	var stats *models.StatsSummary
	if v.stats != nil {
		s := *v.stats
		stats = &s
	}

	return Snapshot{
		State:           v.state,
		Err:             v.err,
		Stats:           stats,
		LastUpdated:     v.lastUpdated,
		Filter:          v.filter,
		Sort:            v.sort,
		Authors:         Authors(v.activity),
		Page:            Paginate(visible, v.page, v.pageSize),
		StatsPending:    v.stats == nil,
		ActivityPending: v.activity == nil,
	}
}
