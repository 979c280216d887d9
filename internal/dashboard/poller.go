package dashboard

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"gitactivity/internal/models"
)

const DefaultInterval = 15 * time.Second

// Fetcher is the subset of the API client the poller needs.
type Fetcher interface {
	FetchActivityNoCache(ctx context.Context) (*models.ActivityResponse, error)
	FetchStatsNoCache(ctx context.Context) (*models.StatsResponse, error)
}

// Poller refreshes a View on a fixed interval and on demand. Overlapping
// fetches are allowed; only the most recently started one is applied, and
// starting a fetch cancels the one it supersedes.
type Poller struct {
	fetcher  Fetcher
	view     *View
	interval time.Duration
	refresh  chan struct{}

	// OnUpdate, if set, is called when a background fetch starts and after
	// every applied fetch result.
	OnUpdate func(Snapshot)

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPoller(fetcher Fetcher, view *View, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetcher:  fetcher,
		view:     view,
		interval: interval,
		refresh:  make(chan struct{}, 1),
	}
}

// Refresh requests a fetch from a running poller. Requests made while one is
// already queued are coalesced.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Run fetches immediately, then on every tick and Refresh, until ctx is
// done. In-flight fetches are cancelled and their results discarded before
// Run returns.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	defer p.wg.Wait()

	p.start(ctx)
	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			if p.cancel != nil {
				p.cancel()
			}
			p.mu.Unlock()
			return ctx.Err()
		case <-ticker.C:
			p.start(ctx)
		case <-p.refresh:
			p.start(ctx)
		}
	}
}

// FetchOnce runs one fetch synchronously and returns its error, if any.
func (p *Poller) FetchOnce(ctx context.Context) error {
	seq := p.view.beginFetch()
	activity, stats, err := FetchBoth(ctx, p.fetcher)
	if p.view.finishFetch(seq, activity, stats, err) && p.OnUpdate != nil {
		p.OnUpdate(p.view.Snapshot())
	}
	return err
}

func (p *Poller) start(ctx context.Context) {
	// Take the new sequence number before cancelling the superseded fetch so
	// its cancellation error can never be applied.
	seq := p.view.beginFetch()
	fetchCtx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = cancel
	p.mu.Unlock()

	if p.OnUpdate != nil {
		p.OnUpdate(p.view.Snapshot())
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()

		activity, stats, err := FetchBoth(fetchCtx, p.fetcher)
		if ctx.Err() != nil {
			return
		}
		if p.view.finishFetch(seq, activity, stats, err) && p.OnUpdate != nil {
			p.OnUpdate(p.view.Snapshot())
		}
	}()
}

// FetchBoth requests activity and stats concurrently. Either failing fails
// both; the view shows data only when the pair succeeded.
func FetchBoth(ctx context.Context, f Fetcher) (*models.ActivityResponse, *models.StatsResponse, error) {
	var (
		activity *models.ActivityResponse
		stats    *models.StatsResponse
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		activity, err = f.FetchActivityNoCache(egCtx)
		return err
	})
	eg.Go(func() error {
		var err error
		stats, err = f.FetchStatsNoCache(egCtx)
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return activity, stats, nil
}
