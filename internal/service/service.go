package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gitactivity/internal/config"
	"gitactivity/internal/logger"
	"gitactivity/internal/models"
	"gitactivity/internal/pkg"
	"gitactivity/internal/upstream"
)

var (
	ErrUpstreamUnavailable = upstream.ErrUnavailable
	ErrMalformedPayload    = upstream.ErrMalformedPayload
)

// statsWindow is how far back the archive is read for aggregate stats.
const statsWindow = 14 * 24 * time.Hour

// Archive persists activity records. Optional: a nil Archive disables it.
type Archive interface {
	SaveActivities(ctx context.Context, records []models.ActivityRecord) error
	ActivitiesSince(ctx context.Context, since time.Time) ([]models.ActivityRecord, error)
}

type Options struct {
	ActivityDelay time.Duration
	StatsDelay    time.Duration
	StatsSource   config.StatsSource
}

type Service struct {
	source  upstream.Source
	archive Archive
	rng     *pkg.LockedRand
	opts    Options
	now     func() time.Time
}

func New(source upstream.Source, archive Archive, rng *pkg.LockedRand, opts Options) *Service {
	return &Service{
		source:  source,
		archive: archive,
		rng:     rng,
		opts:    opts,
		now:     time.Now,
	}
}

func (s *Service) Now() time.Time {
	return s.now()
}

// ListActivity fetches the upstream list, normalizes it and sorts it newest
// first. The delay before the fetch is cosmetic.
func (s *Service) ListActivity(ctx context.Context) ([]models.ActivityRecord, error) {
	if err := sleep(ctx, s.opts.ActivityDelay); err != nil {
		return nil, err
	}

	records, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if s.archive != nil {
		if err := s.archive.SaveActivities(ctx, records); err != nil {
			logger.Errorf(err, "ListActivity: failed to archive %d records", len(records))
		}
	}

	return records, nil
}

// Stats returns the summary shown on the dashboard cards.
func (s *Service) Stats(ctx context.Context) (*models.StatsSummary, error) {
	if err := sleep(ctx, s.opts.StatsDelay); err != nil {
		return nil, err
	}

	if s.opts.StatsSource == config.StatsPlaceholder {
		stats := PlaceholderStats(s.rng)
		return &stats, nil
	}

	records, err := s.statsDataset(ctx)
	if err != nil {
		return nil, err
	}
	stats := Aggregate(records, s.now())
	return &stats, nil
}

func (s *Service) statsDataset(ctx context.Context) ([]models.ActivityRecord, error) {
	if s.archive != nil {
		records, err := s.archive.ActivitiesSince(ctx, s.now().Add(-statsWindow))
		if err == nil {
			return records, nil
		}
		logger.Errorf(err, "Stats: archive read failed, falling back to upstream")
	}
	return s.fetch(ctx)
}

func (s *Service) fetch(ctx context.Context) ([]models.ActivityRecord, error) {
	raw, err := s.source.FetchUpdates(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch updates: %w", err)
	}
	records := NormalizeAll(raw)
	SortByTimestampDesc(records)
	return records, nil
}

// NormalizeAll maps raw records to the served shape without validation.
func NormalizeAll(raw []models.RawActivityRecord) []models.ActivityRecord {
	records := make([]models.ActivityRecord, 0, len(raw))
	for _, r := range raw {
		records = append(records, r.Normalize())
	}
	return records
}

// SortByTimestampDesc orders records most recent first. Records with equal
// or unparsable timestamps keep their relative order.
func SortByTimestampDesc(records []models.ActivityRecord) {
	times := make(map[string]time.Time, len(records))
	at := func(a models.ActivityRecord) time.Time {
		t, ok := times[a.Timestamp]
		if !ok {
			t = a.Time()
			times[a.Timestamp] = t
		}
		return t
	}
	sort.SliceStable(records, func(i, j int) bool {
		return at(records[i]).After(at(records[j]))
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsUpstreamError reports whether err originated from the upstream service.
func IsUpstreamError(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrMalformedPayload)
}
