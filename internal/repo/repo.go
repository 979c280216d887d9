package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gitactivity/internal/models"
)

// Repository archives activity records seen upstream so statistics can be
// computed over a longer window than the upstream list keeps.
type Repository struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func Connect(ctx context.Context, dbURL string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}
	return New(pool), nil
}

func (r *Repository) Close() {
	r.db.Close()
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// SaveActivities upserts records by id. Records are immutable upstream, so a
// conflict only refreshes the copied fields.
func (r *Repository) SaveActivities(ctx context.Context, records []models.ActivityRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, a := range records {
		var occurredAt *time.Time
		if t := a.Time(); !t.IsZero() {
			occurredAt = &t
		}
		batch.Queue(`
			INSERT INTO activities(id, request_id, author, action, from_branch, to_branch, raw_timestamp, occurred_at)
			VALUES($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT(id) DO UPDATE
			SET request_id=$2, author=$3, action=$4, from_branch=$5, to_branch=$6, raw_timestamp=$7, occurred_at=$8`,
			a.ID, a.RequestID, a.Author, string(a.Action), a.FromBranch, a.ToBranch, a.Timestamp, occurredAt)
	}

	return r.db.SendBatch(ctx, batch).Close()
}

// ActivitiesSince returns archived records that occurred at or after since,
// newest first.
func (r *Repository) ActivitiesSince(ctx context.Context, since time.Time) ([]models.ActivityRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, request_id, author, action, from_branch, to_branch, raw_timestamp
		FROM activities
		WHERE occurred_at >= $1
		ORDER BY occurred_at DESC, id`,
		since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.ActivityRecord{}
	for rows.Next() {
		var a models.ActivityRecord
		var action string
		if err := rows.Scan(&a.ID, &a.RequestID, &a.Author, &action, &a.FromBranch, &a.ToBranch, &a.Timestamp); err != nil {
			return nil, err
		}
		a.Action = models.Action(action)
		result = append(result, a)
	}

	return result, rows.Err()
}

func (r *Repository) CountActivities(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM activities").Scan(&n)
	return n, err
}
