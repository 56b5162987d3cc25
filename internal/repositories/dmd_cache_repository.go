package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"complexcare/internal/database"
)

// DMDCacheEntry is a cached dm+d response body.
type DMDCacheEntry struct {
	Key       string
	Payload   []byte
	FetchedAt time.Time
}

type DMDCacheRepository struct {
	pool *pgxpool.Pool
}

func NewDMDCacheRepository(pool *pgxpool.Pool) *DMDCacheRepository {
	return &DMDCacheRepository{pool: pool}
}

// Get returns the entry regardless of age; callers decide freshness.
func (r *DMDCacheRepository) Get(ctx context.Context, key string) (*DMDCacheEntry, error) {
	e := DMDCacheEntry{Key: key}
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT payload, fetched_at FROM dmd_cache WHERE cache_key = $1`, key,
	).Scan(&e.Payload, &e.FetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *DMDCacheRepository) Put(ctx context.Context, key string, payload []byte) error {
	_, err := database.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO dmd_cache (cache_key, payload, fetched_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (cache_key) DO UPDATE SET payload = EXCLUDED.payload, fetched_at = EXCLUDED.fetched_at
	`, key, payload)
	return err
}

// Purge drops entries fetched before cutoff.
func (r *DMDCacheRepository) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM dmd_cache WHERE fetched_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
