package sqlite

import (
	"context"
	"database/sql"
)

// CompletionCache stores model responses keyed by content hash. Completions
// run at temperature 0, so replaying a cached response is equivalent to
// repeating the call.
type CompletionCache struct {
	db *sql.DB
}

func NewCompletionCache(db *sql.DB) *CompletionCache {
	return &CompletionCache{db: db}
}

func (c *CompletionCache) Get(ctx context.Context, key string) (string, bool, error) {
	var response string
	err := c.db.QueryRowContext(ctx, "SELECT response FROM llm_cache WHERE key = ?", key).Scan(&response)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return response, true, nil
}

func (c *CompletionCache) Put(ctx context.Context, key, response string) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO llm_cache (key, response) VALUES (?, ?)", key, response)
	return err
}
