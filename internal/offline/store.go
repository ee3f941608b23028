package offline

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Store persists cached responses, one logical cache per version tag, the
// way the browser's Cache Storage keeps one named cache per deploy.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type CachedResponse struct {
	URL    string
	Status int
	Header http.Header
	Body   []byte
}

func (s *Store) Put(ctx context.Context, cacheName string, response *CachedResponse) error {
	headers, err := json.Marshal(response.Header)
	if err != nil {
		return fmt.Errorf("encode cached headers: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO cache_entries (cache_name, url, status, headers, body, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (cache_name, url) DO UPDATE
		 SET status = excluded.status, headers = excluded.headers,
		     body = excluded.body, created_at = excluded.created_at`,
		cacheName,
		response.URL,
		response.Status,
		string(headers),
		response.Body,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}

func (s *Store) Match(ctx context.Context, cacheName, url string) (*CachedResponse, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT url, status, headers, body FROM cache_entries
		 WHERE cache_name = ? AND url = ?`,
		cacheName,
		url,
	)

	response := CachedResponse{}
	var headers string
	if err := row.Scan(&response.URL, &response.Status, &headers, &response.Body); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNoEntry
		}
		return nil, fmt.Errorf("match cache entry: %w", err)
	}

	if err := json.Unmarshal([]byte(headers), &response.Header); err != nil {
		return nil, fmt.Errorf("decode cached headers: %w", err)
	}
	return &response, nil
}

// CacheNames lists every distinct cache present in the store.
func (s *Store) CacheNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT cache_name FROM cache_entries ORDER BY cache_name`)
	if err != nil {
		return nil, fmt.Errorf("list cache names: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan cache name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache names: %w", err)
	}
	return names, nil
}

func (s *Store) DeleteCache(ctx context.Context, cacheName string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE cache_name = ?`, cacheName); err != nil {
		return fmt.Errorf("delete cache %s: %w", cacheName, err)
	}
	return nil
}
