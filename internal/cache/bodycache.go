// Package cache provides process-external caches backing the pipeline: raw
// fetched bodies keyed by URL hash, and model replies keyed by prompt digest.
// Both are explicit objects owned by their users rather than ambient state.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// BodyMeta carries enough response metadata for conditional revalidation and
// for replaying a body without touching the network.
type BodyMeta struct {
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"last_modified"`
	SavedAt      time.Time `json:"saved_at"`
}

// BodyCache stores fetched bodies on disk as <key>.meta.json and <key>.body,
// where key is the xxhash of the URL. No eviction beyond PurgeByAge.
type BodyCache struct {
	Dir string
}

func (c *BodyCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	return os.MkdirAll(c.Dir, 0o755)
}

// Key hashes a URL into the cache's file key.
func Key(url string) string {
	return strconv.FormatUint(xxhash.Sum64String(url), 16)
}

func (c *BodyCache) metaPath(key string) string { return filepath.Join(c.Dir, key+".meta.json") }
func (c *BodyCache) bodyPath(key string) string { return filepath.Join(c.Dir, key+".body") }

// LoadMeta returns stored metadata for the URL, if any.
func (c *BodyCache) LoadMeta(_ context.Context, url string) (*BodyMeta, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	f, err := os.Open(c.metaPath(Key(url)))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var m BodyMeta
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadBody returns the cached body for the URL, if any.
func (c *BodyCache) LoadBody(_ context.Context, url string) ([]byte, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	return os.ReadFile(c.bodyPath(Key(url)))
}

// Save stores body and metadata. Meta is written via rename so a reader never
// sees a half-written entry.
func (c *BodyCache) Save(_ context.Context, url, contentType, etag, lastModified string, body []byte) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	key := Key(url)
	if err := os.WriteFile(c.bodyPath(key), body, 0o644); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	meta := BodyMeta{
		URL:          url,
		ContentType:  contentType,
		ETag:         etag,
		LastModified: lastModified,
		SavedAt:      time.Now().UTC(),
	}
	tmp := c.metaPath(key) + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create meta: %w", err)
	}
	if err := json.NewEncoder(f).Encode(&meta); err != nil {
		f.Close()
		return fmt.Errorf("encode meta: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, c.metaPath(key))
}
