package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/redis/rueidis"
)

// navEntry is the search state stashed under a navigation token so a later
// request can offer next/previous traversal from a detail page.
type navEntry struct {
	Path           string     `json:"path"`
	Query          string     `json:"query"`
	EffectiveQuery string     `json:"query_internal,omitempty"`
	Limit          int        `json:"limit"`
	Params         url.Values `json:"params"`
	InternalParams url.Values `json:"params_internal"`
}

// navStore is the session-scoped navigation stash.  tokens are random and
// never contended, so implementations only need atomic key-based lookup.
type navStore interface {
	Set(ctx context.Context, token string, entry navEntry) error
	Get(ctx context.Context, token string) (navEntry, bool, error)
}

type memoryNavStore struct {
	mu      sync.RWMutex
	entries map[string]navEntry
}

func newMemoryNavStore() *memoryNavStore {
	return &memoryNavStore{
		entries: make(map[string]navEntry),
	}
}

func (m *memoryNavStore) Set(ctx context.Context, token string, entry navEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[token] = entry

	return nil
}

func (m *memoryNavStore) Get(ctx context.Context, token string) (navEntry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[token]

	return entry, ok, nil
}

type redisNavStore struct {
	client rueidis.Client
	ttl    time.Duration
}

func newRedisNavStore(redisURL string, ttl time.Duration) (*redisNavStore, error) {
	opt, err := rueidis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %s", err.Error())
	}

	client, err := rueidis.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %s", err.Error())
	}

	return &redisNavStore{client: client, ttl: ttl}, nil
}

func navKey(token string) string {
	return "solr_nav:" + token
}

func (r *redisNavStore) Set(ctx context.Context, token string, entry navEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal navigation entry: %s", err.Error())
	}

	cmd := r.client.B().Set().Key(navKey(token)).Value(string(b)).Ex(r.ttl).Build()

	return r.client.Do(ctx, cmd).Error()
}

func (r *redisNavStore) Get(ctx context.Context, token string) (navEntry, bool, error) {
	var entry navEntry

	cmd := r.client.B().Get().Key(navKey(token)).Build()

	res, err := r.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return entry, false, nil
		}
		return entry, false, err
	}

	if err := json.Unmarshal([]byte(res), &entry); err != nil {
		return entry, false, fmt.Errorf("failed to unmarshal navigation entry: %s", err.Error())
	}

	return entry, true, nil
}

func newNavStore(cfg *serviceConfig) (navStore, error) {
	if cfg.Nav.RedisURL != "" {
		return newRedisNavStore(cfg.Nav.RedisURL, time.Duration(cfg.Nav.TTLSeconds)*time.Second)
	}

	return newMemoryNavStore(), nil
}
