package core

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/flowcast/core/agg"
	"github.com/huangsam/flowcast/internal/contract"
	"github.com/huangsam/flowcast/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheTTL is how long a cached series set stays valid.
const cacheTTL = 7 * 24 * time.Hour

// LoadProjectSeries reads the ticket table at cfg.InputPath and derives the
// series of every selected project, going through the series cache when one is set.
func LoadProjectSeries(cfg *contract.Config, mgr contract.CacheManager) ([]schema.ProjectSeries, error) {
	if cfg.InputPath == "" {
		return nil, fmt.Errorf("an input ticket table is required")
	}
	data, err := os.ReadFile(cfg.InputPath)
	if err != nil {
		return nil, fmt.Errorf("read input %s: %w", cfg.InputPath, err)
	}

	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetSeriesStore()
	}
	if store == nil {
		// Fallback to direct computation
		return deriveProjectSeries(data, cfg.Projects)
	}

	key := generateCacheKey(data, cfg.Projects)
	if result := checkCacheHit(store, key); result != nil {
		contract.Logger().Debug().Str("key", key[:12]).Msg("series cache hit")
		return result, nil
	}
	return computeAndStore(data, cfg.Projects, store, key)
}

// deriveProjectSeries parses the ticket table and derives the series. Projects
// that fail are logged and skipped; the call fails only when nothing is left.
func deriveProjectSeries(data []byte, projects []string) ([]schema.ProjectSeries, error) {
	frame, err := agg.ReadFrame(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse ticket table: %w", err)
	}

	var out []schema.ProjectSeries
	for _, r := range agg.ProjectSeriesFromFrame(frame, projects) {
		if r.Err != nil {
			contract.LogWarn(fmt.Sprintf("Skipping project %s", r.Series.Project), r.Err)
			continue
		}
		out = append(out, r.Series)
	}
	if len(out) == 0 {
		return nil, ErrNoSeries
	}
	return out, nil
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) []schema.ProjectSeries {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version == currentCacheVersion && time.Since(time.Unix(ts, 0)) <= cacheTTL {
		var result []schema.ProjectSeries
		if err := json.Unmarshal(data, &result); err == nil && len(result) > 0 {
			return result // Cache hit
		}
	}

	return nil // Cache miss (stale or version mismatch)
}

// computeAndStore computes the result and stores it in cache
func computeAndStore(data []byte, projects []string, store contract.CacheStore, key string) ([]schema.ProjectSeries, error) {
	result, err := deriveProjectSeries(data, projects)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(result); err == nil {
		if err := store.Set(key, encoded, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to store series in cache", err)
		}
	}

	return result, nil
}

// generateCacheKey creates a unique key from the input contents and the project selection
func generateCacheKey(data []byte, projects []string) string {
	selected := slices.Sorted(slices.Values(projects))
	h := sha256.New()
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(selected, ",")))
	return fmt.Sprintf("%x", h.Sum(nil))
}
