// Package iocache persists derived series and forecast runs in SQL databases.
package iocache

import (
	"sync"

	"github.com/huangsam/flowcast/internal/contract"
)

// StoreManager holds the series cache and the run store.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	series       contract.CacheStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &StoreManager{} // Compile-time check

// GetSeriesStore returns the series CacheStore.
func (mgr *StoreManager) GetSeriesStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.series
}

// GetRunStore returns the forecast RunStore.
func (mgr *StoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
