// Package iocache is for caching and persisting I/O calls.
package iocache

import (
	"sync"

	"github.com/huangsam/pulse/internal/contract"
)

// CacheStoreManager manages the trending cache and the sample history stores.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	trending     contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetTrendingStore returns the trending CacheStore.
func (mgr *CacheStoreManager) GetTrendingStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.trending
}

// GetHistoryStore returns the sample HistoryStore.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
