package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/schema"
)

// trendingTable is the name of the table (or JSON document) for trending results.
const trendingTable = "pulse_trending_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager with the trending cache and the sample history.
// An empty backend leaves that store unset.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, historyBackend schema.DatabaseBackend, historyConnStr string, stateDir string) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		trending, history, err := openStores(cacheBackend, cacheConnStr, historyBackend, historyConnStr, stateDir)
		if err != nil {
			initErr = err
			return
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.trending = trending
		Manager.history = history
	})

	// After once.Do, initErr will contain any error from the initialization block.
	return initErr
}

// openStores creates both stores, closing the first when the second fails.
func openStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, historyBackend schema.DatabaseBackend, historyConnStr string, stateDir string) (contract.CacheStore, contract.HistoryStore, error) {
	var err error

	var trending contract.CacheStore
	switch cacheBackend {
	case "":
	case schema.JSONBackend:
		trending, err = NewFileCacheStore(stateDir, trendingTable)
	default:
		trending, err = NewCacheStore(trendingTable, cacheBackend, cacheConnStr)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize trending cache: %w", err)
	}

	var history contract.HistoryStore
	if historyBackend != "" {
		history, err = NewHistoryStore(historyBackend, historyConnStr)
		if err != nil {
			if trending != nil {
				_ = trending.Close()
			}
			return nil, nil, fmt.Errorf("failed to initialize history store: %w", err)
		}
	}

	return trending, history, nil
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called from main after the command returns
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.trending != nil {
			_ = Manager.trending.Close()
		}
		if Manager.history != nil {
			_ = Manager.history.Close()
		}
	})
}

// ClearCache clears the trending cache for the specified backend.
// For JSON, it deletes the cache document under stateDir.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For NoneBackend, it does nothing.
func ClearCache(backend schema.DatabaseBackend, connStr, stateDir string) error {
	switch backend {
	case schema.JSONBackend:
		return removeFile(filepath.Join(stateDir, trendingTable+".json"))

	case schema.SQLiteBackend:
		if connStr == "" {
			connStr = contract.GetCacheDBFilePath()
		}
		return removeFile(connStr)

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTable(backend, connStr, trendingTable)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

// ClearHistory clears the sample history for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the history tables.
// For NoneBackend, it does nothing.
func ClearHistory(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if connStr == "" {
			connStr = contract.GetHistoryDBFilePath()
		}
		return removeFile(connStr)

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		for _, table := range []string{metricSamplesTable, forecastRunsTable} {
			if err := clearSQLTable(backend, connStr, table); err != nil {
				return err
			}
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported history backend for clearing: %s", backend)
	}
}

// removeFile deletes path, ignoring a missing file.
func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(backend schema.DatabaseBackend, connStr, tableName string) error {
	driverName, err := driverFor(backend)
	if err != nil {
		return err
	}
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", backend, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", backend, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(tableName, backend))
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}

	return nil
}
