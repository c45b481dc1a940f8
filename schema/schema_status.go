package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the sample history store.
type HistoryStatus struct {
	Backend          string             `json:"backend"`
	Connected        bool               `json:"connected"`
	TotalSamples     int                `json:"total_samples"`
	TotalRuns        int                `json:"total_runs"`
	LastSampleTime   time.Time          `json:"last_sample_time"`
	OldestSampleTime time.Time          `json:"oldest_sample_time"`
	SamplesByMetric  map[MetricName]int `json:"samples_by_metric"`
	TableSizes       map[string]int64   `json:"table_sizes"`
}
