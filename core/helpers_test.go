package core

import (
	"encoding/json"
	"time"

	"github.com/huangsam/pulse/internal/contract"
)

// memDocuments is an in-memory DocumentStore.
type memDocuments struct {
	docs  map[string][]byte
	saves int
}

func newMemDocuments() *memDocuments {
	return &memDocuments{docs: map[string][]byte{}}
}

func (m *memDocuments) Load(name string, v any) error {
	data, ok := m.docs[name]
	if !ok {
		return contract.ErrNotFound
	}
	return json.Unmarshal(data, v)
}

func (m *memDocuments) Save(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.docs[name] = data
	m.saves++
	return nil
}

// memTTL is an in-memory TTLCache driven by a fixed clock.
type memTTL struct {
	clock   *contract.FixedClock
	ttl     time.Duration
	entries map[string]memEntry
}

type memEntry struct {
	value []byte
	at    time.Time
}

func newMemTTL(clock *contract.FixedClock, ttl time.Duration) *memTTL {
	return &memTTL{clock: clock, ttl: ttl, entries: map[string]memEntry{}}
}

func (m *memTTL) Get(key string) ([]byte, bool) {
	e, ok := m.entries[key]
	if !ok || m.clock.Now().Sub(e.at) >= m.ttl {
		return nil, false
	}
	return e.value, true
}

func (m *memTTL) Set(key string, value []byte) error {
	m.entries[key] = memEntry{value: value, at: m.clock.Now()}
	return nil
}

func (m *memTTL) Invalidate() error {
	m.entries = map[string]memEntry{}
	return nil
}

var (
	_ contract.DocumentStore = &memDocuments{} // Compile-time check
	_ contract.TTLCache      = &memTTL{}       // Compile-time check
)
