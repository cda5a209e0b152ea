// Package kv provides the local key-value document store backing
// AI provider configuration, chat history, and connection profiles.
//
// Design decisions:
//   - Values are whole JSON documents, written atomically. Each store
//     operation is a single read-modify-write by the caller; there is
//     no partial update API.
//   - The file-backed store encrypts every document with AES-256-GCM
//     so API keys and connection passwords never touch disk in clear.
//   - MemStore exists so the chat and config stores can be tested
//     without touching the filesystem.
package kv

import (
	"encoding/json"
	"sync"
)

// Store is the persistence capability consumed by the config and chat stores.
type Store interface {
	// Get returns the raw document for key, or ok=false if absent.
	Get(key string) (value json.RawMessage, ok bool, err error)

	// Set marshals value and persists it under key.
	Set(key string, value any) error

	// Delete removes the document for key. Missing keys are a no-op.
	Delete(key string) error
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu   sync.Mutex
	docs map[string]json.RawMessage
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string]json.RawMessage)}
}

func (m *MemStore) Get(key string) (json.RawMessage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[key]
	if !ok {
		return nil, false, nil
	}
	cp := make(json.RawMessage, len(doc))
	copy(cp, doc)
	return cp, true, nil
}

func (m *MemStore) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = data
	return nil
}

func (m *MemStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, key)
	return nil
}
