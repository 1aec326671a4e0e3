// Package store persists the keywords of the last analyzed résumé so a new
// session can seed its search query.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// KeywordsKey is the name of the durable slot holding the keyword JSON array.
const KeywordsKey = "resumeKeywords"

// KeywordStore reads and writes the keyword slot. Load returns nil, nil when
// nothing was saved yet.
type KeywordStore interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, keywords []string) error
}

func encode(keywords []string) ([]byte, error) {
	if keywords == nil {
		keywords = []string{}
	}
	return json.Marshal(keywords)
}

func decode(data []byte) ([]string, error) {
	var keywords []string
	if err := json.Unmarshal(data, &keywords); err != nil {
		return nil, fmt.Errorf("decode %s: %w", KeywordsKey, err)
	}
	return keywords, nil
}

// Memory keeps the slot in process memory.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, nil
	}
	return decode(m.data)
}

func (m *Memory) Save(_ context.Context, keywords []string) error {
	data, err := encode(keywords)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data

	return nil
}
