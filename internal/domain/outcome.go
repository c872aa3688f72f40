package domain

import (
	"bytes"
	"encoding/json"
)

// Outcome status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SearchResultItem is one external search hit, in backend order.
type SearchResultItem struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// SearchOutcome is the uniform per-query result record.
type SearchOutcome struct {
	Status  string             `json:"status"`
	Count   int                `json:"count"`
	Results []SearchResultItem `json:"results"`
	Error   string             `json:"error,omitempty"`
}

// SearchError builds an error SearchOutcome with empty results.
func SearchError(msg string) SearchOutcome {
	return SearchOutcome{
		Status:  StatusError,
		Count:   0,
		Results: []SearchResultItem{},
		Error:   msg,
	}
}

// ScrapeOutcome is the uniform per-URL result record.
type ScrapeOutcome struct {
	Status         string `json:"status"`
	Method         string `json:"method"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	Length         int    `json:"length"`
	OriginalLength int    `json:"original_length"`
	Truncated      bool   `json:"truncated"`
	Error          string `json:"error,omitempty"`
}

// ScrapeError builds an error ScrapeOutcome for the given method.
func ScrapeError(method, msg string) ScrapeOutcome {
	return ScrapeOutcome{
		Status: StatusError,
		Method: method,
		Error:  msg,
	}
}

// BatchOutcomes is an insertion-ordered mapping from item key (query
// string or URL) to its outcome. A duplicate key overwrites the earlier
// entry in place, keeping the original position — the item's natural
// key is the aggregation key, so two identical queries in one batch
// collapse to the last-written outcome.
type BatchOutcomes struct {
	keys   []string
	values map[string]any
}

// NewBatchOutcomes creates an empty ordered outcome mapping.
func NewBatchOutcomes() *BatchOutcomes {
	return &BatchOutcomes{values: make(map[string]any)}
}

// Set records the outcome for key, overwriting any earlier entry.
func (b *BatchOutcomes) Set(key string, outcome any) {
	if _, exists := b.values[key]; !exists {
		b.keys = append(b.keys, key)
	}
	b.values[key] = outcome
}

// Get returns the outcome recorded for key.
func (b *BatchOutcomes) Get(key string) (any, bool) {
	v, ok := b.values[key]
	return v, ok
}

// Len returns the number of distinct keys.
func (b *BatchOutcomes) Len() int { return len(b.keys) }

// Keys returns the keys in insertion order.
func (b *BatchOutcomes) Keys() []string {
	keys := make([]string, len(b.keys))
	copy(keys, b.keys)
	return keys
}

// MarshalJSON emits a JSON object with keys in insertion order.
func (b *BatchOutcomes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range b.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(b.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
