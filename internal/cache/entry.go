package cache

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"
)

// Header is a single response header pair. Entries keep headers as an
// ordered slice rather than an http.Header so duplicates and ordering
// survive a round trip through disk.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Entry is a cached backend response.
type Entry struct {
	StatusCode int       `json:"status_code"`
	Headers    []Header  `json:"headers"`
	Body       []byte    `json:"body"`
	StoredAt   time.Time `json:"stored_at"`
}

// NewEntry builds an Entry from a forwarded response. Header names are
// sorted so the captured order is deterministic; value order within a name
// is preserved as received.
func NewEntry(statusCode int, header http.Header, body []byte) *Entry {
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)

	headers := make([]Header, 0, len(header))
	for _, name := range names {
		for _, value := range header[name] {
			headers = append(headers, Header{Name: name, Value: value})
		}
	}

	return &Entry{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       body,
	}
}

// WriteTo replays the entry onto a ResponseWriter in stored order.
// The status line and body are written by the caller's engine so it can
// append its own cache-status header first.
func (e *Entry) WriteTo(w http.ResponseWriter) {
	for _, h := range e.Headers {
		w.Header().Add(h.Name, h.Value)
	}
}

// Encode serializes the entry for disk storage.
func (e *Entry) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encoding cache entry: %w", err)
	}
	return data, nil
}

// DecodeEntry parses a persisted entry. Any malformed input is an error;
// callers treat that as a cache miss.
func DecodeEntry(data []byte) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}
	if e.StatusCode == 0 {
		return nil, fmt.Errorf("decoding cache entry: missing status code")
	}
	return &e, nil
}
