package cache

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestEntryRoundTrip(t *testing.T) {
	header := http.Header{}
	header.Add("Content-Type", "application/json")
	header.Add("Set-Cookie", "a=1")
	header.Add("Set-Cookie", "b=2")

	entry := NewEntry(http.StatusOK, header, []byte(`{"login":"octocat"}`))

	data, err := entry.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, err := DecodeEntry(data)
	if err != nil {
		t.Fatalf("DecodeEntry() error = %v", err)
	}

	if decoded.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want %d", decoded.StatusCode, http.StatusOK)
	}
	if string(decoded.Body) != `{"login":"octocat"}` {
		t.Errorf("Body = %s, want %s", decoded.Body, `{"login":"octocat"}`)
	}
	// Duplicate headers survive in order.
	want := []Header{
		{Name: "Content-Type", Value: "application/json"},
		{Name: "Set-Cookie", Value: "a=1"},
		{Name: "Set-Cookie", Value: "b=2"},
	}
	if !reflect.DeepEqual(decoded.Headers, want) {
		t.Errorf("Headers = %v, want %v", decoded.Headers, want)
	}
}

func TestEntryWriteTo(t *testing.T) {
	entry := &Entry{
		StatusCode: http.StatusOK,
		Headers: []Header{
			{Name: "Set-Cookie", Value: "a=1"},
			{Name: "Set-Cookie", Value: "b=2"},
		},
	}

	rec := httptest.NewRecorder()
	entry.WriteTo(rec)

	got := rec.Header().Values("Set-Cookie")
	if len(got) != 2 || got[0] != "a=1" || got[1] != "b=2" {
		t.Errorf("Replayed Set-Cookie = %v, want [a=1 b=2]", got)
	}
}

func TestDecodeEntryMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "not JSON", data: []byte("garbage")},
		{name: "empty", data: nil},
		{name: "missing status", data: []byte(`{"body":null}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeEntry(tt.data); err == nil {
				t.Error("DecodeEntry() expected error for malformed input")
			}
		})
	}
}
