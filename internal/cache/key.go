package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Key derives the cache fingerprint for a request. Two requests with the
// same method, path and query multiset produce the same key regardless of
// parameter order; headers and body never participate.
//
// Format: "METHOD /path?name=value&name=value" with parameter names sorted,
// duplicate values kept and sorted within a name.
func Key(method, path string, query url.Values) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte(' ')
	if path == "" {
		path = "/"
	}
	b.WriteString(path)

	if len(query) > 0 {
		names := make([]string, 0, len(query))
		for name := range query {
			names = append(names, name)
		}
		sort.Strings(names)

		b.WriteByte('?')
		first := true
		for _, name := range names {
			values := append([]string(nil), query[name]...)
			sort.Strings(values)
			for _, value := range values {
				if !first {
					b.WriteByte('&')
				}
				first = false
				b.WriteString(url.QueryEscape(name))
				b.WriteByte('=')
				b.WriteString(url.QueryEscape(value))
			}
		}
	}

	return b.String()
}

// Filename maps a key to a filesystem-safe name for its on-disk entry.
func Filename(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:]) + ".json"
}
