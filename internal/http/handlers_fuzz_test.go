package httpserver

import (
	"net/url"
	"testing"
)

func FuzzBuildSearchParams(f *testing.F) {
	seeds := []string{
		"query=return&page=1",
		"page=abc",
		"page=-1",
		"query=",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return
		}
		query, page, err := buildSearchParams(values)
		if err != nil {
			return
		}
		if query == "" {
			t.Fatalf("buildSearchParams(%q) returned empty query", raw)
		}
		if page < 1 {
			t.Fatalf("buildSearchParams(%q) returned page %d", raw, page)
		}
	})
}
