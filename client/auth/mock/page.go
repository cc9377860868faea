package mock

import (
	"net/http"
	"net/url"
	"strconv"
)

type page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// writePage serves items using page number pagination the way the lore API does.
func writePage[T any](w http.ResponseWriter, r *http.Request, items []T, size int) {
	number := 1
	if value := r.URL.Query().Get("page"); value != "" {
		var err error
		if number, err = strconv.Atoi(value); err != nil || number < 1 {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Invalid page."})
			return
		}
	}
	if size <= 0 {
		size = len(items)
	}
	start := (number - 1) * size
	if start > 0 && start >= len(items) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Invalid page."})
		return
	}
	end := min(start+size, len(items))
	ret := page[T]{Count: len(items), Results: append(make([]T, 0, end-start), items[start:end]...)}
	if end < len(items) {
		next := pageLink(r, number+1)
		ret.Next = &next
	}
	if number > 1 {
		previous := pageLink(r, number-1)
		ret.Previous = &previous
	}
	writeJSON(w, http.StatusOK, ret)
}

func pageLink(r *http.Request, number int) string {
	query := r.URL.Query()
	if number == 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(number))
	}
	link := url.URL{Scheme: "http", Host: r.Host, Path: r.URL.Path, RawQuery: query.Encode()}
	return link.String()
}
