package cache

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

const pageKeyPrefix = "page:"

// cachedPage is what gets stored for one rendered response.
type cachedPage struct {
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

type recorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

// KeyFunc derives the cache key of a request.
type KeyFunc func(r *http.Request) string

// PageKey is the cache key of a GET request: the full request URI, query included.
func PageKey(r *http.Request) string {
	return pageKeyPrefix + r.URL.RequestURI()
}

// Page serves GET requests from store while the cached copy is younger than ttl.
// Only 200 responses are stored. Writes elsewhere never invalidate the entry.
func Page(store Store, ttl time.Duration, log *slog.Logger, next http.Handler) http.Handler {
	return PageBy(store, ttl, PageKey, log, next)
}

// PageBy is Page with a custom key, for output that differs per viewer.
func PageBy(store Store, ttl time.Duration, keyFunc KeyFunc, log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		key := keyFunc(r)
		raw, ok, err := store.Get(r.Context(), key)
		if err != nil {
			log.Warn("page cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		if ok {
			var page cachedPage
			if err := json.Unmarshal(raw, &page); err == nil {
				w.Header().Set("Content-Type", page.ContentType)
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(page.Body)
				return
			}
			log.Warn("page cache entry is corrupt", slog.String("key", key))
			if err := store.Delete(r.Context(), key); err != nil {
				log.Warn("page cache delete failed", slog.String("key", key), slog.String("error", err.Error()))
			}
		}

		w.Header().Set("X-Cache", "MISS")
		rec := &recorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		if rec.status != http.StatusOK || r.Method != http.MethodGet {
			return
		}
		raw, err = json.Marshal(cachedPage{
			ContentType: w.Header().Get("Content-Type"),
			Body:        rec.buf.Bytes(),
		})
		if err != nil {
			return
		}
		if err := store.Set(r.Context(), key, raw, ttl); err != nil {
			log.Warn("page cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	})
}
