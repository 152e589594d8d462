package web

import (
	"context"
	"net/http"
)

type contextKey string

func AddValueToContext(r *http.Request, key string, value any) *http.Request {
	ctx := context.WithValue(r.Context(), contextKey(key), value)
	return r.WithContext(ctx)
}

func GetValueFromContext[T any](r *http.Request, key string) (T, bool) {
	var zero T
	val := r.Context().Value(contextKey(key))
	if val == nil {
		return zero, false
	}

	tVal, ok := val.(T)
	if !ok {
		return zero, false
	}

	return tVal, true
}
