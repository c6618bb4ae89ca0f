// Package auth holds the authorization filters that gate health updates.
//
// The HTTP handler only depends on Filter; the concrete filters here are
// what cmd/server registers from configuration.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Filter decides whether an inbound health update may be applied.
// A non-nil error is treated by callers exactly like false.
type Filter interface {
	Authorize(ctx context.Context, r *http.Request) (bool, error)
}

// FilterFunc adapts a plain function to Filter.
type FilterFunc func(ctx context.Context, r *http.Request) (bool, error)

func (f FilterFunc) Authorize(ctx context.Context, r *http.Request) (bool, error) {
	return f(ctx, r)
}

// Any authorizes when at least one filter does. Filters are consulted in
// order and the first approval wins; errors from earlier filters are
// returned only if none approves.
func Any(filters ...Filter) Filter {
	return FilterFunc(func(ctx context.Context, r *http.Request) (bool, error) {
		var errs []error
		for _, f := range filters {
			ok, err := f.Authorize(ctx, r)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if ok {
				return true, nil
			}
		}
		return false, errors.Join(errs...)
	})
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
