package httpapi

import (
	"context"
	"net/http"

	"suggestbox/internal/domain"
)

type ctxKey int

const principalKey ctxKey = iota

func withPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom ガードが解決した Principal を取り出す。
// ガードを通っていないリクエストは Anonymous。
func PrincipalFrom(r *http.Request) domain.Principal {
	if p, ok := r.Context().Value(principalKey).(domain.Principal); ok {
		return p
	}
	return domain.Anonymous
}
