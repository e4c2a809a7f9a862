package facetdex

import (
	"context"
	"net/http"
)

type forwardKey struct{}

// forwardedHeaders are copied from the caller's request to catalog calls.
var forwardedHeaders = []string{"Cookie", "Authorization"}

// ContextWithForwardedHeaders attaches the Cookie and Authorization headers of h
// to ctx. Catalog calls made with the returned context send them along.
func ContextWithForwardedHeaders(ctx context.Context, h http.Header) context.Context {
	fwd := make(http.Header, len(forwardedHeaders))
	for _, name := range forwardedHeaders {
		if v := h.Values(name); len(v) > 0 {
			fwd[name] = append([]string(nil), v...)
		}
	}
	if len(fwd) == 0 {
		return ctx
	}
	return context.WithValue(ctx, forwardKey{}, fwd)
}

func applyForwardedHeaders(ctx context.Context, req *http.Request) {
	fwd, ok := ctx.Value(forwardKey{}).(http.Header)
	if !ok {
		return
	}
	for name, v := range fwd {
		req.Header[name] = append([]string(nil), v...)
	}
}
