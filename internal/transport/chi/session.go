package chi

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/facetdex/internal/domain"
	logpkg "github.com/kailas-cloud/facetdex/internal/logger"
	"github.com/kailas-cloud/facetdex/internal/usecase/panel"
	sdk "github.com/kailas-cloud/facetdex/pkg/sdk"
)

// DefaultCookieName is the session cookie set by SessionMiddleware.
const DefaultCookieName = "facetdex_session"

// exemptPaths are routes served without a session (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// SessionStore resolves, resumes and creates panel sessions.
type SessionStore interface {
	Get(id string) (*panel.Panel, error)
	Resume(ctx context.Context, id string) (*panel.Panel, error)
	Create(ctx context.Context) *panel.Panel
}

// SessionConfig configures the session cookie.
type SessionConfig struct {
	CookieName string
	Secure     bool
}

type panelKey struct{}

// ContextWithPanel returns ctx carrying p.
func ContextWithPanel(ctx context.Context, p *panel.Panel) context.Context {
	return context.WithValue(ctx, panelKey{}, p)
}

// PanelFromContext returns the panel attached by SessionMiddleware.
func PanelFromContext(ctx context.Context) (*panel.Panel, bool) {
	p, ok := ctx.Value(panelKey{}).(*panel.Panel)
	return p, ok
}

// SessionMiddleware attaches the session's panel to the request context. Sessions are
// only started by the page itself (GET /): an evicted session is resumed under its cookie
// id, a missing or malformed cookie gets a new one. Other requests without a live session
// pass through without a panel; htmx requests are redirected to the page.
// The browser's cookie and authorization headers are forwarded to catalog calls.
func SessionMiddleware(sessions SessionStore, cfg SessionConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := sdk.ContextWithForwardedHeaders(r.Context(), r.Header)

			var (
				p  *panel.Panel
				id string
			)
			if c, err := r.Cookie(cfg.CookieName); err == nil && c.Value != "" {
				id = c.Value
				p, err = sessions.Get(id)
				if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
					logger.Warn("Session lookup failed", zap.Error(err))
				}
			}

			if p == nil && startsSession(r) {
				p = startSession(ctx, w, sessions, cfg, id)
			}
			if p == nil {
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", "/")
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			ctx = logpkg.With(ctx, zap.String("session", p.ID()))
			next.ServeHTTP(w, r.WithContext(ContextWithPanel(ctx, p)))
		})
	}
}

// startsSession reports whether r may create a session.
func startsSession(r *http.Request) bool {
	return r.Method == http.MethodGet && r.URL.Path == "/"
}

func startSession(ctx context.Context, w http.ResponseWriter, sessions SessionStore, cfg SessionConfig, id string) *panel.Panel {
	if id != "" {
		if p, err := sessions.Resume(ctx, id); err == nil {
			return p
		}
	}
	p := sessions.Create(ctx)
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    p.ID(),
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return p
}
