package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fleetops/fleet-console/internal/platform/httpx"
	"github.com/fleetops/fleet-console/internal/shared"
)

// WelcomePath is where anonymous visitors are sent.
const WelcomePath = "/welcome"

// Handler wires the identity middleware and the session endpoints.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, sessionManager: sessions}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/logout", h.handleLogout)
}

// Identify caches the proxy-asserted user in the session. Requests without
// identity headers keep whatever the session already holds.
func (h *Handler) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil {
			next.ServeHTTP(w, r)
			return
		}
		user, ok, err := h.service.Resolve(r.Header)
		switch {
		case err != nil:
			h.logger.Warn("rejecting identity headers", slog.Any("error", err), slog.String("path", r.URL.Path))
			sess.SetUser(shared.User{})
		case ok:
			if prev := sess.User(); !prev.IsZero() && prev != user {
				h.logger.Info("session identity changed",
					slog.String("from", prev.Name),
					slog.String("to", user.Name),
					slog.String("org_id", user.OrgID))
			}
			sess.SetUser(user)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser sends anonymous visitors to the welcome page, or answers 401
// for JSON clients.
func (h *Handler) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !shared.UserFromContext(r.Context()).IsZero() {
			next.ServeHTTP(w, r)
			return
		}
		if httpx.WantsJSON(r) {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		http.Redirect(w, r, WelcomePath, http.StatusSeeOther)
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		h.logger.Info("signed out", slog.String("user", sess.User().Name))
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, WelcomePath, http.StatusSeeOther)
}
