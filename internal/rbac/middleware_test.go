package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleetops/fleet-console/internal/shared"
)

func serveAs(user shared.User, guard func(http.Handler) http.Handler) int {
	sess := &shared.Session{ID: "s1"}
	sess.SetUser(user)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res := httptest.NewRecorder()
	guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(res, req)
	return res.Code
}

func TestRequireAny(t *testing.T) {
	m := Middleware{}
	guard := m.RequireAny(shared.PermLOVView, shared.PermJobsView)

	assert.Equal(t, http.StatusNoContent, serveAs(shared.User{Name: "a", Role: shared.RoleOperator}, guard))
	assert.Equal(t, http.StatusForbidden, serveAs(shared.User{Name: "a", Role: shared.RoleViewer}, guard))
	assert.Equal(t, http.StatusForbidden, serveAs(shared.User{}, guard))
}

func TestRequireAll(t *testing.T) {
	m := Middleware{}
	guard := m.RequireAll(shared.PermLOVView, " LOV.EDIT ")

	assert.Equal(t, http.StatusNoContent, serveAs(shared.User{Name: "a", Role: shared.RoleManager}, guard))
	assert.Equal(t, http.StatusForbidden, serveAs(shared.User{Name: "a", Role: shared.RoleOperator}, guard))
}

func TestNoPermissionsPasses(t *testing.T) {
	assert.Equal(t, http.StatusNoContent, serveAs(shared.User{}, Middleware{}.RequireAny()))
}

func TestAllowed(t *testing.T) {
	admin := shared.User{Name: "root", Role: "ADMIN"}

	assert.True(t, Allowed(admin, shared.PermJobsView))
	assert.True(t, Allowed(shared.User{}))
	assert.False(t, Allowed(shared.User{Name: "x", Role: "pilot"}, shared.PermDashboardView))
}
