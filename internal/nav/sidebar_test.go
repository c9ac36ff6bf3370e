package nav

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleet-console/internal/shared"
)

func labels(sections []Section) []string {
	var out []string
	for _, s := range sections {
		for _, it := range s.Items {
			out = append(out, it.Label)
		}
	}
	return out
}

func TestSidebarFiltersByRole(t *testing.T) {
	admin := Sidebar(shared.User{Name: "ana", OrgID: "7", Role: shared.RoleAdmin}, "/")
	assert.Equal(t, []string{"Dashboard", "List of Values", "Job Queue", "Metrics"}, labels(admin))

	operator := Sidebar(shared.User{Name: "op", OrgID: "7", Role: shared.RoleOperator}, "/")
	assert.Equal(t, []string{"Dashboard", "List of Values"}, labels(operator))
	for _, s := range operator {
		assert.NotEqual(t, "Administration", s.Title, "empty sections are dropped")
	}

	viewer := Sidebar(shared.User{Name: "v", OrgID: "7", Role: shared.RoleViewer}, "/")
	assert.Equal(t, []string{"Dashboard"}, labels(viewer))
}

func TestSidebarAnonymousIsEmpty(t *testing.T) {
	assert.Empty(t, Sidebar(shared.User{}, "/"))
}

func TestSidebarMarksLongestPrefixActive(t *testing.T) {
	user := shared.User{Name: "ana", OrgID: "7", Role: shared.RoleAdmin}
	sections := Sidebar(user, "/masters/list-of-values/12/edit")

	var active []string
	for _, s := range sections {
		for _, it := range s.Items {
			if it.Active {
				active = append(active, it.Label)
			}
		}
	}
	assert.Equal(t, []string{"List of Values"}, active)

	home := Sidebar(user, "/")
	require.NotEmpty(t, home)
	assert.True(t, home[0].Items[0].Active)
}

func TestMatchLen(t *testing.T) {
	assert.Equal(t, 1, matchLen("/", "/"))
	assert.Equal(t, 0, matchLen("/", "/masters"))
	assert.Equal(t, len("/masters/list-of-values"), matchLen("/masters/list-of-values", "/masters/list-of-values"))
	assert.Equal(t, 0, matchLen("/masters/list", "/masters/list-of-values"))
}

func TestSanitizeIconStripsScripts(t *testing.T) {
	out := string(sanitizeIcon(`<svg><script>alert(1)</script><path d="M0 0"/></svg>`))
	assert.NotContains(t, out, "script")
	assert.True(t, strings.Contains(out, "<path"))
	assert.Empty(t, string(sanitizeIcon("   ")))
}
