package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fleetops/fleet-console/internal/lov"
)

type stubSource struct {
	records []lov.ListRecord
	err     error
	orgs    []string
}

func (s *stubSource) ListAll(ctx context.Context, orgID string) ([]lov.ListRecord, error) {
	s.orgs = append(s.orgs, orgID)
	return s.records, s.err
}

func boolRef(v bool) *bool { return &v }

func sampleLists(n int) []lov.ListRecord {
	out := make([]lov.ListRecord, n)
	for i := range out {
		out[i] = lov.ListRecord{
			ID:              fmt.Sprint(i + 1),
			ListCode:        fmt.Sprintf("CODE%02d", i+1),
			ListDescription: fmt.Sprintf("List %d", i+1),
			Active:          boolRef(i%2 == 0),
			Values:          []lov.ValueEntry{{ValueCode: "A"}},
		}
	}
	return out
}

func TestBrowseCommandJSON(t *testing.T) {
	source := &stubSource{records: sampleLists(15)}
	stdout := new(bytes.Buffer)

	code := NewLOVCLI(source).BrowseCommand(context.Background(), BrowseOptions{
		OrgID:      "42",
		Page:       2,
		JSONOutput: true,
		Stdout:     stdout,
		Stderr:     new(bytes.Buffer),
	})

	require.Zero(t, code)
	require.Equal(t, []string{"42"}, source.orgs)
	var summary BrowseSummary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	require.Equal(t, 15, summary.TotalCount)
	require.Equal(t, 2, summary.TotalPages)
	require.Equal(t, 2, summary.Page)
	require.Len(t, summary.Items, 5)
}

func TestBrowseCommandHumanFiltersStatus(t *testing.T) {
	source := &stubSource{records: sampleLists(4)}
	stdout := new(bytes.Buffer)

	code := NewLOVCLI(source).BrowseCommand(context.Background(), BrowseOptions{
		OrgID:  "42",
		Status: "Inactive",
		Page:   9,
		Stdout: stdout,
		Stderr: new(bytes.Buffer),
	})

	require.Zero(t, code)
	out := stdout.String()
	require.True(t, strings.HasPrefix(out, "CODE"))
	require.Contains(t, out, "CODE02")
	require.Contains(t, out, "CODE04")
	require.NotContains(t, out, "CODE01")
	require.Contains(t, out, "page 1 of 1 (2 lists)")
}

func TestBrowseCommandEmpty(t *testing.T) {
	stdout := new(bytes.Buffer)

	code := NewLOVCLI(&stubSource{}).BrowseCommand(context.Background(), BrowseOptions{OrgID: "42", Search: "nothing", Stdout: stdout, Stderr: new(bytes.Buffer)})

	require.Zero(t, code)
	require.Equal(t, "No lists of values found.\n", stdout.String())
}

func TestBrowseCommandErrors(t *testing.T) {
	stderr := new(bytes.Buffer)
	code := NewLOVCLI(&stubSource{}).BrowseCommand(context.Background(), BrowseOptions{Stdout: new(bytes.Buffer), Stderr: stderr})
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "--org is required")

	stderr.Reset()
	code = NewLOVCLI(&stubSource{err: errors.New("api down")}).BrowseCommand(context.Background(), BrowseOptions{OrgID: "42", Stdout: new(bytes.Buffer), Stderr: stderr})
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "api down")
}
