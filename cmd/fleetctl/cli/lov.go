package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fleetops/fleet-console/internal/lov"
)

// ListSource loads the lists of an organisation.
type ListSource interface {
	ListAll(ctx context.Context, orgID string) ([]lov.ListRecord, error)
}

// LOVCLI browses lists of values from the terminal.
type LOVCLI struct {
	source   ListSource
	pageSize int
}

// NewLOVCLI constructs the browse helper.
func NewLOVCLI(source ListSource) *LOVCLI {
	return &LOVCLI{source: source, pageSize: lov.DefaultPageSize}
}

// BrowseOptions defines the flags of the lov browse command.
type BrowseOptions struct {
	OrgID      string
	Search     string
	Status     string
	Page       int
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// BrowseSummary is the JSON output of lov browse.
type BrowseSummary struct {
	Items      []lov.ListRecord `json:"items"`
	TotalCount int              `json:"totalCount"`
	TotalPages int              `json:"totalPages"`
	Page       int              `json:"page"`
}

// BrowseCommand fetches, filters and pages the organisation's lists.
func (c *LOVCLI) BrowseCommand(ctx context.Context, opts BrowseOptions) int {
	stdout, stderr := streams(opts.Stdout, opts.Stderr)
	orgID := strings.TrimSpace(opts.OrgID)
	if orgID == "" {
		_, _ = fmt.Fprintln(stderr, "lov browse: --org is required")
		return 1
	}
	records, err := c.source.ListAll(ctx, orgID)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "lov browse: %v\n", err)
		return 1
	}
	filter := lov.FilterSpec{Search: opts.Search, Status: lov.ParseStatus(opts.Status)}
	view, page := lov.ResolveView(records, filter, opts.Page, c.pageSize)

	if opts.JSONOutput {
		summary := BrowseSummary{Items: view.PageItems, TotalCount: view.TotalCount, TotalPages: view.TotalPages, Page: page}
		if err := json.NewEncoder(stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(stderr, "lov browse: encode json: %v\n", err)
			return 1
		}
		return 0
	}
	renderBrowseHuman(stdout, view, page)
	return 0
}

func renderBrowseHuman(out io.Writer, view lov.View, page int) {
	if view.TotalCount == 0 {
		_, _ = fmt.Fprintln(out, "No lists of values found.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CODE\tDESCRIPTION\tVALUES\tSTATUS")
	for _, rec := range view.PageItems {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", rec.ListCode, rec.ListDescription, max(len(rec.Values), rec.ValueCount), statusLabel(rec))
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(out, "page %d of %d (%d lists)\n", page, view.TotalPages, view.TotalCount)
}

func statusLabel(rec lov.ListRecord) string {
	switch {
	case rec.IsActive():
		return "Active"
	case rec.IsInactive():
		return "Inactive"
	default:
		return "-"
	}
}
