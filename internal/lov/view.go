package lov

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fleetops/fleet-console/internal/shared"
)

// View is one derived page of the list view.
type View struct {
	PageItems  []ListRecord `json:"pageItems"`
	TotalCount int          `json:"totalCount"`
	TotalPages int          `json:"totalPages"`
	// ResetPage is set when page > 1 fell past the end of the filtered set.
	ResetPage bool `json:"-"`
}

// DeriveView filters and paginates records. It never mutates its input and
// returns the same output for the same arguments.
func DeriveView(records []ListRecord, filter FilterSpec, page, pageSize int) View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	filtered := applyFilter(records, filter)

	pager := shared.NewPagination(page, pageSize, len(filtered))
	start, end := pager.Window(len(filtered))
	items := make([]ListRecord, end-start)
	copy(items, filtered[start:end])

	return View{
		PageItems:  items,
		TotalCount: pager.Total,
		TotalPages: pager.TotalPages,
		ResetPage:  page > 1 && len(items) == 0,
	}
}

// ResolveView derives the requested page and, when that page ran past the
// end, derives page 1 once instead. It returns the page actually shown.
func ResolveView(records []ListRecord, filter FilterSpec, page, pageSize int) (View, int) {
	if page < 1 {
		page = 1
	}
	view := DeriveView(records, filter, page, pageSize)
	if view.ResetPage {
		return DeriveView(records, filter, 1, pageSize), 1
	}
	return view, page
}

func applyFilter(records []ListRecord, filter FilterSpec) []ListRecord {
	out := make([]ListRecord, 0, len(records))
	term := strings.TrimSpace(filter.Search)
	var lower cases.Caser
	if term != "" {
		lower = cases.Lower(language.Und)
		term = lower.String(term)
	}
	for _, rec := range records {
		if term != "" && !matchesTerm(lower, rec, term) {
			continue
		}
		switch filter.Status {
		case StatusActive:
			if !rec.IsActive() {
				continue
			}
		case StatusInactive:
			if !rec.IsInactive() {
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}

func matchesTerm(lower cases.Caser, rec ListRecord, term string) bool {
	if rec.ListCode != "" && strings.Contains(lower.String(rec.ListCode), term) {
		return true
	}
	if rec.ListDescription != "" && strings.Contains(lower.String(rec.ListDescription), term) {
		return true
	}
	return false
}
