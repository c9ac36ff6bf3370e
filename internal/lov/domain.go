// Package lov implements the List of Values screens of the fleet console:
// the filtered and paginated list view, the master form used to create and
// edit a list, and the client for the reference-data API behind them.
package lov

// DefaultPageSize is the fixed number of lists shown per page.
const DefaultPageSize = 10

// ListRecord is a reference-data list header as returned by the API.
// Active is nil when the API omitted the flag.
type ListRecord struct {
	ID              string       `json:"id,omitempty"`
	ListCode        string       `json:"listCode"`
	ListDescription string       `json:"listDescription"`
	Active          *bool        `json:"active,omitempty"`
	OrgID           string       `json:"orgId,omitempty"`
	CreatedBy       string       `json:"createdBy,omitempty"`
	Values          []ValueEntry `json:"values,omitempty"`
	ValueCount      int          `json:"valueCount,omitempty"`
}

// IsActive reports whether the record is explicitly active.
func (r ListRecord) IsActive() bool {
	return r.Active != nil && *r.Active
}

// IsInactive reports whether the record is explicitly inactive.
func (r ListRecord) IsInactive() bool {
	return r.Active != nil && !*r.Active
}

// ValueEntry is one value of a fetched list.
type ValueEntry struct {
	ID               string `json:"id,omitempty"`
	Sno              int    `json:"sno,omitempty"`
	ValueCode        string `json:"valueCode"`
	ValueDescription string `json:"valueDescription"`
	Active           *bool  `json:"active,omitempty"`
}

// Status is the tri-state status filter of the list view.
type Status string

const (
	StatusAny      Status = ""
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// ParseStatus maps a query value onto a Status, treating anything unknown as unset.
func ParseStatus(raw string) Status {
	switch Status(raw) {
	case StatusActive:
		return StatusActive
	case StatusInactive:
		return StatusInactive
	default:
		return StatusAny
	}
}

// FilterSpec is the filter state owned by the list view.
type FilterSpec struct {
	Search string `json:"search,omitempty"`
	Status Status `json:"status,omitempty"`
}

// IsZero reports whether no filter is applied.
func (f FilterSpec) IsZero() bool {
	return f.Search == "" && f.Status == StatusAny
}

// SaveValue is one element of the values collection sent on save.
type SaveValue struct {
	Sno              int    `json:"sno"`
	ValueCode        string `json:"valueCode"`
	ValueDescription string `json:"valueDescription"`
	Active           bool   `json:"active"`
}

// SavePayload is the create-or-update request body. ID is set for updates only.
type SavePayload struct {
	ID              string      `json:"-"`
	OrgID           string      `json:"orgId"`
	ListCode        string      `json:"listCode"`
	ListDescription string      `json:"listDescription"`
	CreatedBy       string      `json:"createdBy"`
	Active          bool        `json:"active"`
	Values          []SaveValue `json:"values"`
}

// SaveResult is the collaborator's answer to a create-or-update call.
type SaveResult struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
}

func boolPtr(v bool) *bool {
	return &v
}
