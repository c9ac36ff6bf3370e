package lov

import (
	"fmt"
	"strings"

	"github.com/fleetops/fleet-console/internal/shared"
)

// Field names accepted by the form.
const (
	FieldListCode         = "listCode"
	FieldListDescription  = "listDescription"
	FieldActive           = "active"
	FieldValueCode        = "valueCode"
	FieldValueDescription = "valueDescription"
)

// FormMode tells whether the form creates a new list or edits one.
type FormMode int

const (
	ModeCreate FormMode = iota
	ModeEdit
)

// Header is the list record without its rows.
type Header struct {
	ID              string
	ListCode        string
	ListDescription string
	Active          bool
	OrgID           string
	CreatedBy       string
}

// ValueRow is one editable value. ID is local to the form session.
type ValueRow struct {
	ID               string
	ValueCode        string
	ValueDescription string
	Active           bool
}

// Form is the editing buffer of the master view. It always holds at least
// one row.
type Form struct {
	Header Header
	Rows   []ValueRow
	Errors map[string]string
	// Token identifies one rendered form for the duplicate-submit guard.
	Token string

	user shared.User
	ids  RowIDs
}

// NewForm returns an empty form bound to the session user.
func NewForm(user shared.User, ids RowIDs) *Form {
	if ids == nil {
		ids = UUIDRowIDs{}
	}
	f := &Form{user: user, ids: ids}
	f.InitCreate()
	return f
}

// Mode reports whether the form edits a persisted list.
func (f *Form) Mode() FormMode {
	if f.Header.ID != "" {
		return ModeEdit
	}
	return ModeCreate
}

// InitCreate resets the form to a blank list with one blank row.
func (f *Form) InitCreate() {
	f.Header = Header{
		Active:    true,
		OrgID:     f.user.OrgID,
		CreatedBy: f.user.Name,
	}
	f.Rows = []ValueRow{f.blankRow()}
	f.Errors = map[string]string{}
}

// LoadRecord replaces header and rows with a fetched record.
func (f *Form) LoadRecord(rec ListRecord) {
	f.Header = Header{
		ID:              rec.ID,
		ListCode:        rec.ListCode,
		ListDescription: rec.ListDescription,
		Active:          rec.Active == nil || *rec.Active,
		OrgID:           firstNonEmpty(rec.OrgID, f.user.OrgID),
		CreatedBy:       firstNonEmpty(rec.CreatedBy, f.user.Name),
	}
	rows := make([]ValueRow, 0, len(rec.Values))
	seen := make(map[string]struct{}, len(rec.Values))
	for _, v := range rec.Values {
		id := v.ID
		if _, dup := seen[id]; id == "" || dup {
			id = f.ids.Next()
		}
		seen[id] = struct{}{}
		rows = append(rows, ValueRow{
			ID:               id,
			ValueCode:        v.ValueCode,
			ValueDescription: v.ValueDescription,
			Active:           v.Active == nil || *v.Active,
		})
	}
	if len(rows) == 0 {
		rows = append(rows, f.blankRow())
	}
	f.Rows = rows
	f.Errors = map[string]string{}
}

// Restore rebuilds the buffer shape from a submitted form: the persisted id,
// the owning org, the original creator and the row order. The posted org is
// kept only for a persisted list; new lists belong to the session org. Field
// values are replayed afterwards through UpdateHeaderField and UpdateRowField.
func (f *Form) Restore(id, orgID, createdBy string, rowIDs []string) {
	f.Header = Header{
		ID:        strings.TrimSpace(id),
		Active:    true,
		OrgID:     f.user.OrgID,
		CreatedBy: firstNonEmpty(strings.TrimSpace(createdBy), f.user.Name),
	}
	if f.Header.ID != "" {
		f.Header.OrgID = firstNonEmpty(strings.TrimSpace(orgID), f.user.OrgID)
	}
	rows := make([]ValueRow, 0, len(rowIDs))
	seen := make(map[string]struct{}, len(rowIDs))
	for _, rowID := range rowIDs {
		rowID = strings.TrimSpace(rowID)
		if _, dup := seen[rowID]; rowID == "" || dup {
			continue
		}
		seen[rowID] = struct{}{}
		rows = append(rows, ValueRow{ID: rowID, Active: true})
	}
	if len(rows) == 0 {
		rows = append(rows, f.blankRow())
	}
	f.Rows = rows
	f.Errors = map[string]string{}
}

// UpdateHeaderField sets one header field and clears its error.
func (f *Form) UpdateHeaderField(name, value string) error {
	switch name {
	case FieldListCode:
		f.Header.ListCode = value
	case FieldListDescription:
		f.Header.ListDescription = value
	case FieldActive:
		f.Header.Active = value == "true"
	default:
		return fmt.Errorf("header %q: %w", name, ErrUnknownField)
	}
	delete(f.Errors, name)
	return nil
}

// UpdateRowField sets one field of the row with the given id.
func (f *Form) UpdateRowField(rowID, field, value string) error {
	idx := f.rowIndex(rowID)
	if idx < 0 {
		return fmt.Errorf("row %q: %w", rowID, ErrRowNotFound)
	}
	row := &f.Rows[idx]
	switch field {
	case FieldValueCode:
		row.ValueCode = value
	case FieldValueDescription:
		row.ValueDescription = value
	case FieldActive:
		row.Active = value == "true"
	default:
		return fmt.Errorf("row field %q: %w", field, ErrUnknownField)
	}
	delete(f.Errors, RowFieldKey(rowID, field))
	return nil
}

// AddRow appends a blank row and returns its id.
func (f *Form) AddRow() string {
	row := f.blankRow()
	f.Rows = append(f.Rows, row)
	return row.ID
}

// RemoveRow drops the row with the given id unless it is the last one.
func (f *Form) RemoveRow(rowID string) error {
	if len(f.Rows) <= 1 {
		return ErrLastRow
	}
	idx := f.rowIndex(rowID)
	if idx < 0 {
		return fmt.Errorf("row %q: %w", rowID, ErrRowNotFound)
	}
	f.Rows = append(f.Rows[:idx:idx], f.Rows[idx+1:]...)
	f.clearRowErrors(rowID)
	return nil
}

// Revalidate recomputes the inline errors after a row was added or removed,
// leaving the untouched row identified by fresh unflagged.
func (f *Form) Revalidate(fresh string) {
	f.Validate()
	if fresh != "" {
		f.clearRowErrors(fresh)
	}
}

// HasErrors reports whether the form carries inline errors.
func (f *Form) HasErrors() bool {
	return len(f.Errors) > 0
}

func (f *Form) clearRowErrors(rowID string) {
	for key := range f.Errors {
		if strings.HasPrefix(key, "rows."+rowID+".") {
			delete(f.Errors, key)
		}
	}
}

// Validate checks header and rows and records the inline errors. The form
// may be saved only when the returned set is empty.
func (f *Form) Validate() ValidationErrors {
	errs := validateHeader(f.Header)
	for i, row := range f.Rows {
		errs = append(errs, validateRow(row, i+1)...)
	}
	f.Errors = errs.ByKey()
	return errs
}

// BuildSavePayload assembles the create-or-update body. Row ids stay local.
func (f *Form) BuildSavePayload() SavePayload {
	values := make([]SaveValue, 0, len(f.Rows))
	for i, row := range f.Rows {
		values = append(values, SaveValue{
			Sno:              i + 1,
			ValueCode:        strings.TrimSpace(row.ValueCode),
			ValueDescription: strings.TrimSpace(row.ValueDescription),
			Active:           row.Active,
		})
	}
	return SavePayload{
		ID:              f.Header.ID,
		OrgID:           f.Header.OrgID,
		ListCode:        strings.TrimSpace(f.Header.ListCode),
		ListDescription: strings.TrimSpace(f.Header.ListDescription),
		CreatedBy:       f.Header.CreatedBy,
		Active:          f.Header.Active,
		Values:          values,
	}
}

// FieldError returns the inline error of a header field.
func (f *Form) FieldError(name string) string {
	return f.Errors[name]
}

// RowError returns the inline error of a row field.
func (f *Form) RowError(rowID, field string) string {
	return f.Errors[RowFieldKey(rowID, field)]
}

func (f *Form) blankRow() ValueRow {
	return ValueRow{ID: f.ids.Next(), Active: true}
}

func (f *Form) rowIndex(rowID string) int {
	for i := range f.Rows {
		if f.Rows[i].ID == rowID {
			return i
		}
	}
	return -1
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
