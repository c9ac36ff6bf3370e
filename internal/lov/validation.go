package lov

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one inline validation message. RowID and Row are set for
// row fields only; Row is the 1-based position in the current order.
type FieldError struct {
	Field   string
	RowID   string
	Row     int
	Message string
}

// Key identifies the input the error belongs to.
func (e FieldError) Key() string {
	if e.RowID == "" {
		return e.Field
	}
	return RowFieldKey(e.RowID, e.Field)
}

// RowFieldKey builds the error key of a row field.
func RowFieldKey(rowID, field string) string {
	return "rows." + rowID + "." + field
}

// ValidationErrors is the ordered error set produced by Form.Validate.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// Unwrap lets callers match the set with errors.Is(err, ErrValidation).
func (v ValidationErrors) Unwrap() error {
	if len(v) == 0 {
		return nil
	}
	return ErrValidation
}

// ByKey indexes the messages by input key.
func (v ValidationErrors) ByKey() map[string]string {
	out := make(map[string]string, len(v))
	for _, fe := range v {
		out[fe.Key()] = fe.Message
	}
	return out
}

type headerRules struct {
	ListCode        string `json:"listCode" validate:"required"`
	ListDescription string `json:"listDescription" validate:"required"`
}

type rowRules struct {
	ValueCode        string `json:"valueCode" validate:"required"`
	ValueDescription string `json:"valueDescription" validate:"required"`
}

var fieldLabels = map[string]string{
	FieldListCode:         "List code",
	FieldListDescription:  "List description",
	FieldValueCode:        "Value code",
	FieldValueDescription: "Value description",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateHeader(h Header) ValidationErrors {
	rules := headerRules{
		ListCode:        strings.TrimSpace(h.ListCode),
		ListDescription: strings.TrimSpace(h.ListDescription),
	}
	var out ValidationErrors
	for _, field := range failedFields(rules) {
		out = append(out, FieldError{Field: field, Message: fieldLabels[field] + " is required"})
	}
	return out
}

func validateRow(row ValueRow, position int) ValidationErrors {
	rules := rowRules{
		ValueCode:        strings.TrimSpace(row.ValueCode),
		ValueDescription: strings.TrimSpace(row.ValueDescription),
	}
	var out ValidationErrors
	for _, field := range failedFields(rules) {
		out = append(out, FieldError{
			Field:   field,
			RowID:   row.ID,
			Row:     position,
			Message: fmt.Sprintf("%s is required for row %d", fieldLabels[field], position),
		})
	}
	return out
}

func failedFields(rules any) []string {
	err := validate.Struct(rules)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}
