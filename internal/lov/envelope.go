package lov

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

const (
	// EntityKey is the paramObjectsMap key carrying list records.
	EntityKey = "listOfValuesVO"
	// ValuesKey is the record key carrying the nested value entries.
	ValuesKey = "listOfValues1VO"
)

// Envelope is the response wrapper used by the reference-data API.
type Envelope struct {
	Status          bool                       `json:"status"`
	Message         string                     `json:"message"`
	ParamObjectsMap map[string]json.RawMessage `json:"paramObjectsMap"`
}

// DecodeEnvelope parses a response body. Only a body that is not a JSON
// object is an error; missing members decode to their zero values.
func DecodeEnvelope(body []byte) (Envelope, error) {
	var raw struct {
		Status          json.RawMessage `json:"status"`
		Message         json.RawMessage `json:"message"`
		ParamObjectsMap json.RawMessage `json:"paramObjectsMap"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Envelope{}, err
	}
	env := Envelope{
		Status:  truthy(raw.Status),
		Message: looseString(raw.Message),
	}
	var params map[string]json.RawMessage
	if len(raw.ParamObjectsMap) > 0 && json.Unmarshal(raw.ParamObjectsMap, &params) == nil {
		env.ParamObjectsMap = params
	}
	return env, nil
}

// Records extracts the list records stored under key. A single object is
// treated as a one-element collection and malformed entries are skipped.
func (e Envelope) Records(key string) []ListRecord {
	payload, ok := e.ParamObjectsMap[key]
	if !ok {
		return []ListRecord{}
	}
	items := rawItems(payload)
	records := make([]ListRecord, 0, len(items))
	for _, item := range items {
		var wire wireRecord
		if err := json.Unmarshal(item, &wire); err != nil {
			continue
		}
		records = append(records, wire.record())
	}
	return records
}

func rawItems(payload json.RawMessage) []json.RawMessage {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil
	}
	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil
		}
		return items
	case '{':
		return []json.RawMessage{trimmed}
	default:
		return nil
	}
}

type wireRecord struct {
	ID              flexID          `json:"id"`
	ListCode        looseText       `json:"listCode"`
	ListDescription looseText       `json:"listDescription"`
	Active          looseBool       `json:"active"`
	OrgID           flexID          `json:"orgId"`
	CreatedBy       looseText       `json:"createdBy"`
	Values          json.RawMessage `json:"listOfValues1VO"`
	TotalCount      flexID          `json:"totalCount"`
}

func (w wireRecord) record() ListRecord {
	rec := ListRecord{
		ID:              string(w.ID),
		ListCode:        string(w.ListCode),
		ListDescription: string(w.ListDescription),
		Active:          w.Active.ptr(),
		OrgID:           string(w.OrgID),
		CreatedBy:       string(w.CreatedBy),
	}
	rec.ValueCount, _ = strconv.Atoi(string(w.TotalCount))
	if items := rawItems(w.Values); len(items) > 0 {
		rec.Values = make([]ValueEntry, 0, len(items))
		for _, item := range items {
			var v wireValue
			if err := json.Unmarshal(item, &v); err != nil {
				continue
			}
			sno, _ := strconv.Atoi(string(v.Sno))
			rec.Values = append(rec.Values, ValueEntry{
				ID:               string(v.ID),
				Sno:              sno,
				ValueCode:        string(v.ValueCode),
				ValueDescription: string(v.ValueDescription),
				Active:           v.Active.ptr(),
			})
		}
	}
	if rec.ValueCount == 0 {
		rec.ValueCount = len(rec.Values)
	}
	return rec
}

type wireValue struct {
	ID               flexID    `json:"id"`
	Sno              flexID    `json:"sno"`
	ValueCode        looseText `json:"valueCode"`
	ValueDescription looseText `json:"valueDescription"`
	Active           looseBool `json:"active"`
}

// flexID accepts identifiers sent either as JSON numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	*f = flexID(looseString(data))
	return nil
}

// looseText tolerates null and non-string scalars.
type looseText string

func (t *looseText) UnmarshalJSON(data []byte) error {
	*t = looseText(looseString(data))
	return nil
}

// looseBool keeps track of whether the flag was present at all.
type looseBool struct {
	set   bool
	value bool
}

func (b *looseBool) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}
	switch strings.ToLower(looseString(trimmed)) {
	case "true":
		b.set, b.value = true, true
	case "false":
		b.set, b.value = true, false
	}
	return nil
}

func (b looseBool) ptr() *bool {
	if !b.set {
		return nil
	}
	return boolPtr(b.value)
}

func looseString(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return ""
		}
		return s
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return ""
	}
	return string(trimmed)
}

func truthy(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return false
	}
	switch string(trimmed) {
	case "true":
		return true
	case "false", "null", "0", `""`:
		return false
	}
	return true
}

// MarshalJSON adds the id member for updates, as a number when it is one.
func (p SavePayload) MarshalJSON() ([]byte, error) {
	type plain SavePayload
	body := struct {
		ID any `json:"id,omitempty"`
		plain
	}{plain: plain(p)}
	if p.ID != "" {
		if _, err := strconv.ParseInt(p.ID, 10, 64); err == nil {
			body.ID = json.Number(p.ID)
		} else {
			body.ID = p.ID
		}
	}
	if body.Values == nil {
		body.Values = []SaveValue{}
	}
	return json.Marshal(body)
}
