// Package models defines the canonical record shapes and derived view models
// for the canvas projection engine. Records arrive from the LLM as loosely
// typed JSON in one of two shapes; both normalize into Record so every
// downstream component operates on a single internal representation.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FieldType names the declared kind of a field's value.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeDate     FieldType = "date"
	FieldTypeDropdown FieldType = "dropdown"
	FieldTypeID       FieldType = "id"
	FieldTypeNumber   FieldType = "number"
	FieldTypeJSON     FieldType = "json"
)

// ValidFieldTypes is the set of all recognized field types.
var ValidFieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeTextarea,
	FieldTypeDate,
	FieldTypeDropdown,
	FieldTypeID,
	FieldTypeNumber,
	FieldTypeJSON,
}

// IsValid returns true if the field type is recognized.
func (ft FieldType) IsValid() bool {
	for _, v := range ValidFieldTypes {
		if ft == v {
			return true
		}
	}
	return false
}

// NormalizeFieldType lowercases a declared type name so that variants like
// "textArea" compare equal to "textarea". Unrecognized names pass through
// lowercased; callers treat them as text-like.
func NormalizeFieldType(name string) FieldType {
	return FieldType(strings.ToLower(strings.TrimSpace(name)))
}

// Field is one named value on a record. Value is read-only from outside the
// package; use SetValue so the field re-serializes correctly. An unedited
// field marshals back to its original bytes.
type Field struct {
	APIName       string
	Label         string
	Value         any
	Type          FieldType
	AllowedValues []string

	raw   json.RawMessage
	dirty bool
}

// NewField builds a field programmatically (generator, tests, add-record).
func NewField(apiName, label string, value any, ft FieldType, allowed []string) Field {
	return Field{
		APIName:       apiName,
		Label:         label,
		Value:         value,
		Type:          ft,
		AllowedValues: allowed,
		dirty:         true,
	}
}

// SetValue replaces the field's value and marks it for re-serialization.
func (f *Field) SetValue(v any) {
	f.Value = v
	f.dirty = true
}

// ValueString renders the field's value as a string; nil becomes "".
func (f *Field) ValueString() string {
	return Stringify(f.Value)
}

// fieldWire is the canonical serialized shape for fields built in-process.
type fieldWire struct {
	APIName       string    `json:"apiName"`
	Label         string    `json:"label"`
	Value         any       `json:"value"`
	Type          FieldType `json:"type"`
	AllowedValues []string  `json:"allowedValues,omitempty"`
}

// fieldTypeObject is the alternate wire shape where type carries metadata:
// {"type": {"name": "dropdown", "allowedValues": [...]}}.
type fieldTypeObject struct {
	Name          string `json:"name"`
	AllowedValues []any  `json:"allowedValues"`
}

// UnmarshalJSON accepts both field wire shapes. Non-object values (a bare
// scalar where a field object was expected) degrade to a value-only field
// rather than erroring.
func (f *Field) UnmarshalJSON(data []byte) error {
	f.raw = append(json.RawMessage(nil), data...)
	f.dirty = false

	if !rawIsObject(data) {
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("field: %w", err)
		}
		f.Value = v
		f.Type = FieldTypeText
		return nil
	}

	var aux struct {
		APIName       string          `json:"apiName"`
		Label         string          `json:"label"`
		Value         any             `json:"value"`
		Type          json.RawMessage `json:"type"`
		AllowedValues []any           `json:"allowedValues"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("field: %w", err)
	}

	f.APIName = aux.APIName
	f.Label = aux.Label
	f.Value = aux.Value
	f.Type = FieldTypeText
	f.AllowedValues = stringifyAll(aux.AllowedValues)

	if len(aux.Type) > 0 {
		var name string
		if err := json.Unmarshal(aux.Type, &name); err == nil {
			f.Type = NormalizeFieldType(name)
		} else {
			var obj fieldTypeObject
			if err := json.Unmarshal(aux.Type, &obj); err == nil {
				if obj.Name != "" {
					f.Type = NormalizeFieldType(obj.Name)
				}
				if len(f.AllowedValues) == 0 {
					f.AllowedValues = stringifyAll(obj.AllowedValues)
				}
			}
		}
	}
	return nil
}

// MarshalJSON emits the original bytes when the field is untouched, patches
// only the value when it was edited, and falls back to the canonical shape
// for fields built in-process.
func (f Field) MarshalJSON() ([]byte, error) {
	if f.raw != nil && !f.dirty {
		return f.raw, nil
	}
	if f.raw != nil && rawIsObject(f.raw) {
		var m map[string]any
		if err := json.Unmarshal(f.raw, &m); err == nil {
			m["value"] = f.Value
			return json.Marshal(m)
		}
	}
	if f.raw != nil {
		// Edited scalar field: the value is the whole field.
		return json.Marshal(f.Value)
	}
	return json.Marshal(fieldWire{
		APIName:       f.APIName,
		Label:         f.Label,
		Value:         f.Value,
		Type:          f.Type,
		AllowedValues: f.AllowedValues,
	})
}

type recordShape int

const (
	shapeFieldMap recordShape = iota
	shapeFieldList
)

// Record is the normalized form of one entity. It preserves the inbound wire
// shape and field order so an unedited record marshals back byte-identical.
type Record struct {
	shape    recordShape
	recordID string
	keys     []string
	fields   map[string]*Field
}

// NewRecord builds a map-shaped record from fields, keyed by apiName.
func NewRecord(fs ...Field) Record {
	r := Record{fields: make(map[string]*Field, len(fs))}
	for i := range fs {
		f := fs[i]
		key := f.APIName
		if key == "" {
			key = fmt.Sprintf("field%d", i+1)
		}
		if _, exists := r.fields[key]; exists {
			continue
		}
		r.keys = append(r.keys, key)
		r.fields[key] = &f
	}
	return r
}

// Keys returns the record's field keys in wire order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Field returns the named field, if present.
func (r Record) Field(key string) (*Field, bool) {
	f, ok := r.fields[key]
	return f, ok
}

// Len is the number of fields on the record.
func (r Record) Len() int { return len(r.keys) }

// RecordID returns the explicit record id carried by the fields-list wire
// shape, or "" when the record is map-shaped.
func (r Record) RecordID() string { return r.recordID }

// SetFieldValue overwrites one field's value; reports whether the field exists.
func (r *Record) SetFieldValue(key string, v any) bool {
	f, ok := r.fields[key]
	if !ok {
		return false
	}
	f.SetValue(v)
	return true
}

// Clone deep-copies the record so edits do not leak into the original.
func (r Record) Clone() Record {
	out := Record{
		shape:    r.shape,
		recordID: r.recordID,
		keys:     make([]string, len(r.keys)),
		fields:   make(map[string]*Field, len(r.fields)),
	}
	copy(out.keys, r.keys)
	for k, f := range r.fields {
		cp := *f
		if f.AllowedValues != nil {
			cp.AllowedValues = append([]string(nil), f.AllowedValues...)
		}
		out.fields[k] = &cp
	}
	return out
}

// UnmarshalJSON accepts both record wire shapes:
//
//	{"field1": {...}, "field2": {...}}                 (map of fields)
//	{"recordId": "R1", "fields": [{...}, {...}]}       (fields list)
//
// Key order is preserved for the map shape because role inference falls back
// to field position.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}

	r.shape = shapeFieldMap
	r.recordID = ""
	r.keys = nil
	r.fields = make(map[string]*Field)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("record: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("record: expected string key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("record: field %q: %w", key, err)
		}

		switch {
		case key == "recordId" && !rawIsObject(raw) && !rawIsArray(raw):
			var id string
			if err := json.Unmarshal(raw, &id); err == nil {
				r.recordID = id
				r.shape = shapeFieldList
				continue
			}
		case key == "fields" && rawIsArray(raw):
			var fs []Field
			if err := json.Unmarshal(raw, &fs); err != nil {
				return fmt.Errorf("record: fields list: %w", err)
			}
			r.shape = shapeFieldList
			for i := range fs {
				k := fs[i].APIName
				if k == "" {
					k = fmt.Sprintf("field%d", i+1)
				}
				if _, exists := r.fields[k]; exists {
					continue
				}
				r.keys = append(r.keys, k)
				r.fields[k] = &fs[i]
			}
			continue
		}

		var f Field
		if err := json.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("record: field %q: %w", key, err)
		}
		if f.APIName == "" {
			f.APIName = key
		}
		if _, exists := r.fields[key]; exists {
			continue
		}
		r.keys = append(r.keys, key)
		r.fields[key] = &f
	}
	return nil
}

// MarshalJSON emits the record in its original wire shape and field order.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.shape == shapeFieldList {
		var buf bytes.Buffer
		buf.WriteByte('{')
		if r.recordID != "" {
			buf.WriteString(`"recordId":`)
			id, err := json.Marshal(r.recordID)
			if err != nil {
				return nil, err
			}
			buf.Write(id)
			buf.WriteByte(',')
		}
		buf.WriteString(`"fields":[`)
		for i, k := range r.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			fb, err := json.Marshal(r.fields[k])
			if err != nil {
				return nil, err
			}
			buf.Write(fb)
		}
		buf.WriteString(`]}`)
		return buf.Bytes(), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		fb, err := json.Marshal(r.fields[k])
		if err != nil {
			return nil, err
		}
		buf.Write(fb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Stringify renders a JSON-decoded value as display text; nil becomes "".
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func stringifyAll(vs []any) []string {
	if len(vs) == 0 {
		return nil
	}
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, Stringify(v))
	}
	return out
}

func rawIsObject(raw []byte) bool { return firstByte(raw) == '{' }
func rawIsArray(raw []byte) bool  { return firstByte(raw) == '[' }

func firstByte(raw []byte) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}
