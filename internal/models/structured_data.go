package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	FieldName           = "name"
	FieldSkills         = "skills"
	FieldEducation      = "education"
	FieldWorkExperience = "work_experience"
)

var ErrNotObject = errors.New("structured data is not a JSON object")

// StructuredData is the model-produced resume mapping. The shape is not
// enforced at ingestion, so every accessor reports whether the key was there.
type StructuredData map[string]any

// ParseStructuredData decodes raw into a StructuredData. Anything other than
// a JSON object is rejected.
func ParseStructuredData(raw []byte) (StructuredData, error) {
	if len(raw) == 0 {
		return nil, ErrNotObject
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("decode structured data: %w", err)
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}

	return StructuredData(obj), nil
}

func (d StructuredData) Has(key string) bool {
	_, ok := d[key]
	return ok
}

func (d StructuredData) Name() (string, bool) {
	v, ok := d[FieldName]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (d StructuredData) Skills() ([]string, bool) {
	return d.stringList(FieldSkills)
}

func (d StructuredData) Education() ([]string, bool) {
	return d.stringList(FieldEducation)
}

func (d StructuredData) WorkExperience() ([]string, bool) {
	return d.stringList(FieldWorkExperience)
}

// SetSkills replaces the skills list.
func (d StructuredData) SetSkills(skills []string) {
	items := make([]any, len(skills))
	for i, s := range skills {
		items[i] = s
	}
	d[FieldSkills] = items
}

func (d StructuredData) JSON() ([]byte, error) {
	return json.Marshal(map[string]any(d))
}

// stringList reads key as a list of strings. Non-string entries are rendered
// with fmt; a bare string becomes a one-element list.
func (d StructuredData) stringList(key string) ([]string, bool) {
	v, ok := d[key]
	if !ok || v == nil {
		return nil, false
	}

	switch val := v.(type) {
	case []string:
		return val, true
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out, true
	case string:
		return []string{val}, true
	default:
		return nil, false
	}
}
