package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Kind identifies which remote operation an action corresponds to.
type Kind string

// Built-in kinds.
const (
	KindRegisterCourse   Kind = "register_course"
	KindDropCourse       Kind = "drop_course"
	KindSubmitAssignment Kind = "submit_assignment"
)

// KindSpec describes the payload contract of a kind.
type KindSpec struct {
	Kind Kind

	// Required lists payload fields that must be present and non-empty.
	Required []string
}

var kinds = map[Kind]KindSpec{
	KindRegisterCourse:   {Kind: KindRegisterCourse, Required: []string{"courseId"}},
	KindDropCourse:       {Kind: KindDropCourse, Required: []string{"courseId"}},
	KindSubmitAssignment: {Kind: KindSubmitAssignment, Required: []string{"assignmentId"}},
}

// Kinds returns the known kinds in lexical order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Spec returns the payload requirements for k.
func (k Kind) Spec() (KindSpec, bool) {
	s, ok := kinds[k]
	return s, ok
}

// Known reports whether k is a registered kind.
func (k Kind) Known() bool {
	_, ok := kinds[k]
	return ok
}

// Validate checks that k is known and that payload is a JSON object whose
// required fields are non-empty strings or numbers.
func (k Kind) Validate(payload json.RawMessage) error {
	spec, ok := kinds[k]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
	obj, err := payloadObject(payload)
	if err != nil {
		return fmt.Errorf("%w: payload must be a JSON object", ErrInvalidPayload)
	}
	for _, f := range spec.Required {
		v, present := obj[f]
		if !present {
			return fmt.Errorf("%w: %s requires %q", ErrInvalidPayload, k, f)
		}
		if _, ok := scalar(v); !ok {
			return fmt.Errorf("%w: %s requires %q to be a non-empty string or a number", ErrInvalidPayload, k, f)
		}
	}
	return nil
}

// payloadObject decodes payload as a JSON object, keeping numbers as their
// literal text. An empty payload is an empty object.
func payloadObject(payload json.RawMessage) (map[string]any, error) {
	if len(payload) == 0 {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("payload is null")
	}
	return obj, nil
}

// scalar renders a field usable as an identifier: a non-empty string or a
// number.
func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, x != ""
	case json.Number:
		return x.String(), true
	default:
		return "", false
	}
}

func (k Kind) String() string { return string(k) }
