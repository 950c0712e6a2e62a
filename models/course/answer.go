package course

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AnswerKind tags the shape held by an AnswerValue.
type AnswerKind string

const (
	AnswerNone   AnswerKind = ""
	AnswerString AnswerKind = "string"
	AnswerNumber AnswerKind = "number"
	AnswerBool   AnswerKind = "bool"
	AnswerList   AnswerKind = "list"
)

// AnswerValue is the answer to a test question: a string, a number, a boolean
// or an ordered list of those. It serializes as the bare JSON value.
type AnswerValue struct {
	Kind AnswerKind
	Str  string
	Num  float64
	Bool bool
	List []AnswerValue
}

func StringAnswer(s string) AnswerValue { return AnswerValue{Kind: AnswerString, Str: s} }

func NumberAnswer(n float64) AnswerValue { return AnswerValue{Kind: AnswerNumber, Num: n} }

func BoolAnswer(b bool) AnswerValue { return AnswerValue{Kind: AnswerBool, Bool: b} }

func ListAnswer(values ...AnswerValue) AnswerValue {
	if values == nil {
		values = []AnswerValue{}
	}
	return AnswerValue{Kind: AnswerList, List: values}
}

// IsEmpty reports whether no answer was given.
func (v AnswerValue) IsEmpty() bool {
	return v.Kind == AnswerNone
}

// Equal compares two answers by kind and value. Lists compare element by
// element in order, so [1,2] and [2,1] differ, and "1" never equals 1.
func (v AnswerValue) Equal(other AnswerValue) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case AnswerNone:
		return true
	case AnswerString:
		return v.Str == other.Str
	case AnswerNumber:
		return v.Num == other.Num
	case AnswerBool:
		return v.Bool == other.Bool
	case AnswerList:
		if len(v.List) != len(other.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(other.List[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case AnswerNone:
		return []byte("null"), nil
	case AnswerString:
		return json.Marshal(v.Str)
	case AnswerNumber:
		return json.Marshal(v.Num)
	case AnswerBool:
		return json.Marshal(v.Bool)
	case AnswerList:
		list := v.List
		if list == nil {
			list = []AnswerValue{}
		}
		return json.Marshal(list)
	}
	return nil, fmt.Errorf("unknown answer kind %q", v.Kind)
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*v = AnswerValue{}
		return nil
	}

	switch data[0] {
	case 'n':
		*v = AnswerValue{}
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringAnswer(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolAnswer(b)
	case '[':
		var list []AnswerValue
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*v = ListAnswer(list...)
	case '{':
		return fmt.Errorf("answer must be a string, number, boolean or list")
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = NumberAnswer(n)
	}
	return nil
}
