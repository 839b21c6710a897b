package types

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownField is returned when a search or sort names a field that
// records do not have.
var ErrUnknownField = errors.New("unknown field")

// Value is a single field projected for ordering. Numeric fields
// (enrollmentYear, age, birthDate, timestamps) compare numerically; text
// fields compare lexicographically by byte.
type Value struct {
	Numeric bool
	Num     int64
	Text    string
}

// CompareValues returns -1, 0 or +1 in the natural order of the field.
func CompareValues(a, b Value) int {
	if a.Numeric && b.Numeric {
		return cmp.Compare(a.Num, b.Num)
	}
	return strings.Compare(a.Text, b.Text)
}

func numeric(n int64) Value { return Value{Numeric: true, Num: n} }
func text(s string) Value   { return Value{Text: s} }

// Field projects s onto the named field.
func (s Student) Field(name string) (Value, error) {
	switch name {
	case FieldID:
		return text(s.ID), nil
	case FieldName:
		return text(s.Name), nil
	case FieldEmail:
		return text(s.Email), nil
	case FieldProgram:
		return text(s.Program), nil
	case FieldAddress:
		return text(s.Address), nil
	case FieldEnrollmentYear:
		return numeric(int64(s.EnrollmentYear)), nil
	case FieldAge:
		return numeric(int64(s.Age)), nil
	case FieldBirthDate:
		birth, err := ParseBirthDate(s.BirthDate)
		if err != nil {
			return text(s.BirthDate), nil
		}
		return numeric(int64(birth.Year()*10000 + int(birth.Month())*100 + birth.Day())), nil
	case FieldCreatedAt:
		return numeric(s.CreatedAt.UnixNano()), nil
	case FieldUpdatedAt:
		return numeric(s.UpdatedAt.UnixNano()), nil
	case FieldOriginCountry:
		if s.International == nil {
			return text(""), nil
		}
		return text(s.International.OriginCountry), nil
	case FieldVisaNumber:
		if s.International == nil {
			return text(""), nil
		}
		return text(s.International.VisaNumber), nil
	case FieldKind:
		return text(string(s.Kind())), nil
	}
	return Value{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// FieldText returns the serialized text of the named field. ok is false
// when the record does not carry that field (e.g. visaNumber on a regular
// student).
func (s Student) FieldText(name string) (value string, ok bool) {
	for _, p := range s.ToRecord().Pairs() {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}
