// Package types holds the record model shared across the application:
// the Student value (with its optional international payload), the flat
// serialized Record shape, and the field names used by search, sort and
// the import/export codecs. Collection, codec, search, sorting and visual
// all import types without depending on each other.
package types

import (
	"fmt"
	"time"
)

// Field names as they appear in every serialized form (json keys, csv
// headers, txt labels, xml element names).
const (
	FieldAll            = "all"
	FieldID             = "id"
	FieldName           = "name"
	FieldBirthDate      = "birthDate"
	FieldEmail          = "email"
	FieldProgram        = "program"
	FieldEnrollmentYear = "enrollmentYear"
	FieldAddress        = "address"
	FieldAge            = "age"
	FieldCreatedAt      = "createdAt"
	FieldUpdatedAt      = "updatedAt"
	FieldOriginCountry  = "originCountry"
	FieldVisaNumber     = "visaNumber"
	FieldKind           = "jenis"
)

// fieldOrder is the canonical serialization order. The last three only
// appear for international students.
var fieldOrder = []string{
	FieldID, FieldName, FieldBirthDate, FieldEmail, FieldProgram,
	FieldEnrollmentYear, FieldAddress, FieldAge, FieldCreatedAt, FieldUpdatedAt,
	FieldOriginCountry, FieldVisaNumber, FieldKind,
}

// FieldNames returns every known field name in serialization order.
func FieldNames() []string {
	out := make([]string, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

// IsField reports whether name is a known record field.
func IsField(name string) bool {
	for _, f := range fieldOrder {
		if f == name {
			return true
		}
	}
	return false
}

// Kind discriminates the two record variants.
type Kind string

const (
	KindStudent       Kind = "student"
	KindInternational Kind = "international"
)

// InternationalDetails is the extra payload carried by international
// students. A Student with a nil International is a regular student.
type InternationalDetails struct {
	OriginCountry string
	VisaNumber    string
}

// Student is an immutable, validated student record.
//
// Values are only produced by a Validator (NewStudent, Revise,
// FromFields), so every Student in circulation satisfies the field rules.
// "Updating" a student means building a new value and replacing the old
// one in the collection.
type Student struct {
	ID             string
	Name           string
	BirthDate      string // canonical DD/MM/YYYY
	Age            int    // derived from BirthDate at validation time
	Email          string
	Program        string
	EnrollmentYear int
	Address        string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	International *InternationalDetails
}

// Kind reports which variant s is.
func (s Student) Kind() Kind {
	if s.International != nil {
		return KindInternational
	}
	return KindStudent
}

// Equal reports whether s and o hold the same values. Timestamps are
// compared as instants.
func (s Student) Equal(o Student) bool {
	if s.ID != o.ID || s.Name != o.Name || s.BirthDate != o.BirthDate || s.Age != o.Age ||
		s.Email != o.Email || s.Program != o.Program || s.EnrollmentYear != o.EnrollmentYear ||
		s.Address != o.Address || !s.CreatedAt.Equal(o.CreatedAt) || !s.UpdatedAt.Equal(o.UpdatedAt) {
		return false
	}
	if s.International == nil || o.International == nil {
		return s.International == o.International
	}
	return *s.International == *o.International
}

// Info returns a one-line summary of the record.
func (s Student) Info() string {
	info := fmt.Sprintf("Name: %s, Born: %s, Age: %d, ID: %s, Program: %s",
		s.Name, s.BirthDate, s.Age, s.ID, s.Program)
	if s.International != nil {
		info += ", Origin: " + s.International.OriginCountry
	}
	return info
}

// StudentInput is the raw, unvalidated form of a Student. It is what a
// form layer or an importer hands to the Validator.
//
// The json tags double as the field names reported in validation errors.
type StudentInput struct {
	ID             string              `json:"id"             validate:"studentid"`
	Name           string              `json:"name"           validate:"personname"`
	BirthDate      string              `json:"birthDate"      validate:"birthdate,notfuture,minage=17"`
	Email          string              `json:"email"          validate:"emaillite"`
	Program        string              `json:"program"        validate:"required,plaintext"`
	EnrollmentYear int                 `json:"enrollmentYear" validate:"min=2000,maxenroll"`
	Address        string              `json:"address"        validate:"plaintext"`
	International  *InternationalInput `json:"international"`
}

// InternationalInput is the raw form of InternationalDetails.
type InternationalInput struct {
	OriginCountry string `json:"originCountry" validate:"required,plaintext"`
	VisaNumber    string `json:"visaNumber"    validate:"plaintext"`
}

// Input converts s back into its raw form, the starting point for Revise.
func (s Student) Input() StudentInput {
	in := StudentInput{
		ID:             s.ID,
		Name:           s.Name,
		BirthDate:      s.BirthDate,
		Email:          s.Email,
		Program:        s.Program,
		EnrollmentYear: s.EnrollmentYear,
		Address:        s.Address,
	}
	if s.International != nil {
		in.International = &InternationalInput{
			OriginCountry: s.International.OriginCountry,
			VisaNumber:    s.International.VisaNumber,
		}
	}
	return in
}

// Fields is a flat field-name → text mapping: the shape every import
// format is parsed into before a record is rebuilt from it.
type Fields map[string]string
