package types

import (
	"strconv"
	"time"
)

// Record is the flat serialized shape of a Student, including the derived
// age. International students carry three extra fields, the last of which
// (jenis) is the variant discriminator.
type Record struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	BirthDate      string    `json:"birthDate"`
	Email          string    `json:"email"`
	Program        string    `json:"program"`
	EnrollmentYear int       `json:"enrollmentYear"`
	Address        string    `json:"address"`
	Age            int       `json:"age"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	OriginCountry  string    `json:"originCountry,omitempty"`
	VisaNumber     string    `json:"visaNumber,omitempty"`
	Jenis          string    `json:"jenis,omitempty"`
}

// Pair is one name/value entry of a Record in serialization order.
type Pair struct {
	Name  string
	Value string
}

// ToRecord flattens s.
func (s Student) ToRecord() Record {
	r := Record{
		ID:             s.ID,
		Name:           s.Name,
		BirthDate:      s.BirthDate,
		Email:          s.Email,
		Program:        s.Program,
		EnrollmentYear: s.EnrollmentYear,
		Address:        s.Address,
		Age:            s.Age,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
	if s.International != nil {
		r.OriginCountry = s.International.OriginCountry
		r.VisaNumber = s.International.VisaNumber
		r.Jenis = string(KindInternational)
	}
	return r
}

// International reports whether r came from an international student.
func (r Record) International() bool {
	return r.Jenis == string(KindInternational) || r.OriginCountry != ""
}

// Pairs lists r's fields in canonical order, with every value rendered as
// text. Timestamps use RFC 3339 with nanoseconds so they survive a round
// trip through any text format.
func (r Record) Pairs() []Pair {
	pairs := []Pair{
		{FieldID, r.ID},
		{FieldName, r.Name},
		{FieldBirthDate, r.BirthDate},
		{FieldEmail, r.Email},
		{FieldProgram, r.Program},
		{FieldEnrollmentYear, strconv.Itoa(r.EnrollmentYear)},
		{FieldAddress, r.Address},
		{FieldAge, strconv.Itoa(r.Age)},
		{FieldCreatedAt, formatTimestamp(r.CreatedAt)},
		{FieldUpdatedAt, formatTimestamp(r.UpdatedAt)},
	}
	if r.International() {
		pairs = append(pairs,
			Pair{FieldOriginCountry, r.OriginCountry},
			Pair{FieldVisaNumber, r.VisaNumber},
			Pair{FieldKind, string(KindInternational)},
		)
	}
	return pairs
}

// Fields returns r as a field mapping, the same shape the codecs produce
// when parsing.
func (r Record) Fields() Fields {
	pairs := r.Pairs()
	f := make(Fields, len(pairs))
	for _, p := range pairs {
		f[p.Name] = p.Value
	}
	return f
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

// DisplayRecord is the UI-friendly subset of a Student: a human-readable
// age and '-' in place of empty optional fields.
type DisplayRecord struct {
	ID             string
	Name           string
	Email          string
	Program        string
	Age            string
	EnrollmentYear int
	Address        string
	Kind           Kind
	OriginCountry  string
	VisaNumber     string
}

// ToDisplayRecord renders s for display.
func (s Student) ToDisplayRecord() DisplayRecord {
	d := DisplayRecord{
		ID:             s.ID,
		Name:           s.Name,
		Email:          s.Email,
		Program:        s.Program,
		Age:            strconv.Itoa(s.Age) + " years",
		EnrollmentYear: s.EnrollmentYear,
		Address:        dashIfEmpty(s.Address),
		Kind:           s.Kind(),
		OriginCountry:  "-",
		VisaNumber:     "-",
	}
	if s.International != nil {
		d.OriginCountry = dashIfEmpty(s.International.OriginCountry)
		d.VisaNumber = dashIfEmpty(s.International.VisaNumber)
	}
	return d
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
