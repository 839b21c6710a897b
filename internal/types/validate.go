package types

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	studentIDPattern  = regexp.MustCompile(`^\d{10,15}$`)
	personNamePattern = regexp.MustCompile(`^[A-Za-z\s]+$`)
	emailPattern      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Minimum enrollment year accepted by the maxenroll/min rules.
const minEnrollmentYear = 2000

// ─────────────────────────────────────────────────────────────────────────────
// FieldError / ValidationErrors
//
// The go-playground/validator package reports one FieldError per failing
// struct field. We translate each into a plain English sentence keyed by
// the serialized field name, so a form layer can show the message next to
// the right input.
// ─────────────────────────────────────────────────────────────────────────────

// FieldError describes one field that failed validation.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// ValidationErrors is returned whenever a Student cannot be built. It is
// always recoverable: the caller fixes the input and tries again.
type ValidationErrors []FieldError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, e := range ve {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Field returns the error recorded for the named field, if any.
func (ve ValidationErrors) Field(name string) (FieldError, bool) {
	for _, e := range ve {
		if e.Field == name {
			return e, true
		}
	}
	return FieldError{}, false
}

// ─────────────────────────────────────────────────────────────────────────────
// Validator
// ─────────────────────────────────────────────────────────────────────────────

// Validator builds Student values from raw input. The clock is injected
// because two rules (minimum age, latest enrollment year) depend on the
// current date.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// DefaultValidator validates against the wall clock.
var DefaultValidator = NewValidator(time.Now)

// NewValidator returns a Validator whose time-dependent rules are
// evaluated against now().
func NewValidator(now func() time.Time) *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      now,
	}

	// Report json names ("birthDate") instead of Go names ("BirthDate").
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	rules := map[string]validator.Func{
		"studentid":  v.isStudentID,
		"personname": v.isPersonName,
		"emaillite":  v.isEmail,
		"birthdate":  v.isBirthDate,
		"notfuture":  v.isNotFuture,
		"minage":     v.hasMinAge,
		"maxenroll":  v.isEnrollYearNotTooLate,
		"plaintext":  v.isPlainText,
	}
	for tag, fn := range rules {
		// RegisterValidation only fails on an empty tag or nil func.
		if err := v.validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("types: register %q: %v", tag, err))
		}
	}

	return v
}

// Now returns the validator's notion of the current time.
func (v *Validator) Now() time.Time {
	return v.now()
}

func (v *Validator) isStudentID(fl validator.FieldLevel) bool {
	return studentIDPattern.MatchString(fl.Field().String())
}

func (v *Validator) isPersonName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return len(name) >= 3 && len(name) <= 50 && personNamePattern.MatchString(name)
}

func (v *Validator) isEmail(fl validator.FieldLevel) bool {
	return emailPattern.MatchString(fl.Field().String())
}

func (v *Validator) isBirthDate(fl validator.FieldLevel) bool {
	_, err := ParseBirthDate(fl.Field().String())
	return err == nil
}

func (v *Validator) isNotFuture(fl validator.FieldLevel) bool {
	birth, err := ParseBirthDate(fl.Field().String())
	if err != nil {
		return false
	}
	return !birth.After(dateOnly(v.now()))
}

func (v *Validator) hasMinAge(fl validator.FieldLevel) bool {
	minAge, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	birth, err := ParseBirthDate(fl.Field().String())
	if err != nil {
		return false
	}
	return AgeAt(birth, dateOnly(v.now())) >= minAge
}

func (v *Validator) isEnrollYearNotTooLate(fl validator.FieldLevel) bool {
	return fl.Field().Int() <= int64(v.now().Year()+1)
}

// isPlainText accepts valid UTF-8 free text. Newlines and tabs are
// allowed; every other control character is not, since no export format
// can carry it faithfully.
func (v *Validator) isPlainText(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if r == '\n' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) || r == 0xFFFE || r == 0xFFFF {
			return false
		}
	}
	return true
}

// translate converts validator field errors into ValidationErrors.
func (v *Validator) translate(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))

	for _, e := range errs {
		var msg string
		switch e.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", e.Field())
		case "studentid":
			msg = "id must be 10-15 digits"
		case "personname":
			msg = "name must be 3-50 characters, letters and spaces only"
		case "emaillite":
			msg = "email format is invalid"
		case "birthdate":
			msg = "birthDate must be a valid date (DD/MM/YYYY)"
		case "notfuture":
			msg = "birthDate must not be in the future"
		case "minage":
			msg = fmt.Sprintf("age must be at least %s years", e.Param())
		case "plaintext":
			msg = fmt.Sprintf("%s must not contain control characters", e.Field())
		case "min", "maxenroll":
			msg = fmt.Sprintf("enrollmentYear must be between %d and %d",
				minEnrollmentYear, v.now().Year()+1)
		default:
			msg = fmt.Sprintf("%s is invalid", e.Field())
		}
		out = append(out, FieldError{Field: e.Field(), Message: msg})
	}

	return out
}

// normalize trims every text field, lower-cases the email and turns
// \r\n and lone \r line endings in free text into \n. The international
// payload is copied so the caller's input is never touched.
func normalize(in StudentInput) StudentInput {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	in.BirthDate = strings.TrimSpace(in.BirthDate)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Program = freeText(in.Program)
	in.Address = freeText(in.Address)

	if in.International != nil {
		intl := InternationalInput{
			OriginCountry: freeText(in.International.OriginCountry),
			VisaNumber:    freeText(in.International.VisaNumber),
		}
		in.International = &intl
	}
	return in
}

func freeText(s string) string {
	return strings.TrimSpace(lineEndings.Replace(s))
}

// NewStudent validates in and returns the resulting Student, stamped with
// the validator's current time. On failure the error is ValidationErrors.
func (v *Validator) NewStudent(in StudentInput) (Student, error) {
	in = normalize(in)

	if err := v.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return Student{}, v.translate(verrs)
		}
		return Student{}, fmt.Errorf("NewStudent: validate: %w", err)
	}

	// Already proven parseable by the birthdate rule.
	birth, err := ParseBirthDate(in.BirthDate)
	if err != nil {
		return Student{}, fmt.Errorf("NewStudent: birth date: %w", err)
	}

	now := v.now()
	s := Student{
		ID:             in.ID,
		Name:           in.Name,
		BirthDate:      FormatBirthDate(birth),
		Age:            AgeAt(birth, dateOnly(now)),
		Email:          in.Email,
		Program:        in.Program,
		EnrollmentYear: in.EnrollmentYear,
		Address:        in.Address,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.International != nil {
		s.International = &InternationalDetails{
			OriginCountry: in.International.OriginCountry,
			VisaNumber:    in.International.VisaNumber,
		}
	}
	return s, nil
}

// Revise is the validated replacement for property setters: edit mutates a
// copy of s's raw input, the result is re-validated, CreatedAt is carried
// over and UpdatedAt bumped. On failure s is returned unchanged together
// with the error, so the caller's value always keeps its prior state.
func (v *Validator) Revise(s Student, edit func(*StudentInput)) (Student, error) {
	in := s.Input()
	edit(&in)

	revised, err := v.NewStudent(in)
	if err != nil {
		return s, err
	}
	revised.CreatedAt = s.CreatedAt
	return revised, nil
}

// FromFields rebuilds a Student from a parsed field mapping. The record is
// international iff it carries a non-empty originCountry. The derived age
// field is ignored; createdAt/updatedAt are kept when they parse as
// RFC 3339.
func (v *Validator) FromFields(f Fields) (Student, error) {
	yearText := strings.TrimSpace(f[FieldEnrollmentYear])
	year, err := strconv.Atoi(yearText)
	if err != nil {
		return Student{}, ValidationErrors{{
			Field:   FieldEnrollmentYear,
			Message: fmt.Sprintf("enrollmentYear must be a number, got %q", yearText),
		}}
	}

	in := StudentInput{
		ID:             f[FieldID],
		Name:           f[FieldName],
		BirthDate:      f[FieldBirthDate],
		Email:          f[FieldEmail],
		Program:        f[FieldProgram],
		EnrollmentYear: year,
		Address:        f[FieldAddress],
	}
	if country := strings.TrimSpace(f[FieldOriginCountry]); country != "" {
		in.International = &InternationalInput{
			OriginCountry: country,
			VisaNumber:    f[FieldVisaNumber],
		}
	}

	s, err := v.NewStudent(in)
	if err != nil {
		return Student{}, err
	}

	if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(f[FieldCreatedAt])); err == nil {
		s.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(f[FieldUpdatedAt])); err == nil {
		s.UpdatedAt = t
	}
	return s, nil
}

// NewStudent validates in against the wall clock.
func NewStudent(in StudentInput) (Student, error) {
	return DefaultValidator.NewStudent(in)
}

// WithName returns a copy of s with a new name.
func (s Student) WithName(name string) (Student, error) {
	return DefaultValidator.Revise(s, func(in *StudentInput) { in.Name = name })
}

// WithBirthDate returns a copy of s with a new birth date; Age is
// recomputed.
func (s Student) WithBirthDate(date string) (Student, error) {
	return DefaultValidator.Revise(s, func(in *StudentInput) { in.BirthDate = date })
}

// WithEmail returns a copy of s with a new email.
func (s Student) WithEmail(email string) (Student, error) {
	return DefaultValidator.Revise(s, func(in *StudentInput) { in.Email = email })
}

// WithProgram returns a copy of s with a new program.
func (s Student) WithProgram(program string) (Student, error) {
	return DefaultValidator.Revise(s, func(in *StudentInput) { in.Program = program })
}

// WithEnrollmentYear returns a copy of s with a new enrollment year.
func (s Student) WithEnrollmentYear(year int) (Student, error) {
	return DefaultValidator.Revise(s, func(in *StudentInput) { in.EnrollmentYear = year })
}

// WithAddress returns a copy of s with a new address.
func (s Student) WithAddress(address string) (Student, error) {
	return DefaultValidator.Revise(s, func(in *StudentInput) { in.Address = address })
}
