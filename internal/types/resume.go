package types

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Website is the personal website shown in the header contact row.
type Website struct {
	Name string `json:"name,omitempty"`
	Link string `json:"link,omitempty" validate:"omitempty,url"`
}

// Personal holds the header block of a resume.
type Personal struct {
	Name     string  `json:"name" validate:"required"`
	Headline string  `json:"headline,omitempty"`
	Email    string  `json:"email" validate:"required,email"`
	Location string  `json:"location,omitempty"`
	Website  Website `json:"website"`
}

// Socials holds optional social profile links.
type Socials struct {
	LinkedIn string `json:"linkedIn,omitempty" validate:"omitempty,url"`
	GitHub   string `json:"github,omitempty" validate:"omitempty,url"`
	Twitter  string `json:"twitter,omitempty" validate:"omitempty,url"`
}

// Experience is a single employment entry. An empty EndDate means the role is current.
type Experience struct {
	Title       string `json:"title" validate:"required"`
	Company     string `json:"company" validate:"required"`
	StartDate   string `json:"startDate" validate:"required"`
	EndDate     string `json:"endDate,omitempty"`
	Description string `json:"description,omitempty"`
}

// Education is a single education entry.
type Education struct {
	Degree      string `json:"degree" validate:"required"`
	Institution string `json:"institution" validate:"required"`
	StartDate   string `json:"startDate" validate:"required"`
	EndDate     string `json:"endDate,omitempty"`
}

// Skills groups programming languages and free keywords.
type Skills struct {
	ProgrammingLanguages StringList `json:"programmingLanguages" validate:"min=1"`
	Keywords             StringList `json:"keywords"`
}

// Certification is a single certification entry.
type Certification struct {
	Name                string `json:"name" validate:"required"`
	IssuingOrganization string `json:"issuingOrganization" validate:"required"`
	Date                string `json:"date" validate:"required"`
}

// Award is a single award entry.
type Award struct {
	Title       string `json:"title" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Description string `json:"description,omitempty"`
}

// Project is a single project entry.
type Project struct {
	Title        string     `json:"title" validate:"required"`
	Description  string     `json:"description,omitempty"`
	Technologies StringList `json:"technologies"`
}

// Reference is a single professional reference.
type Reference struct {
	Name    string `json:"name" validate:"required"`
	Title   string `json:"title" validate:"required"`
	Company string `json:"company" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,phone"`
}

// ResumeRecord is the normalized, validated resume consumed by renderers and the layout
// estimator. Consumers treat it as read-only.
type ResumeRecord struct {
	Personal       Personal        `json:"personal"`
	Socials        Socials         `json:"socials"`
	Summary        string          `json:"summary,omitempty"`
	Experience     []Experience    `json:"experience" validate:"dive"`
	Education      []Education     `json:"education" validate:"dive"`
	Skills         Skills          `json:"skills"`
	Languages      StringList      `json:"languages"`
	Interests      StringList      `json:"interests"`
	Certifications []Certification `json:"certifications" validate:"dive"`
	Awards         []Award         `json:"awards" validate:"dive"`
	Projects       []Project       `json:"projects" validate:"dive"`
	References     []Reference     `json:"references" validate:"dive"`
}

// HasSkills reports whether either skills sub-list has entries.
func (r *ResumeRecord) HasSkills() bool {
	return len(r.Skills.ProgrammingLanguages) > 0 || len(r.Skills.Keywords) > 0
}

// Normalize replaces every nil list field with an empty one. List fields decoded from JSON
// are already split by StringList, so Normalize is idempotent.
func (r *ResumeRecord) Normalize() {
	r.Skills.ProgrammingLanguages = StringList(NormalizeListField(r.Skills.ProgrammingLanguages))
	r.Skills.Keywords = StringList(NormalizeListField(r.Skills.Keywords))
	r.Languages = StringList(NormalizeListField(r.Languages))
	r.Interests = StringList(NormalizeListField(r.Interests))
	for i := range r.Projects {
		r.Projects[i].Technologies = StringList(NormalizeListField(r.Projects[i].Technologies))
	}
}

// Validate checks required fields and value formats using the validator.
func (r *ResumeRecord) Validate() error {
	err := recordValidator.Struct(r)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := &ValidationError{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, FieldError{
			Field:   trimNamespace(fe.Namespace()),
			Message: messageFor(fe),
		})
	}
	return out
}

// FieldError is a single failed field constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every constraint a record failed.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "invalid resume record: " + strings.Join(parts, "; ")
}

var phonePattern = regexp.MustCompile(`^[0-9+\-]+$`)

var recordValidator = newRecordValidator()

func newRecordValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("failed to register phone validation: %v", err))
	}
	return v
}

// trimNamespace drops the root struct name from a validator namespace.
func trimNamespace(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "phone":
		return "may only contain digits, '-' and '+'"
	case "min":
		return fmt.Sprintf("must contain at least %s entry", fe.Param())
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}
