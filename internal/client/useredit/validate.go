package useredit

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dmitrijs2005/userdesk/internal/client/models"
)

const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
	FieldAvatar    = "avatar"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidationError lists the fields that block a submit, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", n, e.Fields[n]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks a draft. It returns an empty map when the draft is valid.
func Validate(u models.User) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(u.FirstName) == "" {
		errs[FieldFirstName] = "First name is required"
	}
	if strings.TrimSpace(u.LastName) == "" {
		errs[FieldLastName] = "Last name is required"
	}

	email := strings.TrimSpace(u.Email)
	switch {
	case email == "":
		errs[FieldEmail] = "Email is required"
	case !emailPattern.MatchString(email):
		errs[FieldEmail] = "Email is invalid"
	}

	return errs
}
