package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/userdesk/internal/client/gate"
	"github.com/dmitrijs2005/userdesk/internal/client/models"
	"github.com/dmitrijs2005/userdesk/internal/client/useredit"
)

type editField struct {
	name  string
	label string
	get   func(models.User) string
}

var editFields = []editField{
	{useredit.FieldFirstName, "First name", func(u models.User) string { return u.FirstName }},
	{useredit.FieldLastName, "Last name", func(u models.User) string { return u.LastName }},
	{useredit.FieldEmail, "Email", func(u models.User) string { return u.Email }},
	{useredit.FieldAvatar, "Avatar URL", func(u models.User) string { return u.Avatar }},
}

// Edit opens id in the editor. The cached row seeds the draft when id is on
// the current page. Each field is prompted with its current value; an empty
// answer keeps it. Invalid drafts can be corrected or abandoned.
func (a *App) Edit(ctx context.Context, id models.ID) error {
	var seed *models.User
	if u, ok := a.users.Find(id); ok {
		seed = &u
	}

	a.setView(models.RouteEdit)
	if err := a.edit.Initialize(ctx, id, seed); err != nil && a.decision() != gate.Allow {
		return err
	}

	for {
		if err := a.promptFields(); err != nil {
			a.edit.Cancel()
			return err
		}

		err := a.edit.Submit(ctx)
		if err == nil {
			return nil
		}

		var verr *useredit.ValidationError
		if !errors.As(err, &verr) {
			if a.decision() != gate.Allow {
				return err
			}
			if !a.confirm("Retry?") {
				a.edit.Cancel()
				return err
			}
			continue
		}

		printFieldErrors(verr.Fields)
		if !a.confirm("Fix and try again?") {
			a.edit.Cancel()
			return err
		}
	}
}

func (a *App) promptFields() error {
	draft := a.edit.State().Draft
	printlnFn(fmt.Sprintf("Editing user %s (Enter keeps the current value)", draft.ID))

	for _, f := range editFields {
		v, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s]", f.label, f.get(draft)), a.out)
		if err != nil {
			return err
		}
		if v == "" {
			continue
		}
		if err := a.edit.SetField(f.name, v); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) confirm(prompt string) bool {
	answer, err := getSimpleText(a.reader, prompt+" (y/n)", a.out)
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

func printFieldErrors(fields map[string]string) {
	names := make([]string, 0, len(fields))
	for n := range fields {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		printlnFn(fmt.Sprintf("  %s: %s", n, fields[n]))
	}
}
