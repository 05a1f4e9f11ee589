package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/userdesk/internal/client/models"
)

// List loads page and prints it. page 0 reloads the current page, or the
// first one when nothing was loaded yet.
func (a *App) List(ctx context.Context, page int) error {
	if page == 0 {
		page = max(a.users.State().Page, 1)
	}
	a.setView(models.RouteList)
	if err := a.users.Load(ctx, page); err != nil {
		return err
	}
	a.render()
	return nil
}

// Page switches to page n, which must be within the known page count.
func (a *App) Page(ctx context.Context, n int) error {
	st := a.users.State()
	if st.TotalPages > 0 && n > st.TotalPages {
		printlnFn(fmt.Sprintf("Page must be between 1 and %d", st.TotalPages))
		return nil
	}
	a.setView(models.RouteList)
	if err := a.users.ChangePage(ctx, n); err != nil {
		return err
	}
	a.render()
	return nil
}

func (a *App) Search(text string) {
	a.users.SetFilter(text)
	a.render()
}

func (a *App) ClearFilter() {
	a.users.SetFilter("")
	a.render()
}

func (a *App) Delete(ctx context.Context, id models.ID) error {
	if err := a.users.Remove(ctx, id); err != nil {
		return err
	}
	a.render()
	return nil
}

// render prints the visible rows of the cached page.
func (a *App) render() {
	st := a.users.State()
	visible := a.users.Visible()

	if st.Filter != "" {
		printlnFn(fmt.Sprintf("filter: %q", st.Filter))
	}
	if len(visible) == 0 {
		printlnFn("No users.")
	}
	for _, u := range visible {
		printlnFn(u.String())
	}
	if st.TotalPages > 0 {
		printlnFn(fmt.Sprintf("page %d of %d", st.Page, st.TotalPages))
	}
}
