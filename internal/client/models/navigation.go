package models

import (
	"fmt"
	"time"
)

// Route names a top-level view of the client.
type Route string

const (
	RouteLogin Route = "login"
	RouteList  Route = "list"
	RouteEdit  Route = "edit"
)

// Intent asks the hosting UI to switch views, optionally after Delay.
type Intent struct {
	Target Route
	Delay  time.Duration
}

func (i Intent) String() string {
	if i.Delay > 0 {
		return fmt.Sprintf("goto(%s) after %s", i.Target, i.Delay)
	}
	return fmt.Sprintf("goto(%s)", i.Target)
}

// Navigator receives navigation intents. The engine never navigates itself.
type Navigator interface {
	Navigate(Intent)
}

// NavigatorFunc adapts a plain function to Navigator.
type NavigatorFunc func(Intent)

func (f NavigatorFunc) Navigate(i Intent) { f(i) }
