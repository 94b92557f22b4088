package session

import "time"

// Route is where the guard sends the user.
type Route int

const (
	// RouteLogin is the login view.
	RouteLogin Route = iota
	// RouteTasks is the task list view.
	RouteTasks
)

// String returns the route name.
func (r Route) String() string {
	if r == RouteTasks {
		return "tasks"
	}
	return "login"
}

// Path returns the web path of the route.
func (r Route) Path() string {
	if r == RouteTasks {
		return "/todos"
	}
	return "/login"
}

// Current loads the stored session and checks it is usable at now.
func Current(store Store, now time.Time) (*Session, error) {
	s, err := store.Load()
	if err != nil {
		return nil, err
	}
	if err := s.Check(now); err != nil {
		return nil, err
	}
	return s, nil
}

// Guard decides the landing view: the task list when a usable session is
// stored, the login view otherwise.
func Guard(store Store, now time.Time) Route {
	if _, err := Current(store, now); err != nil {
		return RouteLogin
	}
	return RouteTasks
}
