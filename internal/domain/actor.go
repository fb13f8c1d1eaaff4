package domain

// Actor identifies the platform user behind an inbound event. Identity is
// opaque to the core; the Staff capability (designated support role or
// elevated management permission) is evaluated by the platform and passed
// through.
type Actor struct {
	ID    string
	Name  string
	Staff bool
}
