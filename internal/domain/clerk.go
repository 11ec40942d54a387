package domain

// Clerk is the authenticated identity performing a checkout, resolved at the
// session boundary and passed into the core by value.
type Clerk struct {
	ID   int64
	Name string
}
