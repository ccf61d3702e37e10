// Package rcalltest is a small worked example exercising every call shape
// rcall supports: a plain function, a function with an in-out vector
// parameter and a tuple return, a function with an in-out map, a function
// taking an existing remote instance's handle as an input parameter, and a
// class with three methods. It is meant to be read end to end as the
// reference for how to hand-wire a declaration binding (§4.8) on both
// sides of a connection.
package rcalltest

// ABC is the worked example's one user-defined serializable type: two
// exported fields round-trip through the generic struct codec with no
// special-casing required.
type ABC struct {
	S string
	N int32
}
