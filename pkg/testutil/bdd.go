package testutil

import "testing"

// Given, When, Then and And nest subtests so a scenario reads top to bottom in
// `go test -v` output, e.g.
//
//	Given_a_reviewer_with_thousands_of_reviews/When_the_host_runs_the_erasers/Then_no_review_is_left
func Given(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "Given", desc, fn)
}

func When(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "When", desc, fn)
}

func Then(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "Then", desc, fn)
}

// And adds a further check at the level of the preceding step.
func And(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "And", desc, fn)
}

func step(t *testing.T, keyword, desc string, fn func(t *testing.T)) {
	t.Helper()
	if !t.Run(keyword+" "+desc, fn) {
		t.Logf("%s %s: failed", keyword, desc)
	}
}
