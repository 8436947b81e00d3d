package atlas

import "testing"

// TestSentinelErrors exercises every §7 taxonomy sentinel the way
// gogpu-gg's own TestErrors does for its backend error values: each is
// checked for a non-nil, non-empty message. ErrDeviceLost has no call site
// of its own (see DESIGN.md) since nothing in this tree detects device loss
// yet, but it is still part of the published taxonomy and should never
// silently go nil or empty.
func TestSentinelErrors(t *testing.T) {
	errs := []struct {
		name string
		err  error
	}{
		{"ErrCapacityExceeded", ErrCapacityExceeded},
		{"ErrFinalizeEmpty", ErrFinalizeEmpty},
		{"ErrPhaseViolation", ErrPhaseViolation},
		{"ErrDeviceLost", ErrDeviceLost},
	}
	for _, e := range errs {
		if e.err == nil {
			t.Errorf("%s is nil", e.name)
			continue
		}
		if e.err.Error() == "" {
			t.Errorf("%s.Error() is empty", e.name)
		}
	}
}
