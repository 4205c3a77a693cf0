// driver_test.go tests the Driver truth table: a run succeeds iff the
// auditor's detection matches whether the manipulator actually corrupted
// anything.
package minicheck

import (
	"bytes"
	"errors"
	"testing"
)

// stubAuditor is a canned-verdict auditor.
type stubAuditor struct {
	verdict bool
	err     error
	resets  int
}

func (s *stubAuditor) Check() (bool, error) { return s.verdict, s.err }
func (s *stubAuditor) Reset()               { s.resets++ }

// stubManip reports a fixed made-changes flag.
type stubManip struct {
	changed bool
}

func (s stubManip) MadeChanges() bool { return s.changed }

func TestDriverTruthTable(t *testing.T) {
	cases := []struct {
		name        string
		auditorOK   bool
		madeChanges bool
		want        bool
	}{
		{"clean run, auditor passes", true, false, true},
		{"corrupted run, auditor catches it", false, true, true},
		{"clean run, false positive", false, false, false},
		{"corrupted run, missed detection", true, true, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := NewDriver(&stubAuditor{verdict: c.auditorOK}, stubManip{changed: c.madeChanges})
			d.Silence()
			got, err := d.Check()
			if err != nil {
				t.Fatal(err)
			}
			if got != c.want {
				t.Errorf("Driver.Check() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestDriverPropagatesAuditorError(t *testing.T) {
	sentinel := errors.New("collective failure")
	d := NewDriver(&stubAuditor{err: sentinel}, stubManip{})
	d.Silence()
	if _, err := d.Check(); !errors.Is(err, sentinel) {
		t.Errorf("expected auditor error to propagate, got %v", err)
	}
}

func TestDriverResetForwardsToAuditor(t *testing.T) {
	a := &stubAuditor{verdict: true}
	d := NewDriver(a, stubManip{})
	d.Reset()
	d.Reset()
	if a.resets != 2 {
		t.Errorf("expected 2 auditor resets, got %d", a.resets)
	}
}

func TestDriverDiagnostics(t *testing.T) {
	var buf bytes.Buffer

	// Failure is reported unless silenced.
	d := NewDriver(&stubAuditor{verdict: true}, stubManip{changed: true})
	d.out = &buf
	if ok, _ := d.Check(); ok {
		t.Fatal("missed detection should fail")
	}
	if buf.Len() == 0 {
		t.Error("driver failure should be reported")
	}

	buf.Reset()
	d.Silence()
	if ok, _ := d.Check(); ok {
		t.Fatal("missed detection should fail")
	}
	if buf.Len() != 0 {
		t.Errorf("silenced driver wrote diagnostics: %q", buf.String())
	}
}
