package minicheck

import (
	"fmt"
	"io"
	"os"
)

// Auditor is the surface the Driver needs from either auditor kind.
type Auditor interface {
	// Check returns whether the audited operation looks correct.
	Check() (bool, error)

	// Reset prepares the auditor for another run.
	Reset()
}

// ChangeReporter is the surface the Driver needs from a manipulator.
type ChangeReporter interface {
	MadeChanges() bool
}

// Driver couples one auditor with one manipulator and reduces an
// experimental run to a single pass/fail bit: the run succeeds iff the
// auditor's detection matches whether corruption was actually injected.
// Either a false positive (clean run flagged) or a missed detection is a
// Driver failure.
//
// A Driver holds non-owning references; create one per run, or call Reset
// between runs when reusing the auditor.
type Driver struct {
	auditor Auditor
	manip   ChangeReporter
	out     io.Writer
	silent  bool
}

// NewDriver binds an auditor and a manipulator. Diagnostics go to stderr
// unless silenced.
func NewDriver(auditor Auditor, manip ChangeReporter) *Driver {
	return &Driver{auditor: auditor, manip: manip, out: os.Stderr}
}

// Silence suppresses per-run diagnostics, for high-repetition statistical
// experiments.
func (d *Driver) Silence() { d.silent = true }

// Reset resets the underlying auditor for run reuse.
func (d *Driver) Reset() { d.auditor.Reset() }

// Check triggers the auditor's collective check and compares its verdict
// against the manipulator's record of whether it corrupted anything.
// Collective: every rank's Driver must call Check in lock-step.
func (d *Driver) Check() (bool, error) {
	ok, err := d.auditor.Check()
	if err != nil {
		return false, err
	}
	detected := !ok
	injected := d.manip.MadeChanges()
	success := detected == injected
	if !success && !d.silent {
		if detected {
			fmt.Fprintln(d.out, "minicheck: driver failure: auditor flagged an unmanipulated run (false positive)")
		} else {
			fmt.Fprintln(d.out, "minicheck: driver failure: auditor missed an injected manipulation")
		}
	}
	return success, nil
}
