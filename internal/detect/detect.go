package detect

import (
	"errors"
	"fmt"

	"casewatch/internal/components/telemetry"
)

const (
	report_detect_compare = "detect.compare"
)

// TrackedCount is the number of leading counters compared between runs,
// the tests-in-progress counter is not tracked.
const TrackedCount = 3

var ErrNoPrevious = errors.New("no previous entry to compare against")

type Delta struct {
	Confirm   int
	Discharge int
	Death     int
}

type Detection struct {
	Delta   Delta
	Changed bool
	// Err is set when no comparison was possible, in which case Changed is
	// always false.
	Err error
}

// Compare computes the delta between the previous and current counters. It
// never fails the run: an impossible comparison is reported and yields an
// unchanged Detection with Err set.
func Compare(previous []int, hasPrevious bool, current []int, tel telemetry.API) Detection {
	var err error
	switch {
	case !hasPrevious:
		err = ErrNoPrevious
	case len(previous) < TrackedCount:
		err = fmt.Errorf("previous entry has %d values, expected at least %d", len(previous), TrackedCount)
	case len(current) < TrackedCount:
		err = fmt.Errorf("current entry has %d values, expected at least %d", len(current), TrackedCount)
	}
	if err != nil {
		tel.ReportWarning(report_detect_compare, err)
		return Detection{Err: err}
	}

	delta := Delta{
		Confirm:   current[0] - previous[0],
		Discharge: current[1] - previous[1],
		Death:     current[2] - previous[2],
	}
	return Detection{
		Delta:   delta,
		Changed: delta != Delta{},
	}
}
