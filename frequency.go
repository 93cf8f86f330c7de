package evds

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Frequency is the service's ordinal frequency code.
type Frequency int

const (
	FreqUnknown    Frequency = 0
	FreqDaily      Frequency = 1
	FreqWorkday    Frequency = 2
	FreqWeekly     Frequency = 3
	FreqBiweekly   Frequency = 4
	FreqMonthly    Frequency = 5
	FreqQuarterly  Frequency = 6
	FreqSemiannual Frequency = 7
	FreqAnnual     Frequency = 8
)

// nativeFreq maps the service's Turkish frequency vocabulary to ordinal
// codes. The table is a process-wide constant; it is not fetched.
var nativeFreq = map[string]Frequency{
	"GUNLUK":    FreqDaily,
	"ISGUNU":    FreqWorkday,
	"HAFTALIK":  FreqWeekly,
	"AYDA2KEZ":  FreqBiweekly,
	"AYLIK":     FreqMonthly,
	"UCAYLIK":   FreqQuarterly,
	"ALTIAYLIK": FreqSemiannual,
	"YILLIK":    FreqAnnual,
}

var freqLabels = map[Frequency]string{
	FreqDaily:      "Day",
	FreqWorkday:    "Work day",
	FreqWeekly:     "Week",
	FreqBiweekly:   "Biweekly",
	FreqMonthly:    "Month",
	FreqQuarterly:  "Quarter",
	FreqSemiannual: "Six months",
	FreqAnnual:     "Year",
}

// String returns the human-readable frequency label.
func (f Frequency) String() string {
	if label, ok := freqLabels[f]; ok {
		return label
	}
	return "Unknown"
}

// collapseWeekly normalizes the freeform weekly variants the series listings
// carry ("HAFTALIK(CUMA)", "HAFTALIK_SON" and friends) to the canonical
// weekly label before the ordinal remap.
func collapseWeekly(native string) string {
	if strings.HasPrefix(native, "HAFTALIK") {
		return "HAFTALIK"
	}
	return native
}

// freqFromNative remaps a native frequency label to its ordinal code.
// Unrecognized labels yield FreqUnknown.
func freqFromNative(native string) Frequency {
	return nativeFreq[collapseWeekly(strings.TrimSpace(native))]
}

// Request-parameter vocabularies, validated before a URL is built.
var (
	aggMethods   = sets.New("avg", "first", "last", "max", "min", "sum")
	requestFreqs = sets.New(1, 2, 3, 4, 5, 6, 7, 8)
)

func validAggMethod(agg string) error {
	if !aggMethods.Has(agg) {
		return fmt.Errorf("%w: aggregation %q (want one of %v)", ErrBadRequestParam, agg, sets.List(aggMethods))
	}
	return nil
}

func validRequestFreq(freq int) error {
	if !requestFreqs.Has(freq) {
		return fmt.Errorf("%w: frequency %d (want 1..8)", ErrBadRequestParam, freq)
	}
	return nil
}
