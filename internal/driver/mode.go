package driver

import "math"

const rateEpsilon = 0.1

// NTSC-adjacent rates that count as a match for their nominal rate.
var nominalRates = map[float64]float64{
	24.0: 23.98,
	30.0: 29.97,
	60.0: 59.94,
}

// RateMatches reports whether an advertised frame rate satisfies a requested
// one. Requests for whole NTSC rates (24, 30, 60) also accept their
// fractional broadcast variants (23.98, 29.97, 59.94).
func RateMatches(requested, actual float64) bool {
	if math.Abs(actual-requested) < rateEpsilon {
		return true
	}
	if frac, ok := nominalRates[requested]; ok {
		return math.Abs(actual-frac) < rateEpsilon
	}
	return false
}

// Match finds the mode among supported that satisfies want: exact width and
// height, frame rate per RateMatches. The boolean is false when nothing
// matches.
func Match(supported []Mode, want Mode) (Mode, bool) {
	for _, m := range supported {
		if m.Width != want.Width || m.Height != want.Height {
			continue
		}
		if RateMatches(want.FrameRate, m.FrameRate) {
			return m, true
		}
	}
	return Mode{}, false
}
