// Package bins implements bin schemes: definitions of how to slice a data
// field into intervals, and the expansion of a list of schemes into the flat
// list of "leaf bins" (one fully independent bin combination per entry) that
// the resolver fans descriptors out over. The package never touches data;
// evaluating a bin against loaded columns is a downstream concern.
package bins

import (
	"fmt"
	"math"
	"strings"
)

// SingleBin is one resolved bin: a half-open [Low, High) selection on Field.
// ShortName is a compact tag suitable for output file names.
type SingleBin struct {
	Field     string
	Low       float64
	High      float64
	ShortName string
}

// Scheme is one axis of binning: anything that can produce an ordered list
// of SingleBins over one field.
type Scheme interface {
	Field() string
	Bins() []SingleBin
}

// List is a bin scheme defined by explicit interval endpoints.
type List struct {
	field     string
	endpoints []float64
}

// NewList builds a List scheme. Endpoints must be strictly increasing and at
// least two.
func NewList(field string, endpoints []float64) (*List, error) {
	if field == "" {
		return nil, fmt.Errorf("bin list: field must not be empty")
	}
	if len(endpoints) < 2 {
		return nil, fmt.Errorf("bin list on %q: need at least two endpoints, got %d", field, len(endpoints))
	}
	for i := 1; i < len(endpoints); i++ {
		if endpoints[i] <= endpoints[i-1] {
			return nil, fmt.Errorf("bin list on %q: endpoints must be strictly increasing at position %d", field, i)
		}
	}
	return &List{field: field, endpoints: endpoints}, nil
}

// Field returns the field the scheme bins on.
func (l *List) Field() string { return l.field }

// Bins returns one SingleBin per consecutive endpoint pair.
func (l *List) Bins() []SingleBin {
	out := make([]SingleBin, 0, len(l.endpoints)-1)
	for i := 0; i+1 < len(l.endpoints); i++ {
		out = append(out, SingleBin{
			Field:     l.field,
			Low:       l.endpoints[i],
			High:      l.endpoints[i+1],
			ShortName: shortName(l.field, i),
		})
	}
	return out
}

// Step is a bin scheme defined by a regular stepping between Low and High,
// optionally in log space. Exactly one of the four quantities low, high,
// step, nBins may be left for the constructor to derive.
type Step struct {
	field  string
	low    float64
	high   float64
	step   float64
	nBins  int
	useLog bool
}

// NewStep builds a Step scheme from any three of low, high, step and nBins
// (nil meaning "derive this one"). With useLog the stepping is uniform in
// log10 space and low must be positive.
func NewStep(field string, low, high, step *float64, nBins *int, useLog bool) (*Step, error) {
	if field == "" {
		return nil, fmt.Errorf("bin step: field must not be empty")
	}
	given := 0
	for _, ok := range []bool{low != nil, high != nil, step != nil, nBins != nil} {
		if ok {
			given++
		}
	}
	if given < 3 {
		return nil, fmt.Errorf("bin step on %q: need at least three of low, high, step, n_bins", field)
	}
	s := &Step{field: field, useLog: useLog}
	lo, hi := 0.0, 0.0
	if low != nil {
		lo = *low
	}
	if high != nil {
		hi = *high
	}
	if useLog {
		if low != nil {
			if lo <= 0 {
				return nil, fmt.Errorf("bin step on %q: log binning requires low > 0", field)
			}
			lo = math.Log10(lo)
		}
		if high != nil {
			if hi <= 0 {
				return nil, fmt.Errorf("bin step on %q: log binning requires high > 0", field)
			}
			hi = math.Log10(hi)
		}
	}
	switch {
	case low == nil:
		s.step, s.nBins = *step, *nBins
		s.high = hi
		s.low = hi - float64(s.nBins)*s.step
	case high == nil:
		s.step, s.nBins = *step, *nBins
		s.low = lo
		s.high = lo + float64(s.nBins)*s.step
	case step == nil:
		s.nBins = *nBins
		if s.nBins <= 0 {
			return nil, fmt.Errorf("bin step on %q: n_bins must be positive", field)
		}
		s.low, s.high = lo, hi
		s.step = (hi - lo) / float64(s.nBins)
	default:
		s.low, s.high = lo, hi
		s.step = *step
		s.nBins = int(math.Round((hi - lo) / s.step))
	}
	if s.step <= 0 || s.nBins <= 0 || s.high <= s.low {
		return nil, fmt.Errorf("bin step on %q: inconsistent definition (low=%v high=%v step=%v n_bins=%d)", field, s.low, s.high, s.step, s.nBins)
	}
	return s, nil
}

// Field returns the field the scheme bins on.
func (s *Step) Field() string { return s.field }

// Bins returns the nBins regular intervals, back in linear space when the
// scheme is logarithmic.
func (s *Step) Bins() []SingleBin {
	out := make([]SingleBin, 0, s.nBins)
	for i := 0; i < s.nBins; i++ {
		lo := s.low + float64(i)*s.step
		hi := lo + s.step
		if s.useLog {
			lo = math.Pow(10, lo)
			hi = math.Pow(10, hi)
		}
		out = append(out, SingleBin{
			Field:     s.field,
			Low:       lo,
			High:      hi,
			ShortName: shortName(s.field, i),
		})
	}
	return out
}

// Expand builds the eager Cartesian product of leaf bins across schemes: one
// entry per combination, each holding exactly one SingleBin per scheme, with
// the first scheme varying slowest. Expanding no schemes yields no entries.
func Expand(schemes []Scheme) [][]SingleBin {
	if len(schemes) == 0 {
		return nil
	}
	combos := [][]SingleBin{{}}
	for _, scheme := range schemes {
		next := make([][]SingleBin, 0, len(combos)*len(scheme.Bins()))
		for _, combo := range combos {
			for _, b := range scheme.Bins() {
				row := make([]SingleBin, len(combo), len(combo)+1)
				copy(row, combo)
				next = append(next, append(row, b))
			}
		}
		combos = next
	}
	return combos
}

func shortName(field string, i int) string {
	clean := strings.ReplaceAll(field, " ", "")
	return fmt.Sprintf("%s_%d", clean, i)
}
