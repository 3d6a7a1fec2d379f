package pricing

import "time"

// Escalator prices a pending action higher the longer it has been waiting.
// With a fresh oracle sample it starts from fast*1.1 and adds Step every
// minute up to fast*1.1+Cap. Without one it runs a pure time-based ramp
// from Initial by Increase every Every, bounded by Max.
type Escalator struct {
	source Source

	// live-sample branch
	Step int64
	Cap  int64

	// fallback branch
	Initial  int64
	Increase int64
	Every    time.Duration
	Max      int64
}

// NewEscalator returns an escalator with the reference increments. source
// may be nil, in which case the fallback branch always applies.
func NewEscalator(source Source) *Escalator {
	return &Escalator{
		source:   source,
		Step:     10 * Unit,
		Cap:      50 * Unit,
		Initial:  20 * Unit,
		Increase: 10 * Unit,
		Every:    60 * time.Second,
		Max:      100 * Unit,
	}
}

// Price returns the price to offer after elapsed time, in native units. It
// is monotonically non-decreasing in elapsed for a fixed sample and never
// fails: a missing sample selects the fallback branch.
func (e *Escalator) Price(elapsed time.Duration) int64 {
	if e.source != nil {
		if fast, ok := e.source.FastPrice(); ok {
			base := fast * 11 / 10
			steps := int64(elapsed / time.Minute)
			return min(base+steps*e.Step, base+e.Cap)
		}
	}
	steps := int64(elapsed / e.Every)
	return min(e.Initial+steps*e.Increase, e.Max)
}
