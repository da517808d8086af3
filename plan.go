package repcat

import (
	reperrors "repcat/errors"
)

// Plan describes the full output layout for one run. It is computed once,
// upfront, from the source lengths and the repeat counts, and is immutable
// afterwards. Every destination offset the engine ever writes to is derived
// from a Plan, which makes the schedule a bijection over [0, Size()).
type Plan struct {
	sizes      []int64 // per-source byte lengths, in source order
	prefix     []int64 // prefix[i] = sum of sizes[0:i]; len = len(sizes)+1
	repeatEach int
	repeatAll  int
	passLen    int64 // bytes of one full pass: sum(sizes) * repeatEach
	total      int64
}

// PlanLayout computes the output layout for the given source lengths and
// repeat counts. sizes must be in source order; repeatEach and repeatAll
// must be positive. The plan is pure bookkeeping: no file is touched.
func PlanLayout(sizes []int64, repeatEach, repeatAll int) (*Plan, error) {
	if len(sizes) == 0 {
		return nil, reperrors.ErrNoSources
	}
	if repeatEach < 1 || repeatAll < 1 {
		return nil, reperrors.ErrZeroRepeat
	}

	p := &Plan{
		sizes:      append([]int64(nil), sizes...),
		prefix:     make([]int64, len(sizes)+1),
		repeatEach: repeatEach,
		repeatAll:  repeatAll,
	}
	for i, sz := range p.sizes {
		if sz < 0 {
			return nil, reperrors.ErrNegativeSourceSize
		}
		p.prefix[i+1] = p.prefix[i] + sz
	}
	p.passLen = p.prefix[len(sizes)] * int64(repeatEach)
	p.total = p.passLen * int64(repeatAll)
	return p, nil
}

// Size returns the total output size in bytes.
func (p *Plan) Size() int64 { return p.total }

// NumSources returns the number of sources covered by the plan.
func (p *Plan) NumSources() int { return len(p.sizes) }

// SourceSize returns the byte length of source src.
func (p *Plan) SourceSize(src int) int64 { return p.sizes[src] }

// RepeatEach returns the per-source repeat count.
func (p *Plan) RepeatEach() int { return p.repeatEach }

// RepeatAll returns the whole-sequence repeat count.
func (p *Plan) RepeatAll() int { return p.repeatAll }

// Offset maps a (pass, source, repetition, intra-source offset) tuple to the
// absolute destination offset in the output:
//
//	pass*(sum*each) + prefix[src]*each + rep*len[src] + off
//
// pass ranges over [0, repeatAll), rep over [0, repeatEach), and off over
// [0, SourceSize(src)). For distinct valid tuples the results never overlap.
func (p *Plan) Offset(pass, src, rep int, off int64) int64 {
	return int64(pass)*p.passLen +
		p.prefix[src]*int64(p.repeatEach) +
		int64(rep)*p.sizes[src] +
		off
}
