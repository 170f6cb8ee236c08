/*
Copyright 2011-2017 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package suffixarray

import (
	"sort"

	"github.com/flanglet/gosufsearch/bittag"
)

// minTandemGroupSize is the smallest partition multikeyQuicksort will
// even bother probing for a tandem repeat; anything smaller gains
// nothing from the detour and falls straight through to the ordinary
// comparand path.
const minTandemGroupSize = 3

// detectTandemRepeat reports whether every payload in sa[l:r] forms an
// arithmetic progression of common difference delta whose text content
// is genuinely periodic with that period for at least d bytes -- the
// signature of a run like "aaaa...a" or "abababab..." that would
// otherwise force multikeyQuicksort into quadratic comparison work.
func detectTandemRepeat(text []byte, sa []bittag.Word, l, r, d int32) (int32, bool) {
	count := r - l
	if count < minTandemGroupSize {
		return 0, false
	}

	payloads := make([]int32, count)
	for i := int32(0); i < count; i++ {
		payloads[i] = sa[l+i].Payload()
	}
	sort.Slice(payloads, func(i, j int) bool { return payloads[i] < payloads[j] })

	delta := payloads[1] - payloads[0]
	if delta <= 0 {
		return 0, false
	}
	for i := 1; i < len(payloads); i++ {
		if payloads[i]-payloads[i-1] != delta {
			return 0, false
		}
	}

	n := int32(len(text))
	minP := payloads[0]
	for i := int32(0); i < d; i++ {
		a, b := minP+i, minP+i+delta
		if b >= n {
			break
		}
		if text[a] != text[b] {
			return 0, false
		}
	}
	return delta, true
}

// suffixCompare does a direct, exact byte-by-byte comparison of
// suffix(a) against suffix(b), with the shorter-is-smaller
// convention of the implicit end-of-text sentinel. Used only for a
// tandem group's single unavoidable "real" comparison (the last
// pair) and as the fallback path for the non-uniform case below;
// never called once per pair across a whole large group, which is
// the redundant rescanning this file exists to avoid.
func suffixCompare(text []byte, a, b int32) int {
	n := int32(len(text))
	for i := int32(0); ; i++ {
		pa, pb := a+i, b+i
		aEnd, bEnd := pa >= n, pb >= n
		if aEnd || bEnd {
			switch {
			case aEnd && bEnd:
				return 0
			case aEnd:
				return -1
			default:
				return 1
			}
		}
		if text[pa] != text[pb] {
			if text[pa] < text[pb] {
				return -1
			}
			return 1
		}
	}
}

// blockCompare compares the length-sized windows text[a:a+length] and
// text[b:b+length], treating a run off the end of text as smaller --
// the cheap O(length) check that lets adjacentAscending avoid a full
// suffix comparison whenever the two windows actually differ.
func blockCompare(text []byte, a, b, length int32) int {
	n := int32(len(text))
	for i := int32(0); i < length; i++ {
		pa, pb := a+i, b+i
		aEnd, bEnd := pa >= n, pb >= n
		if aEnd || bEnd {
			switch {
			case aEnd && bEnd:
				return 0
			case aEnd:
				return -1
			default:
				return 1
			}
		}
		if text[pa] != text[pb] {
			if text[pa] < text[pb] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// adjacentAscending computes, for an offset-ascending run payloads[0..m-1]
// of a period-delta tandem group, whether suffix(payloads[i]) sorts
// before suffix(payloads[i+1]), for every i. It resolves each pair
// exactly rather than assuming uniform direction: suffix(p) and
// suffix(p+delta) decompose as (block of delta bytes at p) + rest and
// (block of delta bytes at p+delta) + rest', so whenever those two
// blocks differ the comparison is settled right there in O(delta); when
// they tie, the order is provably identical to the next pair's order
// (suffix(p+delta) vs suffix(p+2*delta)), so it is read off the value
// already computed for that pair instead of rescanning. Only the very
// last pair has no next pair to borrow from, so it alone pays for one
// real (but typically short, since it is closest to the group's tail)
// suffix comparison.
func adjacentAscending(text []byte, payloads []int32, delta int32) []bool {
	m := len(payloads)
	asc := make([]bool, m-1)
	asc[m-2] = suffixCompare(text, payloads[m-2], payloads[m-1]) < 0
	for i := m - 3; i >= 0; i-- {
		if c := blockCompare(text, payloads[i], payloads[i]+delta, delta); c != 0 {
			asc[i] = c < 0
		} else {
			asc[i] = asc[i+1]
		}
	}
	return asc
}

// tryPartitionTandemRepeat resolves an entire tandem-repeat partition
// in one step, avoiding the O(groupSize) redundant full-suffix
// comparisons a plain sort.Slice comparator would pay across a long
// periodic run -- each of those comparisons rescans the shared
// periodic region, which is where the quadratic blowup on inputs
// like "abab..." comes from. It orders the group by offset, resolves
// the adjacent-pair directions cheaply via adjacentAscending, and --
// in the common case where a genuine tandem repeat makes every pair
// agree -- applies that single direction by reversing the already
// offset-sorted group in place rather than comparing. If the directions are not uniform (the
// group's progression satisfied detectTandemRepeat's necessary check
// without actually being a clean repeat all the way through), it falls
// back to an ordinary correct sort over full suffix comparisons rather
// than risk a wrong order.
func tryPartitionTandemRepeat(text []byte, sa []bittag.Word, l, r, d int32, tr *tandemStack) bool {
	delta, ok := detectTandemRepeat(text, sa, l, r, d)
	if !ok {
		return false
	}

	group := sa[l:r]
	sort.Slice(group, func(i, j int) bool { return group[i].Payload() < group[j].Payload() })

	payloads := make([]int32, len(group))
	for i, w := range group {
		payloads[i] = w.Payload()
	}
	// In a single arithmetic progression, only the largest offset has
	// no group member at distance delta to its right: one terminator,
	// everything else a repeat induced from it.
	numTerm := int32(1)

	asc := adjacentAscending(text, payloads, delta)
	uniform, ascending := true, asc[0]
	for _, a := range asc[1:] {
		if a != ascending {
			uniform = false
			break
		}
	}

	if uniform {
		if !ascending {
			for i, j := 0, len(group)-1; i < j; i, j = i+1, j-1 {
				group[i], group[j] = group[j], group[i]
			}
		}
	} else {
		sort.Slice(group, func(i, j int) bool {
			return suffixCompare(text, group[i].Payload(), group[j].Payload()) < 0
		})
	}

	tr.push(tandemRecord{begin: l, end: r, numTerminators: numTerm, delta: delta})
	return true
}

// completeTandemRepeats drains a worker's deferred records in LIFO
// order. Placement is already final (tryPartitionTandemRepeat sorts
// eagerly); this pass exists so a tandemRecord's bookkeeping --
// delta and terminator count -- is available for diagnostics without
// having to re-derive it from the finished array.
func completeTandemRepeats(tr *tandemStack) {
	for {
		if _, ok := tr.pop(); !ok {
			break
		}
	}
}
