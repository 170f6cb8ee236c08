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
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/flanglet/gosufsearch/bittag"
)

// minTandemRepeatLen is the smallest common-prefix length at which a
// partition is even worth probing for a tandem repeat: two sizeof(u32)
// windows plus the 2-byte radix prefix already consumed.
const minTandemRepeatLen = 2 + 2*4

// comparand is the fixed four-byte window read at text[pos+d:pos+d+4],
// encoded so that running past the end of text (code 0) always
// compares smaller than any real byte (codes 1..256).
type comparand [4]int32

func codeAt(text []byte, pos, d int32, i int) int32 {
	idx := int(pos) + int(d) + i
	if idx >= len(text) {
		return 0
	}
	return int32(text[idx]) + 1
}

func comparandAt(text []byte, pos, d int32) comparand {
	return comparand{
		codeAt(text, pos, d, 0),
		codeAt(text, pos, d, 1),
		codeAt(text, pos, d, 2),
		codeAt(text, pos, d, 3),
	}
}

func compareComparand(a, b comparand) int {
	for i := 0; i < 4; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// bstarPartition is one two-byte bucket's B* sub-range, an
// independently sortable unit of work.
type bstarPartition struct {
	l, r int32
}

// multikeyQuicksort sorts every B* sub-range (one per two-byte
// bucket) with the explicit-stack seven-way quicksort; pathological
// inputs drive the partition depth far past what call recursion
// could absorb, so all work frames live on the heap. Partitions are
// independent and are distributed over jobs workers through a shared
// countdown: sorted by size so the large ones are claimed first,
// each worker decrementing an atomic counter until it goes negative.
// Each worker owns a private work stack and tandem-record stack.
func multikeyQuicksort(text []byte, sa []bittag.Word, bt *bucketTable, jobs, insertionThreshold int) {
	var partitions []bstarPartition
	for c := 0; c < 256; c++ {
		for s := 0; s < secondCodes; s++ {
			k := natKey(c, s)
			if l, r := bt.bstarStart[k], bt.bstarEnd[k]; r-l >= 2 {
				partitions = append(partitions, bstarPartition{l, r})
			}
		}
	}
	if len(partitions) == 0 {
		return
	}
	sort.Slice(partitions, func(i, j int) bool {
		return partitions[i].r-partitions[i].l < partitions[j].r-partitions[j].l
	})

	if jobs > len(partitions) {
		jobs = len(partitions)
	}
	if jobs < 1 {
		jobs = 1
	}

	remaining := int32(len(partitions))
	var grp errgroup.Group
	for w := 0; w < jobs; w++ {
		grp.Go(func() error {
			stk := newQsStack(64)
			tr := &tandemStack{}
			for {
				i := atomic.AddInt32(&remaining, -1)
				if i < 0 {
					break
				}
				p := partitions[i]
				stk.push(p.l, p.r, 2)
				for {
					frame, ok := stk.pop()
					if !ok {
						break
					}
					sortFrame(text, sa, frame, stk, tr, insertionThreshold)
				}
			}
			completeTandemRepeats(tr)
			return nil
		})
	}
	_ = grp.Wait()
}

func sortFrame(text []byte, sa []bittag.Word, frame qsFrame, stk *qsStack, tr *tandemStack, insertionThreshold int) {
	l, r, d := frame.l, frame.r, frame.d
	if r-l < 2 {
		return
	}

	if d >= minTandemRepeatLen {
		if handled := tryPartitionTandemRepeat(text, sa, l, r, d, tr); handled {
			return
		}
	}

	if int(r-l) <= insertionThreshold {
		multikeyInsertionSort(text, sa, l, r, d, stk)
		return
	}

	step := (r - l) / 6
	var cands [5]comparand
	for i := 0; i < 5; i++ {
		cands[i] = comparandAt(text, sa[l+int32(i+1)*step].Payload(), d)
	}
	for i := 1; i < 5; i++ {
		for j := i; j > 0 && compareComparand(cands[j], cands[j-1]) < 0; j-- {
			cands[j], cands[j-1] = cands[j-1], cands[j]
		}
	}
	p1, p2, p3 := cands[0], cands[2], cands[4]

	var lt1, eq1, mid12, eq2, mid23, eq3, gt3 []bittag.Word
	for i := l; i < r; i++ {
		w := sa[i]
		cmp := comparandAt(text, w.Payload(), d)
		switch {
		case compareComparand(cmp, p1) < 0:
			lt1 = append(lt1, w)
		case compareComparand(cmp, p1) == 0:
			eq1 = append(eq1, w)
		case compareComparand(cmp, p2) < 0:
			mid12 = append(mid12, w)
		case compareComparand(cmp, p2) == 0:
			eq2 = append(eq2, w)
		case compareComparand(cmp, p3) < 0:
			mid23 = append(mid23, w)
		case compareComparand(cmp, p3) == 0:
			eq3 = append(eq3, w)
		default:
			gt3 = append(gt3, w)
		}
	}

	pos := l
	writeBack := func(region []bittag.Word) (int32, int32) {
		start := pos
		for _, w := range region {
			sa[pos] = w
			pos++
		}
		return start, pos
	}

	lt1S, lt1E := writeBack(lt1)
	eq1S, eq1E := writeBack(eq1)
	mid12S, mid12E := writeBack(mid12)
	eq2S, eq2E := writeBack(eq2)
	mid23S, mid23E := writeBack(mid23)
	eq3S, eq3E := writeBack(eq3)
	gt3S, gt3E := writeBack(gt3)

	// Equal regions have consumed four more known bytes; the others
	// retain the current depth. Pivot ties collapse an equal region to
	// empty and its push is a no-op on pop.
	stk.push(lt1S, lt1E, d)
	stk.push(eq1S, eq1E, d+4)
	stk.push(mid12S, mid12E, d)
	stk.push(eq2S, eq2E, d+4)
	stk.push(mid23S, mid23E, d)
	stk.push(eq3S, eq3E, d+4)
	stk.push(gt3S, gt3E, d)
}

// multikeyInsertionSort handles partitions below the insertion
// threshold: a plain stable insertion sort keyed by the same 4-byte
// window, re-pushing any equal-valued run for a deeper pass at d+4.
func multikeyInsertionSort(text []byte, sa []bittag.Word, l, r, d int32, stk *qsStack) {
	for i := l + 1; i < r; i++ {
		v := sa[i]
		vc := comparandAt(text, v.Payload(), d)
		j := i - 1
		for j >= l && compareComparand(comparandAt(text, sa[j].Payload(), d), vc) > 0 {
			sa[j+1] = sa[j]
			j--
		}
		sa[j+1] = v
	}

	runStart := l
	for i := l + 1; i <= r; i++ {
		var cur comparand
		if i < r {
			cur = comparandAt(text, sa[i].Payload(), d)
		}
		prev := comparandAt(text, sa[runStart].Payload(), d)
		if i == r || compareComparand(cur, prev) != 0 {
			if i-runStart >= 2 {
				stk.push(runStart, i, d+4)
			}
			runStart = i
		}
	}
}
