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

import "golang.org/x/sync/errgroup"

// secondCodes spans the 256 real bytes plus the implicit end-of-text
// sentinel that sorts before all of them.
const secondCodes = 257

// bucketTable holds the per-two-byte-key A/B/B* histograms and the
// cursor tables the rest of construction reads from. A two-byte key
// is natKey(firstByte, secondCode) = firstByte*secondCodes + secondCode.
type bucketTable struct {
	countA, countB, countBstar []int32

	// groupStart[c] is the first SA slot (1-based, slot 0 is the
	// sentinel) belonging to leading byte c; groupStart[256] is one
	// past the last slot in the array.
	groupStart [257]int32
	// groupAEnd[c] is one past the last A-type slot for leading byte
	// c -- the boundary between the A head-region and the B
	// tail-region of that leading byte's group.
	groupAEnd [256]int32

	// bstarStart/bstarEnd delimit, per natural two-byte key, the
	// sub-range within the B tail-region reserved for that bucket's
	// B* suffixes (placeBstar's target, later multikeyQuicksort's
	// partition). The same bucket's plain-B sub-range
	// [bstarEnd, bEnd) sits immediately after it: a B* suffix and a
	// plain B suffix sharing the same two bytes diverge at their
	// successor suffixes, one type A and one type B, and within a
	// first-byte group every A suffix precedes every B suffix. The
	// right-to-left induction fills the plain sub-range from bEnd
	// downward.
	bstarStart, bstarEnd, bEnd []int32

	// workerLo/workerHi are the contiguous byte ranges the counting
	// workers covered, and bstarCursor[w] the placement cursors
	// reserved for worker w: worker w's B* suffixes in bucket k land
	// at [bstarCursor[w][k], bstarCursor[w][k]+countBstar_w[k]),
	// directly after the slots of every lower-numbered worker, so the
	// placement workers write disjoint regions. placeBstar re-runs
	// the same ranges with the same cursors.
	workerLo, workerHi []int32
	bstarCursor        [][]int32
}

func natKey(firstByte, secondCode int) int {
	return firstByte*secondCodes + secondCode
}

// buildBucketTable accumulates the per-type two-byte histograms and
// derives the group/sub-bucket boundaries the rest of construction
// depends on. Counting is partitioned by byte offset: each of jobs
// workers histograms its own contiguous slice of the input, the
// per-worker counts are merged after the join, and the per-worker B*
// counts are then turned into the disjoint placement cursors
// placeBstar scatters through.
func buildBucketTable(text []byte, types []suffixType, jobs int) *bucketTable {
	n := len(text)
	if jobs > n {
		jobs = n
	}
	if jobs < 1 {
		jobs = 1
	}

	bt := &bucketTable{
		countA:     make([]int32, 256*secondCodes),
		countB:     make([]int32, 256*secondCodes),
		countBstar: make([]int32, 256*secondCodes),
		bstarStart: make([]int32, 256*secondCodes),
		bstarEnd:   make([]int32, 256*secondCodes),
		bEnd:       make([]int32, 256*secondCodes),
		workerLo:   make([]int32, jobs),
		workerHi:   make([]int32, jobs),
	}

	step := (n + jobs - 1) / jobs
	workerA := make([][]int32, jobs)
	workerB := make([][]int32, jobs)
	workerBstar := make([][]int32, jobs)

	var grp errgroup.Group
	for w := 0; w < jobs; w++ {
		w := w
		lo := w * step
		hi := lo + step
		if hi > n {
			hi = n
		}
		bt.workerLo[w], bt.workerHi[w] = int32(lo), int32(hi)
		grp.Go(func() error {
			cntA := make([]int32, 256*secondCodes)
			cntB := make([]int32, 256*secondCodes)
			cntBstar := make([]int32, 256*secondCodes)
			for p := lo; p < hi; p++ {
				k := natKey(int(text[p]), secondCode(text, p))
				switch types[p] {
				case typeA:
					cntA[k]++
				case typeB:
					cntB[k]++
				case typeBstar:
					cntBstar[k]++
				}
			}
			workerA[w], workerB[w], workerBstar[w] = cntA, cntB, cntBstar
			return nil
		})
	}
	_ = grp.Wait()

	for w := 0; w < jobs; w++ {
		for k := range bt.countA {
			bt.countA[k] += workerA[w][k]
			bt.countB[k] += workerB[w][k]
			bt.countBstar[k] += workerBstar[w][k]
		}
	}

	pos := int32(1) // slot 0 is reserved for the sentinel
	for c := 0; c < 256; c++ {
		bt.groupStart[c] = pos

		var aTotal int32
		for s := 0; s < secondCodes; s++ {
			aTotal += bt.countA[natKey(c, s)]
		}
		bt.groupAEnd[c] = pos + aTotal

		running := bt.groupAEnd[c]
		for s := 0; s < secondCodes; s++ {
			k := natKey(c, s)
			bt.bstarStart[k] = running
			bt.bstarEnd[k] = running + bt.countBstar[k]
			bt.bEnd[k] = running + bt.countB[k] + bt.countBstar[k]
			running = bt.bEnd[k]
		}
		pos = running
	}
	bt.groupStart[256] = pos

	// Reservation: hand each worker its slice of every B* sub-range,
	// in worker (byte offset) order.
	bt.bstarCursor = make([][]int32, jobs)
	cur := make([]int32, len(bt.bstarStart))
	copy(cur, bt.bstarStart)
	for w := 0; w < jobs; w++ {
		c := make([]int32, len(cur))
		copy(c, cur)
		bt.bstarCursor[w] = c
		for k, cnt := range workerBstar[w] {
			cur[k] += cnt
		}
	}

	return bt
}
