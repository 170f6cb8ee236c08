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
	"golang.org/x/sync/errgroup"

	"github.com/flanglet/gosufsearch/bittag"
)

// inducedWrite is one cached (destination key, value) pair produced
// by a classify-phase worker, deferred to the scatter phase so that
// reservation can hand out non-overlapping cursor ranges first.
type inducedWrite struct {
	key int
	val bittag.Word
}

// rtlInduce is the right-to-left half of the second stage: it
// induces every plain B suffix from the already-sorted B* suffixes
// and from B suffixes it has itself already induced earlier in the
// same pass. Reading the entry for suffix p with the PREC_A bit
// clear places p-1 at the back cursor of its two-byte bucket; since
// a B whose successor is type A is by definition B* (already
// placed), every inducer the pass needs lives in a B region it has
// already visited. Processed one leading byte at a time, from 0xFF
// down to 0x00 -- each such byte's B-region is itself split into
// chunks bounded on the left by the first not-yet-filled slot, and
// the classify/scatter steps inside a chunk run across jobs
// goroutines joined at a barrier.
func rtlInduce(text []byte, sa []bittag.Word, bt *bucketTable, jobs, cacheSize int) error {
	backCur := make([]int32, len(bt.bEnd))
	copy(backCur, bt.bEnd)

	for c := 255; c >= 0; c-- {
		left, right := bt.groupAEnd[c], bt.groupStart[c+1]
		pos := right
		for pos > left {
			start := chunkStartRTL(sa, left, pos, jobs, cacheSize)
			if err := rtlInduceChunk(text, sa, backCur, start, pos, jobs); err != nil {
				return err
			}
			pos = start
		}
	}
	return nil
}

// chunkStartRTL finds the left edge of the next right-to-left chunk:
// up to jobs*cacheSize entries, clipped so the chunk never crosses a
// slot that is still the UNSORTED_B sentinel. That boundary is what
// guarantees every slot the classify phase reads is already final --
// a slot, once written, is never re-read within the pass.
func chunkStartRTL(sa []bittag.Word, left, pos int32, jobs, cacheSize int) int32 {
	size := int32(jobs * cacheSize)
	if size < 1 {
		size = 1
	}
	start := pos - size
	if start < left {
		start = left
	}
	for i := pos - 1; i >= start; i-- {
		if sa[i] == bittag.UnsortedB {
			return i + 1
		}
	}
	return start
}

// rtlInduceChunk runs the classify/reserve/scatter triple for one
// chunk [start, pos). Every slot in the range is already final, so
// the classify phase may read it from any number of goroutines
// without synchronization; only the reservation and scatter phases
// touch shared cursors.
func rtlInduceChunk(text []byte, sa []bittag.Word, backCur []int32, start, pos int32, jobs int) error {
	n := pos - start
	if n <= 0 {
		return nil
	}
	if jobs < 1 {
		jobs = 1
	}
	if int32(jobs) > n {
		jobs = int(n)
	}

	caches := make([][]inducedWrite, jobs)
	counts := make([]map[int]int32, jobs)

	// Worker 0 owns the rightmost slice: its entries are the largest
	// suffixes in the chunk, so its induced predecessors must land in
	// the highest back-cursor slots.
	var grp errgroup.Group
	step := (n + int32(jobs) - 1) / int32(jobs)
	for w := 0; w < jobs; w++ {
		w := w
		hi := pos - int32(w)*step
		lo := hi - step
		if lo < start {
			lo = start
		}
		if hi < lo {
			hi = lo
		}
		grp.Go(func() error {
			cache := make([]inducedWrite, 0, hi-lo)
			count := make(map[int]int32)
			for i := hi - 1; i >= lo; i-- {
				v := sa[i]
				if v.PrecA() {
					continue
				}
				p := v.Payload()
				if p == 0 {
					continue
				}
				prevPos := p - 1
				prevByte := text[prevPos]
				k := natKey(int(prevByte), int(text[p])+1)
				flag := precedingIsTypeAByte(text, prevPos)
				cache = append(cache, inducedWrite{key: k, val: bittag.Tagged(prevPos, flag)})
				count[k]++
			}
			caches[w] = cache
			counts[w] = count
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}

	// Reservation: workers are handed descending cursor blocks in
	// slice order, so no two workers' ranges for the same key overlap
	// and the chunk-global right-to-left order is preserved.
	dest := make([]map[int]int32, jobs)
	for w := 0; w < jobs; w++ {
		dest[w] = make(map[int]int32, len(counts[w]))
		for k, c := range counts[w] {
			dest[w][k] = backCur[k]
			backCur[k] -= c
		}
	}

	var scatter errgroup.Group
	for w := 0; w < jobs; w++ {
		w := w
		scatter.Go(func() error {
			cur := dest[w]
			for _, iw := range caches[w] {
				cur[iw.key]--
				sa[cur[iw.key]] = iw.val
			}
			return nil
		})
	}
	return scatter.Wait()
}

// precedingIsTypeAByte decides the PREC_A flag for a freshly induced
// entry at prevPos using only byte comparisons -- equivalent to
// precedingIsTypeA for a type B position, usable once the explicit
// type array has gone out of scope, which is the case once induction
// starts.
func precedingIsTypeAByte(text []byte, prevPos int32) bool {
	if prevPos == 0 {
		return true
	}
	return text[prevPos-1] > text[prevPos]
}

// precedingIsTypeAOrEqualByte is the left-to-right pass's symmetric
// variant: the entry being induced there is type A, so an equal
// preceding byte also resolves to type A.
func precedingIsTypeAOrEqualByte(text []byte, prevPos int32) bool {
	if prevPos == 0 {
		return true
	}
	return text[prevPos-1] >= text[prevPos]
}

// ltrInduce is the left-to-right half of the second stage: it
// induces every A suffix from the now fully induced B array. The
// walk starts at slot 0 so that the sentinel, whose predecessor is
// the final suffix of the text (always type A), seeds the chain. A
// chunk ends either after jobs*cacheSize entries or at the next slot
// holding the bare 0x80000000 barrier -- untouched territory the
// chunk must not read past. The pass clears the PREC_A bit of every
// flagged entry it visits, the sentinel's included, so the finished
// array carries only offsets.
func ltrInduce(text []byte, sa []bittag.Word, bt *bucketTable, jobs, cacheSize int) error {
	frontCur := make([]int32, 256)
	for c := 0; c < 256; c++ {
		frontCur[c] = bt.groupStart[c]
	}

	n := int32(len(sa))
	pos := int32(0)
	for pos < n {
		end := chunkEndLTR(sa, pos, n, jobs, cacheSize)
		if err := ltrInduceChunk(text, sa, frontCur, pos, end, jobs); err != nil {
			return err
		}
		pos = end
	}
	return nil
}

const hardBarrier = bittag.PrecA

func chunkEndLTR(sa []bittag.Word, pos, n int32, jobs, cacheSize int) int32 {
	size := int32(jobs * cacheSize)
	if size < 1 {
		size = 1
	}
	end := pos + size
	if end > n {
		end = n
	}
	for i := pos + 1; i < end; i++ {
		if sa[i] == hardBarrier {
			return i
		}
	}
	return end
}

// ltrInduceChunk mirrors rtlInduceChunk but scans forward, scatters
// via incrementing per-byte cursors, and clears the PREC_A bit on
// every flagged entry during classification -- safe because the
// chunk-boundary rule guarantees scatter destinations always lie at
// or beyond the chunk's end, never inside the range being scanned.
func ltrInduceChunk(text []byte, sa []bittag.Word, frontCur []int32, start, end int32, jobs int) error {
	n := end - start
	if n <= 0 {
		return nil
	}
	if jobs < 1 {
		jobs = 1
	}
	if int32(jobs) > n {
		jobs = int(n)
	}

	caches := make([][]inducedWrite, jobs)
	counts := make([]map[int]int32, jobs)

	var grp errgroup.Group
	step := (n + int32(jobs) - 1) / int32(jobs)
	for w := 0; w < jobs; w++ {
		w := w
		lo := start + int32(w)*step
		hi := lo + step
		if hi > end {
			hi = end
		}
		if lo > hi {
			lo = hi
		}
		grp.Go(func() error {
			cache := make([]inducedWrite, 0, hi-lo)
			count := make(map[int]int32)
			for i := lo; i < hi; i++ {
				v := sa[i]
				if !v.PrecA() {
					continue
				}
				p := v.Payload()
				if p != 0 {
					prevPos := p - 1
					prevByte := int(text[prevPos])
					flag := precedingIsTypeAOrEqualByte(text, prevPos)
					cache = append(cache, inducedWrite{key: prevByte, val: bittag.Tagged(prevPos, flag)})
					count[prevByte]++
				}
				sa[i] = bittag.Word(p)
			}
			caches[w] = cache
			counts[w] = count
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}

	dest := make([]map[int]int32, jobs)
	for w := 0; w < jobs; w++ {
		dest[w] = make(map[int]int32, len(counts[w]))
		for k, c := range counts[w] {
			dest[w][k] = frontCur[k]
			frontCur[k] += c
		}
	}

	var scatter errgroup.Group
	for w := 0; w < jobs; w++ {
		w := w
		scatter.Go(func() error {
			cur := dest[w]
			for _, iw := range caches[w] {
				sa[cur[iw.key]] = iw.val
				cur[iw.key]++
			}
			return nil
		})
	}
	return scatter.Wait()
}
