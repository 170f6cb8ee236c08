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

// Package suffixarray builds, in memory, the sorted permutation of
// suffix offsets of a byte buffer using the Improved Two-Stage (ITS)
// algorithm: B* classification and radix placement, a seven-way
// multi-key quicksort (with tandem-repeat acceleration) to order the
// B* suffixes, then two induction passes that derive the B and A
// suffixes from them. Build is the single entry point; apart from
// BuildOptions, SerializeInt32LE and the ConstructionError type with
// its codes, every other identifier in this package is an unexported
// collaborator it wires together.
package suffixarray

import (
	"github.com/flanglet/gosufsearch/bittag"
)

// maxInputLen is the largest input Build accepts: offsets are int32
// payloads masked to 30 bits, so n must stay below 2^30.
const maxInputLen = 1<<30 - 1

// BuildOptions carries the tunables Build reads from config.Config
// without importing it directly, so this package does not depend on
// the config package.
type BuildOptions struct {
	// Jobs is the worker count for the parallel phases: bucket
	// counting, B* radix placement, B* bucket sorting, and the two
	// induction passes. Values below 1 are treated as 1 (sequential).
	Jobs int
	// InsertionSortThreshold is the partition size at or below which
	// the multi-key quicksort falls back to insertion sort; 0 selects
	// the default of 16.
	InsertionSortThreshold int
	// InductionCacheSize is the per-worker cache size bounding an
	// induction chunk; 0 selects the default of 4096.
	InductionCacheSize int
}

func (o BuildOptions) normalized() BuildOptions {
	if o.Jobs < 1 {
		o.Jobs = 1
	}
	if o.InsertionSortThreshold <= 0 {
		o.InsertionSortThreshold = 16
	}
	if o.InductionCacheSize <= 0 {
		o.InductionCacheSize = 4096
	}
	return o
}

// Build runs the full ITS pipeline over text and returns the finished
// suffix array: n+1 words, slot 0 the sentinel holding the length n,
// every other slot the offset of the i-th smallest suffix, all flag
// bits cleared (the left-to-right pass strips the last surviving
// PREC_A bits, the sentinel's included). The returned slice
// serializes directly as little-endian int32 payloads for the
// on-disk chunk layout.
func Build(text []byte, opts BuildOptions) ([]bittag.Word, error) {
	n := len(text)
	if n > maxInputLen {
		return nil, newConstructionError(ErrInputTooLarge,
			"input length exceeds the 2^30-1 payload budget")
	}
	opts = opts.normalized()

	if n == 0 {
		return []bittag.Word{0}, nil
	}

	types := classifyTypes(text)
	bt := buildBucketTable(text, types, opts.Jobs)

	if int(bt.totalBstar()) > (n+1)/2 {
		return nil, newConstructionError(ErrAllocationFailure,
			"B* count exceeds half the inverse suffix array scratch region")
	}

	sa := allocateSuffixArray(n)
	seedABarriers(sa, bt)

	placeBstar(text, types, bt, sa)
	multikeyQuicksort(text, sa, bt, opts.Jobs, opts.InsertionSortThreshold)

	if err := rtlInduce(text, sa, bt, opts.Jobs, opts.InductionCacheSize); err != nil {
		return nil, newConstructionError(ErrAllocationFailure, err.Error())
	}
	if err := ltrInduce(text, sa, bt, opts.Jobs, opts.InductionCacheSize); err != nil {
		return nil, newConstructionError(ErrAllocationFailure, err.Error())
	}

	log.Debugw("built suffix array", "inputBytes", n, "jobs", opts.Jobs)
	return sa, nil
}

// seedABarriers pre-fills every A-region slot (the head of each
// leading-byte group, [groupStart[c], groupAEnd[c))) with the bare
// hard-barrier word (PREC_A set, payload 0). The left-to-right
// pass's chunk-boundary check depends on this: chunkEndLTR stops a
// chunk the moment it meets an untouched 0x80000000 word, so every A
// slot must start out equal to that exact value before either
// induction pass runs.
func seedABarriers(sa []bittag.Word, bt *bucketTable) {
	for c := 0; c < 256; c++ {
		for i := bt.groupStart[c]; i < bt.groupAEnd[c]; i++ {
			sa[i] = bittag.PrecA
		}
	}
}

// totalBstar sums the B* histogram across every two-byte key. At
// most every other position can be B* (consecutive B* positions are
// impossible), which is what lets an inverse-suffix-array scratch
// region share the upper half of the SA allocation.
func (bt *bucketTable) totalBstar() int64 {
	var total int64
	for _, c := range bt.countBstar {
		total += int64(c)
	}
	return total
}

// SerializeInt32LE renders a finished suffix array as the raw
// little-endian int32 payload stream the on-disk chunk format
// stores, one word per suffix-array slot including the sentinel
// (which goes out as the plain length n a reader can validate
// against textLen).
func SerializeInt32LE(sa []bittag.Word) []byte {
	out := make([]byte, 4*len(sa))
	for i, w := range sa {
		v := uint32(w.Payload())
		out[4*i] = byte(v)
		out[4*i+1] = byte(v >> 8)
		out[4*i+2] = byte(v >> 16)
		out[4*i+3] = byte(v >> 24)
	}
	return out
}

// payloadsOf extracts the plain offsets from a finished array,
// sentinel slot included.
func payloadsOf(sa []bittag.Word) []int32 {
	out := make([]int32, len(sa))
	for i, w := range sa {
		out[i] = w.Payload()
	}
	return out
}
