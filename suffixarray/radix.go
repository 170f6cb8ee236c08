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

// allocateSuffixArray builds the n+1 word array with the sentinel
// installed at slot 0 and every other slot pre-tagged with the
// not-yet-induced marker (bittag.UnsortedB); seedABarriers then
// overwrites the A regions before induction starts.
func allocateSuffixArray(n int) []bittag.Word {
	sa := make([]bittag.Word, n+1)
	sa[0] = bittag.WithPrecA(int32(n))
	for i := 1; i <= n; i++ {
		sa[i] = bittag.UnsortedB
	}
	return sa
}

// placeBstar is the first-stage radix scatter: every B* suffix
// position is seeded into the sub-range its two-byte bucket reserved
// for it, the partition multikeyQuicksort later refines in place.
// One worker per counting range, each advancing the private cursors
// buildBucketTable reserved for it, so no two workers ever touch the
// same slot.
func placeBstar(text []byte, types []suffixType, bt *bucketTable, sa []bittag.Word) {
	var grp errgroup.Group
	for w := range bt.bstarCursor {
		w := w
		lo, hi := bt.workerLo[w], bt.workerHi[w]
		grp.Go(func() error {
			cursor := bt.bstarCursor[w]
			for p := lo; p < hi; p++ {
				if types[p] != typeBstar {
					continue
				}
				k := natKey(int(text[p]), secondCode(text, int(p)))
				sa[cursor[k]] = bittag.Tagged(p, precedingIsTypeA(types, int(p)))
				cursor[k]++
			}
			return nil
		})
	}
	_ = grp.Wait()
}
