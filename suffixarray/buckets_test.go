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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBucketTableHistogramCoversEveryPosition(t *testing.T) {
	text := []byte("mississippi")
	types := classifyTypes(text)
	bt := buildBucketTable(text, types, 1)

	var total int64
	for i := range bt.countA {
		total += int64(bt.countA[i]) + int64(bt.countB[i]) + int64(bt.countBstar[i])
	}
	assert.Equal(t, int64(len(text)), total)
}

func TestBuildBucketTableGroupBoundariesAreMonotonic(t *testing.T) {
	text := []byte("mississippi")
	types := classifyTypes(text)
	bt := buildBucketTable(text, types, 1)

	require.Equal(t, int32(1), bt.groupStart[0])
	for c := 0; c < 256; c++ {
		assert.GreaterOrEqual(t, bt.groupAEnd[c], bt.groupStart[c])
		assert.GreaterOrEqual(t, bt.groupStart[c+1], bt.groupAEnd[c])
	}
	assert.Equal(t, int32(len(text)+1), bt.groupStart[256])
}

func TestBuildBucketTableBstarSubrangeLeadsItsBucket(t *testing.T) {
	text := []byte("mississippi")
	types := classifyTypes(text)
	bt := buildBucketTable(text, types, 1)

	for c := 0; c < 256; c++ {
		prev := bt.groupAEnd[c]
		for s := 0; s < secondCodes; s++ {
			k := natKey(c, s)
			assert.Equal(t, prev, bt.bstarStart[k])
			assert.LessOrEqual(t, bt.bstarStart[k], bt.bstarEnd[k])
			assert.LessOrEqual(t, bt.bstarEnd[k], bt.bEnd[k])
			prev = bt.bEnd[k]
		}
		assert.Equal(t, bt.groupStart[c+1], prev)
	}
}

// TestBuildBucketTableWorkerCountsMergeToSequential: however the
// input is split across counting workers, the merged histograms,
// boundaries, and cursor tables must match the single-worker table.
func TestBuildBucketTableWorkerCountsMergeToSequential(t *testing.T) {
	text := []byte("mississippi river runs past mississippi\x00banana\x00")
	types := classifyTypes(text)
	want := buildBucketTable(text, types, 1)

	for _, jobs := range []int{2, 3, 5, len(text), len(text) + 7} {
		got := buildBucketTable(text, types, jobs)
		assert.Equal(t, want.countA, got.countA, "jobs=%d", jobs)
		assert.Equal(t, want.countB, got.countB, "jobs=%d", jobs)
		assert.Equal(t, want.countBstar, got.countBstar, "jobs=%d", jobs)
		assert.Equal(t, want.groupStart, got.groupStart, "jobs=%d", jobs)
		assert.Equal(t, want.groupAEnd, got.groupAEnd, "jobs=%d", jobs)
		assert.Equal(t, want.bstarStart, got.bstarStart, "jobs=%d", jobs)
		assert.Equal(t, want.bstarEnd, got.bstarEnd, "jobs=%d", jobs)
		assert.Equal(t, want.bEnd, got.bEnd, "jobs=%d", jobs)
	}
}

// TestBuildBucketTableReservedCursorsPartitionEachBucket: the
// per-worker placement cursors must start at the bucket's B* base
// for worker 0 and stack each later worker's slice directly after
// the counts of the workers before it, ending exactly at bstarEnd.
func TestBuildBucketTableReservedCursorsPartitionEachBucket(t *testing.T) {
	text := []byte("abracadabra abracadabra abracadabra\x00")
	types := classifyTypes(text)
	jobs := 4
	bt := buildBucketTable(text, types, jobs)
	require.Len(t, bt.bstarCursor, jobs)

	// Re-count per worker range to reproduce the reservation.
	for k := range bt.bstarStart {
		cur := bt.bstarStart[k]
		for w := 0; w < jobs; w++ {
			assert.Equal(t, cur, bt.bstarCursor[w][k], "worker %d key %d", w, k)
			for p := bt.workerLo[w]; p < bt.workerHi[w]; p++ {
				if types[p] == typeBstar && natKey(int(text[p]), secondCode(text, int(p))) == k {
					cur++
				}
			}
		}
		assert.Equal(t, bt.bstarEnd[k], cur, "key %d", k)
	}
}
