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
	"bytes"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// naiveSuffixArray sorts every suffix of text (plus the implicit
// empty sentinel suffix) with a plain O(n^2 log n) comparison sort,
// the brute-force reference construction is checked against.
func naiveSuffixArray(text []byte) []int32 {
	n := len(text)
	suffixOf := func(p int32) []byte {
		if int(p) >= n {
			return nil
		}
		return text[p:]
	}

	offsets := make([]int32, n+1)
	for i := range offsets {
		offsets[i] = int32(i)
	}
	sort.Slice(offsets, func(i, j int) bool {
		return bytes.Compare(suffixOf(offsets[i]), suffixOf(offsets[j])) < 0
	})
	return offsets
}

func buildAndCheckInvariants(t *testing.T, text []byte) []int32 {
	t.Helper()
	sa, err := Build(text, BuildOptions{Jobs: 1})
	require.NoError(t, err)

	n := int32(len(text))
	require.Len(t, sa, len(text)+1)

	// The sentinel sits at slot 0 with payload n.
	assert.Equal(t, n, sa[0].Payload())

	payloads := payloadsOf(sa)

	// SA[1:] is a permutation of {0, ..., n-1}.
	seen := make(map[int32]bool, n)
	for _, p := range payloads[1:] {
		assert.False(t, seen[p], "duplicate payload %d", p)
		seen[p] = true
		assert.True(t, p >= 0 && p < n, "payload %d out of range", p)
	}
	assert.Len(t, seen, int(n))

	// Lexicographic order holds between every adjacent pair.
	suffixOf := func(p int32) []byte {
		if int(p) >= len(text) {
			return nil
		}
		return text[p:]
	}
	for i := 1; i < len(payloads)-1; i++ {
		assert.LessOrEqual(t, bytes.Compare(suffixOf(payloads[i]), suffixOf(payloads[i+1])), 0)
	}

	// No flag bits survive anywhere, the sentinel slot included (the
	// left-to-right pass strips its PREC_A bit last).
	for i := 0; i < len(sa); i++ {
		assert.False(t, sa[i].PrecA(), "slot %d retains PREC_A", i)
		assert.False(t, sa[i].Mark(), "slot %d retains MARK", i)
	}

	return payloads
}

func TestBuildPermutationAndOrder(t *testing.T) {
	inputs := [][]byte{
		[]byte("banana"),
		[]byte("aaaaa"),
		[]byte("abababab"),
		[]byte("mississippi"),
		[]byte("the quick brown fox jumps over the lazy dog"),
	}
	for _, in := range inputs {
		buildAndCheckInvariants(t, in)
	}
}

// TestBuildScenarioBanana: input "banana\x00" sorts to a known
// literal payload order.
func TestBuildScenarioBanana(t *testing.T) {
	payloads := buildAndCheckInvariants(t, []byte("banana\x00"))
	assert.Equal(t, []int32{7, 6, 5, 3, 1, 0, 4, 2}, payloads)
}

// TestBuildScenarioAllSameByte: input "aaaaa" sorts by decreasing
// offset since every suffix is a prefix of the one before.
func TestBuildScenarioAllSameByte(t *testing.T) {
	payloads := buildAndCheckInvariants(t, []byte("aaaaa"))
	assert.Equal(t, []int32{5, 4, 3, 2, 1, 0}, payloads)
}

// TestBuildScenarioAbababab: a short tandem repeat. Checked against
// the brute-force reference rather than a hand-transcribed literal
// array, since the 'a'-group must sort before the 'b'-group
// lexicographically and it is easy to transpose that by hand.
func TestBuildScenarioAbababab(t *testing.T) {
	text := []byte("abababab\x00")
	payloads := buildAndCheckInvariants(t, text)
	assert.Equal(t, naiveSuffixArray(text), payloads)
}

// TestBuildRoundTripAgainstNaive: for random inputs up to 4096
// bytes, Build's output equals the brute-force comparison sort.
func TestBuildRoundTripAgainstNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(20260729))
	alphabets := []int{2, 4, 26, 256}

	for trial := 0; trial < 40; trial++ {
		size := rng.Intn(4096) + 1
		alphaSize := alphabets[rng.Intn(len(alphabets))]
		text := make([]byte, size)
		for i := range text {
			text[i] = byte(rng.Intn(alphaSize))
		}

		sa, err := Build(text, BuildOptions{Jobs: 1})
		require.NoError(t, err)
		want := naiveSuffixArray(text)
		assert.Equal(t, want, payloadsOf(sa), "mismatch for size=%d alpha=%d", size, alphaSize)
	}
}

// TestBuildTandemRepeatFuzz: long tandem-repeat inputs complete
// quickly, without the quadratic blow-up a naive multi-key sort
// would suffer, and still produce a valid permutation.
func TestBuildTandemRepeatFuzz(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, k := range []int{100, 5000, 50000} {
		pa := byte('a' + rng.Intn(4))
		pb := byte('a' + rng.Intn(4))
		text := make([]byte, 0, 2*k+8)
		for i := 0; i < k; i++ {
			text = append(text, pa, pb)
		}
		text = append(text, []byte("tail123")...)

		sa, err := Build(text, BuildOptions{Jobs: 1})
		require.NoError(t, err)
		assert.Len(t, sa, len(text)+1)
		assert.Equal(t, int32(len(text)), sa[0].Payload())

		payloads := payloadsOf(sa)
		seen := make(map[int32]bool, len(text))
		for _, p := range payloads[1:] {
			seen[p] = true
		}
		assert.Len(t, seen, len(text))
	}
}

func TestConstructionErrorCarriesCode(t *testing.T) {
	err := newConstructionError(ErrInputTooLarge, "input length exceeds the 2^30-1 payload budget")
	assert.Equal(t, ErrInputTooLarge, err.ErrorCode())
	assert.Contains(t, err.Error(), "2^30-1")
	assert.Equal(t, "input length exceeds the 2^30-1 payload budget", err.Message())
}

func TestBuildEmptyInput(t *testing.T) {
	sa, err := Build(nil, BuildOptions{})
	require.NoError(t, err)
	require.Len(t, sa, 1)
	assert.Equal(t, int32(0), sa[0].Payload())
	assert.False(t, sa[0].PrecA())
}

func TestBuildParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	random := make([]byte, 3000)
	for i := range random {
		random[i] = byte(rng.Intn(8))
	}
	inputs := [][]byte{
		[]byte("the quick brown fox jumps over the lazy dog the quick brown fox"),
		bytes.Repeat([]byte("ab"), 4000),
		random,
	}
	for _, text := range inputs {
		seq, err := Build(text, BuildOptions{Jobs: 1})
		require.NoError(t, err)
		par, err := Build(text, BuildOptions{Jobs: 4})
		require.NoError(t, err)
		assert.Equal(t, payloadsOf(seq), payloadsOf(par))
	}
}
