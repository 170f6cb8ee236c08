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

package index

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanglet/gosufsearch/config"
)

// TestReaderSearchEndToEnd: writer/reader round trip over three
// entries, checked against exact expected sets.
func TestReaderSearchEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	w, err := NewWriter(path, nil)
	require.NoError(t, err)
	require.NoError(t, w.AddEntry([]byte("apple")))
	require.NoError(t, w.AddEntry([]byte("banana")))
	require.NoError(t, w.AddEntry([]byte("apricot")))
	require.NoError(t, w.Finalize())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.Search("ap")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"apple", "apricot"}, got)

	got, err = r.Search("xyz")
	require.NoError(t, err)
	assert.Empty(t, got)

	count, err := r.CountEntries("a")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), count)
}

func TestReaderSearchRejectsEmptyQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	w, err := NewWriter(path, nil)
	require.NoError(t, err)
	require.NoError(t, w.AddEntry([]byte("apple")))
	require.NoError(t, w.Finalize())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Search("")
	require.Error(t, err)
	searchErr, ok := err.(SearchError)
	require.True(t, ok)
	assert.Equal(t, ErrEmptyQuery, searchErr.ErrorCode())
}

// TestReaderCrossChunkDeterminism: the soft cap is set low enough to
// force several chunks, and a substring present in every chunk's
// entries must be found exactly once per matching entry with no
// duplicates.
func TestReaderCrossChunkDeterminism(t *testing.T) {
	cfg := config.Default()
	cfg.WriterSoftCapBytes = 64

	path := filepath.Join(t.TempDir(), "index.bin")
	w, err := NewWriter(path, cfg)
	require.NoError(t, err)

	var want []string
	for i := 0; i < 40; i++ {
		entry := fmt.Sprintf("entry-%03d-needle-%03d", i, i)
		want = append(want, entry)
		require.NoError(t, w.AddEntry([]byte(entry)))
	}
	require.NoError(t, w.Finalize())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	require.GreaterOrEqual(t, len(r.chunks), 2, "soft cap should force multiple chunks")

	got, err := r.Search("needle")
	require.NoError(t, err)
	sort.Strings(got)
	sort.Strings(want)
	assert.Equal(t, want, got)

	// No duplicates even though "needle" appears once per entry across
	// every chunk.
	seen := make(map[string]bool, len(got))
	for _, e := range got {
		assert.False(t, seen[e], "duplicate entry %q", e)
		seen[e] = true
	}
}

// TestReaderPathologicalRepetition: a single entry that is a short
// period repeated many times. CountEntries must still report exactly
// one entry while CountOccurrences reports one hit per repetition.
// The tandem-repeat engine's bounded-time behavior on long periodic
// input is covered at larger scale by suffixarray's
// TestBuildTandemRepeatFuzz.
func TestReaderPathologicalRepetition(t *testing.T) {
	const repeats = 2000
	path := filepath.Join(t.TempDir(), "index.bin")
	w, err := NewWriter(path, nil)
	require.NoError(t, err)
	require.NoError(t, w.AddEntry([]byte(strings.Repeat("ab", repeats))))
	require.NoError(t, w.Finalize())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	entries, err := r.CountEntries("ab")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), entries)

	occurrences, err := r.CountOccurrences("ab")
	require.NoError(t, err)
	assert.Equal(t, uint32(repeats), occurrences)
}

// TestReaderCountConsistency: CountEntries(S) == len(Search(S)) and
// CountOccurrences(S) >= CountEntries(S).
func TestReaderCountConsistency(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.bin")
	w, err := NewWriter(path, nil)
	require.NoError(t, err)
	require.NoError(t, w.AddEntry([]byte("mississippi")))
	require.NoError(t, w.AddEntry([]byte("ississippi river")))
	require.NoError(t, w.Finalize())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	for _, q := range []string{"ssi", "i", "p"} {
		entries, err := r.Search(q)
		require.NoError(t, err)
		countEntries, err := r.CountEntries(q)
		require.NoError(t, err)
		countOcc, err := r.CountOccurrences(q)
		require.NoError(t, err)

		assert.Equal(t, uint32(len(entries)), countEntries)
		assert.GreaterOrEqual(t, countOcc, countEntries)
	}
}

func TestReaderOpenRejectsMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "does-not-exist.bin"))
	require.Error(t, err)
	searchErr, ok := err.(SearchError)
	require.True(t, ok)
	assert.Equal(t, ErrIOError, searchErr.ErrorCode())
}

func TestReaderOpenRejectsCorruptIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	_, err := Open(path)
	require.Error(t, err)
	searchErr, ok := err.(SearchError)
	require.True(t, ok)
	assert.Equal(t, ErrCorruptIndex, searchErr.ErrorCode())
}
