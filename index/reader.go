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
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/flanglet/gosufsearch/metrics"
)

// chunkView is one chunk of the index file: its text blob held in
// memory and an opaque window onto its on-disk suffix-array bytes.
// The suffix-array bytes are never materialized in full; lookups
// ReadAt directly into chunkView.file at chunkView.saOffset.
type chunkView struct {
	text     []byte
	file     *os.File
	saOffset int64
	saLen    int64
}

// Reader opens a multi-chunk index file and answers substring
// queries over it without ever materializing a chunk's suffix array
// in memory -- each lookup reads only the handful of 4-byte words
// its double binary search touches.
type Reader struct {
	file   *os.File
	chunks []chunkView
}

// Open parses the chunk headers of the file at path, recording each
// chunk's text blob and the file offset/length of its on-disk suffix
// array, and fails if path is missing, unreadable, or malformed.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newSearchError(ErrIOError, fmt.Sprintf("open index file: %v", err))
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, newSearchError(ErrIOError, fmt.Sprintf("stat index file: %v", err))
	}

	r := &Reader{file: f}
	var pos int64
	size := info.Size()

	for pos < size {
		var hdr [4]byte
		if _, err := f.ReadAt(hdr[:], pos); err != nil {
			f.Close()
			return nil, newSearchError(ErrCorruptIndex, "truncated chunk text-length header")
		}
		textLen := int64(binary.LittleEndian.Uint32(hdr[:]))
		pos += 4

		text := make([]byte, textLen)
		if textLen > 0 {
			if _, err := f.ReadAt(text, pos); err != nil {
				f.Close()
				return nil, newSearchError(ErrCorruptIndex, "truncated chunk text body")
			}
		}
		pos += textLen

		if _, err := f.ReadAt(hdr[:], pos); err != nil {
			f.Close()
			return nil, newSearchError(ErrCorruptIndex, "truncated chunk suffix-array-length header")
		}
		saLen := int64(binary.LittleEndian.Uint32(hdr[:]))
		pos += 4

		if saLen%4 != 0 {
			f.Close()
			return nil, newSearchError(ErrCorruptIndex, "suffix array length is not a multiple of 4")
		}
		if textLen+1 != saLen/4 {
			f.Close()
			return nil, newSearchError(ErrCorruptIndex, "suffix array length does not match textLen+1")
		}

		r.chunks = append(r.chunks, chunkView{
			text:     text,
			file:     f,
			saOffset: pos,
			saLen:    saLen,
		})
		pos += saLen
	}

	log.Infow("opened index", "chunks", len(r.chunks))
	return r, nil
}

// Close releases the underlying file handle.
func (this *Reader) Close() error {
	return this.file.Close()
}

// readWord reads the little-endian int32 suffix-array slot at
// byte offset off within a chunk's on-disk suffix-array region.
func (this *chunkView) readWord(off int64) (int32, error) {
	var buf [4]byte
	if _, err := this.file.ReadAt(buf[:], this.saOffset+off); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

// compareAt compares s against the text starting at idx, memcmp
// style over len(s) bytes. When fewer than len(s) bytes remain at
// idx, the available prefix is compared first and a
// truncated-but-matching prefix is treated as "text is smaller",
// since the full substring cannot be present there.
func compareAt(text []byte, idx int32, s []byte) int {
	avail := int32(len(text)) - idx
	if avail <= 0 {
		return 1
	}
	m := int32(len(s))
	if avail < m {
		m = avail
	}
	if c := bytes.Compare(s[:m], text[idx:idx+m]); c != 0 {
		return c
	}
	if int32(len(s)) > m {
		return 1
	}
	return 0
}

// locate performs a double binary search over one chunk's on-disk
// suffix array and returns the inclusive byte-offset range
// [first, last] of slots whose suffix begins with s, or ok=false if
// no slot matched. All anchors are 4-byte aligned; the first word of
// the region (offset 0) is the sentinel and is never a valid match
// for a non-empty query, so the initial left anchor is 4.
func (this *chunkView) locate(s []byte) (first, last int64, ok bool, err error) {
	left, right := int64(4), this.saLen-4
	if right < left {
		return 0, 0, false, nil
	}

	var firstFound, lastFound int64 = -1, -1
	for left <= right {
		mid := left + (((right-left)/4)/2)*4
		idx, rerr := this.readWord(mid)
		if rerr != nil {
			return 0, 0, false, rerr
		}
		switch c := compareAt(this.text, idx, s); {
		case c < 0:
			right = mid - 4
		case c > 0:
			left = mid + 4
		default:
			firstFound = mid
			if lastFound == -1 {
				lastFound = mid
			}
			right = mid - 4
		}
	}
	if firstFound == -1 {
		return 0, 0, false, nil
	}

	left, right = lastFound, this.saLen-4
	for left <= right {
		mid := left + (((right-left)/4)/2)*4
		idx, rerr := this.readWord(mid)
		if rerr != nil {
			return 0, 0, false, rerr
		}
		switch c := compareAt(this.text, idx, s); {
		case c < 0:
			right = mid - 4
		case c > 0:
			left = mid + 4
		default:
			lastFound = mid
			left = mid + 4
		}
	}
	return firstFound, lastFound, true, nil
}

// entryStart walks left from idx in text to the previous NUL (or
// offset 0), the start of the entry owning position idx.
func entryStart(text []byte, idx int32) int32 {
	for idx > 0 && text[idx-1] != 0 {
		idx--
	}
	return idx
}

// entryString returns the NUL-terminated entry beginning at start.
func entryString(text []byte, start int32) string {
	end := start
	for int(end) < len(text) && text[end] != 0 {
		end++
	}
	return string(text[start:end])
}

// matchedEntries resolves every suffix-array slot in the inclusive
// range [first, last] back to its owning entry start and returns the
// de-duplicated set, alongside the raw occurrence count
// (last-first)/4 + 1.
func (this *chunkView) matchedEntries(first, last int64) ([]int32, int64, error) {
	occurrences := (last-first)/4 + 1
	seen := make(map[int32]bool)
	var starts []int32
	for off := first; off <= last; off += 4 {
		idx, err := this.readWord(off)
		if err != nil {
			return nil, 0, err
		}
		start := entryStart(this.text, idx)
		if !seen[start] {
			seen[start] = true
			starts = append(starts, start)
		}
	}
	return starts, occurrences, nil
}

// locateResult is one chunk's contribution to a search, dispatched
// in parallel and combined under a single lock.
type locateResult struct {
	starts      []int32
	text        []byte
	occurrences int64
}

func (this *Reader) locateAll(s []byte) ([]locateResult, error) {
	results := make([]locateResult, len(this.chunks))
	var mu sync.Mutex
	var grp errgroup.Group

	for i := range this.chunks {
		i := i
		grp.Go(func() error {
			chunk := &this.chunks[i]
			first, last, ok, err := chunk.locate(s)
			if err != nil {
				return err
			}
			if !ok {
				metrics.ChunksSearched.WithLabelValues("false").Inc()
				return nil
			}
			metrics.ChunksSearched.WithLabelValues("true").Inc()
			starts, occurrences, err := chunk.matchedEntries(first, last)
			if err != nil {
				return err
			}
			mu.Lock()
			results[i] = locateResult{starts: starts, text: chunk.text, occurrences: occurrences}
			mu.Unlock()
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Search returns the distinct entries containing s, across every
// chunk, in no particular order. Returns EmptyQuery if s is empty.
func (this *Reader) Search(s string) ([]string, error) {
	if len(s) == 0 {
		return nil, newSearchError(ErrEmptyQuery, "search substring must be non-empty")
	}

	results, err := this.locateAll([]byte(s))
	if err != nil {
		return nil, newSearchError(ErrIOError, fmt.Sprintf("search: %v", err))
	}

	var entries []string
	var occurrences int64
	for _, r := range results {
		for _, start := range r.starts {
			entries = append(entries, entryString(r.text, start))
		}
		occurrences += r.occurrences
	}
	metrics.OccurrencesFound.Add(float64(occurrences))
	log.Debugw("search finished",
		"entries", len(entries),
		"occurrences", humanize.Comma(occurrences))
	return entries, nil
}

// CountOccurrences returns the number of suffix-array hits for s
// across every chunk, without materializing any entry.
func (this *Reader) CountOccurrences(s string) (uint32, error) {
	if len(s) == 0 {
		return 0, newSearchError(ErrEmptyQuery, "search substring must be non-empty")
	}
	results, err := this.locateAll([]byte(s))
	if err != nil {
		return 0, newSearchError(ErrIOError, fmt.Sprintf("count occurrences: %v", err))
	}
	var total int64
	for _, r := range results {
		total += r.occurrences
	}
	return uint32(total), nil
}

// CountEntries returns the number of distinct entries containing s
// across every chunk, without materializing any entry's text.
func (this *Reader) CountEntries(s string) (uint32, error) {
	if len(s) == 0 {
		return 0, newSearchError(ErrEmptyQuery, "search substring must be non-empty")
	}
	results, err := this.locateAll([]byte(s))
	if err != nil {
		return 0, newSearchError(ErrIOError, fmt.Sprintf("count entries: %v", err))
	}
	var total int
	for _, r := range results {
		total += len(r.starts)
	}
	return uint32(total), nil
}
