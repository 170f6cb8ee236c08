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

// Package index implements the writer and reader halves of an
// on-disk substring index: a sequence of chunks, each a
// NUL-terminated text blob paired with the suffix array
// suffixarray.Build produces for it. The writer owns chunk
// accumulation and file framing; the reader answers substring
// queries by binary search over each chunk's on-disk suffix array.
package index

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/flanglet/gosufsearch/config"
	"github.com/flanglet/gosufsearch/metrics"
	"github.com/flanglet/gosufsearch/suffixarray"
)

// Writer accumulates entries into chunks and flushes each chunk to
// an index file once the in-memory text accumulator crosses a soft
// cap. Finalize flushes any partial chunk and closes the file.
type Writer struct {
	file       *os.File
	textStream []byte
	cfg        *config.Config
	closed     bool
}

// NewWriter creates or truncates the file at path. cfg may be nil,
// in which case config.Default() is used.
func NewWriter(path string, cfg *config.Config) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, newSearchError(ErrIOError, fmt.Sprintf("create index file: %v", err))
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return &Writer{file: f, cfg: cfg}, nil
}

// AddEntry appends text plus a single NUL terminator to the writer's
// in-memory accumulator, flushing a chunk once the accumulator
// exceeds cfg.WriterSoftCapBytes.
func (this *Writer) AddEntry(text []byte) error {
	this.textStream = append(this.textStream, text...)
	this.textStream = append(this.textStream, 0)

	if int64(len(this.textStream)) > this.cfg.WriterSoftCapBytes {
		return this.dumpData()
	}
	return nil
}

// dumpData flushes the current text accumulator as one chunk: a u32
// text length, the text bytes, a u32 suffix-array byte length, then
// the raw little-endian suffix array itself.
func (this *Writer) dumpData() error {
	if len(this.textStream) == 0 {
		return nil
	}

	timer := prometheus.NewTimer(metrics.ConstructionDuration)
	sa, err := suffixarray.Build(this.textStream, suffixarray.BuildOptions{
		Jobs:                   this.cfg.Jobs,
		InsertionSortThreshold: this.cfg.InsertionSortThreshold,
		InductionCacheSize:     this.cfg.InductionCacheSize,
	})
	timer.ObserveDuration()
	if err != nil {
		// Surface the typed construction error (InputTooLarge and
		// friends) rather than folding it into the I/O category.
		return err
	}

	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(this.textStream)))
	if _, err := this.file.Write(hdr[:]); err != nil {
		return newSearchError(ErrIOError, fmt.Sprintf("write chunk text length: %v", err))
	}
	if _, err := this.file.Write(this.textStream); err != nil {
		return newSearchError(ErrIOError, fmt.Sprintf("write chunk text: %v", err))
	}

	saBytes := suffixarray.SerializeInt32LE(sa)
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(saBytes)))
	if _, err := this.file.Write(hdr[:]); err != nil {
		return newSearchError(ErrIOError, fmt.Sprintf("write chunk suffix array length: %v", err))
	}
	if _, err := this.file.Write(saBytes); err != nil {
		return newSearchError(ErrIOError, fmt.Sprintf("write chunk suffix array: %v", err))
	}

	log.Infow("flushed chunk",
		"textBytes", humanize.Bytes(uint64(len(this.textStream))),
		"suffixArrayBytes", humanize.Bytes(uint64(len(saBytes))))
	metrics.ChunksWritten.Inc()

	this.textStream = this.textStream[:0]
	return nil
}

// Finalize flushes any partial chunk and closes the file. Callers
// are responsible for calling it; there is no implicit cleanup. Safe
// to call twice: once the accumulator is empty and the file is
// closed, a second call is a no-op.
func (this *Writer) Finalize() error {
	if this.closed {
		return nil
	}
	if err := this.dumpData(); err != nil {
		return err
	}
	this.closed = true
	return this.file.Close()
}
