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

// qsFrame is one unit of deferred work for multikeyQuicksort: a
// partition [l, r) of B* positions already known to agree on their
// first d bytes.
type qsFrame struct {
	l, r int32
	d    int32
}

// qsStack is a pre-allocated explicit work stack, grown by doubling.
// Worst-case partition depth is far beyond what call recursion could
// absorb, so every quicksort frame lives here instead.
type qsStack struct {
	frames []qsFrame
	index  int
}

func newQsStack(capacity int) *qsStack {
	if capacity < 64 {
		capacity = 64
	}
	return &qsStack{frames: make([]qsFrame, capacity)}
}

func (this *qsStack) push(l, r, d int32) {
	if this.index == len(this.frames) {
		grown := make([]qsFrame, len(this.frames)*2)
		copy(grown, this.frames)
		this.frames = grown
	}
	this.frames[this.index] = qsFrame{l, r, d}
	this.index++
}

func (this *qsStack) pop() (qsFrame, bool) {
	if this.index == 0 {
		return qsFrame{}, false
	}
	this.index--
	return this.frames[this.index], true
}

// tandemRecord describes a partition collapsed around a period-delta
// tandem repeat, deferred until all non-repeat B* sorting completes.
type tandemRecord struct {
	begin, end     int32
	numTerminators int32
	delta          int32
}

// tandemStack is the per-worker LIFO of deferred tandemRecords.
// Stacks are never shared between workers.
type tandemStack struct {
	records []tandemRecord
}

func (this *tandemStack) push(r tandemRecord) {
	this.records = append(this.records, r)
}

func (this *tandemStack) pop() (tandemRecord, bool) {
	if len(this.records) == 0 {
		return tandemRecord{}, false
	}
	last := this.records[len(this.records)-1]
	this.records = this.records[:len(this.records)-1]
	return last, true
}
