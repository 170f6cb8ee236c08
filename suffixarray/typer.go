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

// suffixType classifies a suffix position relative to the byte that
// follows it, per the A/B/B* partition of induced-sorting algorithms.
type suffixType uint8

const (
	typeB suffixType = iota
	typeA
	typeBstar
)

// classifyTypes runs the single right-to-left scan that assigns every
// position in text an A/B/B* type. Position n itself is an implicit
// sentinel smaller than every byte, so the last real position is
// always type A.
func classifyTypes(text []byte) []suffixType {
	n := len(text)
	types := make([]suffixType, n)
	if n == 0 {
		return types
	}

	types[n-1] = typeA
	for p := n - 2; p >= 0; p-- {
		switch {
		case text[p] > text[p+1]:
			types[p] = typeA
		case text[p] < text[p+1]:
			types[p] = typeB
		default:
			types[p] = types[p+1]
		}
	}

	// A second sweep promotes each B followed by an A -- the rightmost
	// B of its run -- to B*. Those are the seeds the right-to-left
	// induction starts from: reading a B* entry places the B at p-1,
	// which places p-2, and so on down to the run start.
	for p := 0; p < n-1; p++ {
		if types[p] == typeB && types[p+1] == typeA {
			types[p] = typeBstar
		}
	}
	return types
}

// secondCode returns the second-byte code used to build two-byte
// bucket keys: 0 represents the implicit end-of-text sentinel (which
// sorts before every real byte), 1+b represents the real byte b.
func secondCode(text []byte, p int) int {
	if p+1 >= len(text) {
		return 0
	}
	return int(text[p+1]) + 1
}

// precedingIsTypeA reports whether the suffix preceding p (i.e. at
// p-1) is type A, treating the start of the buffer as vacuously true
// -- the same convention placeBstar and the induction passes use to
// tag the PREC_A flag on a freshly placed entry.
func precedingIsTypeA(types []suffixType, p int) bool {
	if p == 0 {
		return true
	}
	return types[p-1] == typeA
}
