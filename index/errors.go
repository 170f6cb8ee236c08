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

import "fmt"

// Error codes for SearchError, one per failure category that can
// surface at the reader/writer boundary rather than inside the
// construction engine itself.
const (
	ErrIOError = iota
	ErrCorruptIndex
	ErrEmptyQuery
)

// SearchError is the index package's error value, mirroring
// suffixarray.ConstructionError: a message plus a machine-readable
// code rather than a sentinel error variable.
type SearchError struct {
	msg  string
	code int
}

// Error returns the underlying error string.
func (this SearchError) Error() string {
	return fmt.Sprintf("%v (code %v)", this.msg, this.code)
}

// Message returns the message string associated with the error.
func (this SearchError) Message() string {
	return this.msg
}

// ErrorCode returns the code value associated with the error.
func (this SearchError) ErrorCode() int {
	return this.code
}

func newSearchError(code int, msg string) SearchError {
	return SearchError{msg: msg, code: code}
}
