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

// Package metrics exposes the Prometheus instruments the index writer
// and reader update. The construction engine itself records nothing
// here; it stays a plain library with no registration side effects.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ChunksWritten = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "gosufsearch_chunks_written",
		Help: "Chunks flushed to an index file by the writer",
	},
)

var ChunksSearched = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gosufsearch_chunks_searched",
		Help: "Chunks consulted by a search call, by whether they contributed a match",
	},
	[]string{"matched"},
)

var ConstructionDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "gosufsearch_construction_duration_seconds",
		Help:    "Wall-clock time to build a chunk's suffix array",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 12),
	},
)

var OccurrencesFound = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "gosufsearch_occurrences_found",
		Help: "Suffix-array hits returned across all search calls",
	},
)
