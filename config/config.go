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

// Package config loads the tunable knobs of the suffix array engine
// and index writer from an optional YAML file, decoding straight
// into a caller-owned struct and overlaying the result on built-in
// defaults.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Defaults for the engine and writer knobs: the multi-key sort's
// insertion threshold, the induction passes' per-worker cache size,
// and the writer's chunk soft cap.
const (
	DefaultInsertionSortThreshold = 16
	DefaultInductionCacheSize     = 4096
	DefaultWriterSoftCapBytes     = 512 * 1024 * 1024
)

// Config holds every knob the construction engine and index writer
// read at startup. Zero-valued fields are replaced by the defaults
// above after Load, so a partially-specified YAML file is legal.
type Config struct {
	Jobs                   int   `yaml:"jobs"`
	InsertionSortThreshold int   `yaml:"insertionSortThreshold"`
	InductionCacheSize     int   `yaml:"inductionCacheSize"`
	WriterSoftCapBytes     int64 `yaml:"writerSoftCapBytes"`
}

// Default returns a Config populated entirely from built-in defaults,
// with Jobs set to the available hardware concurrency.
func Default() *Config {
	return &Config{
		Jobs:                   runtime.NumCPU(),
		InsertionSortThreshold: DefaultInsertionSortThreshold,
		InductionCacheSize:     DefaultInductionCacheSize,
		WriterSoftCapBytes:     DefaultWriterSoftCapBytes,
	}
}

// Load reads a YAML file at path and overlays it onto the defaults;
// zero-valued fields left absent from the file keep their default.
// A missing path is not an error: Load returns Default() unchanged,
// since an entirely absent config file is the normal case for a
// library consumer that never wrote one.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	var overlay Config
	if err := yaml.NewDecoder(file).Decode(&overlay); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	if overlay.Jobs != 0 {
		cfg.Jobs = overlay.Jobs
	}
	if overlay.InsertionSortThreshold != 0 {
		cfg.InsertionSortThreshold = overlay.InsertionSortThreshold
	}
	if overlay.InductionCacheSize != 0 {
		cfg.InductionCacheSize = overlay.InductionCacheSize
	}
	if overlay.WriterSoftCapBytes != 0 {
		cfg.WriterSoftCapBytes = overlay.WriterSoftCapBytes
	}

	if cfg.Jobs > runtime.NumCPU() {
		cfg.Jobs = runtime.NumCPU()
	}
	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}
	return cfg, nil
}
