/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"dirpx.dev/jsv/apis"
	"dirpx.dev/jsv/policy"
)

// File is the YAML form of the configuration. Absent keys keep their
// defaults.
//
//	maxDepth: 32
//	keyMatch: Lenient
//	unsupportedProperty: Fail
//	excludeDefaultValues: true
//	includeNullValues: false
//	convertObjectTypes: true
type File struct {
	MaxDepth             *int                `yaml:"maxDepth"`
	KeyMatch             *policy.KeyMatch    `yaml:"keyMatch"`
	UnsupportedProperty  *policy.Unsupported `yaml:"unsupportedProperty"`
	ExcludeDefaultValues *bool               `yaml:"excludeDefaultValues"`
	IncludeNullValues    *bool               `yaml:"includeNullValues"`
	ConvertObjectTypes   *bool               `yaml:"convertObjectTypes"`
}

// Options converts the file into options, in field order.
func (f File) Options() []Option {
	var opts []Option
	if f.MaxDepth != nil {
		opts = append(opts, WithMaxDepth(*f.MaxDepth))
	}
	if f.KeyMatch != nil {
		opts = append(opts, WithKeyMatch(*f.KeyMatch))
	}
	if f.UnsupportedProperty != nil {
		opts = append(opts, WithUnsupportedProperty(*f.UnsupportedProperty))
	}
	if f.ExcludeDefaultValues != nil {
		opts = append(opts, WithExcludeDefaultValues(*f.ExcludeDefaultValues))
	}
	if f.IncludeNullValues != nil {
		opts = append(opts, WithIncludeNullValues(*f.IncludeNullValues))
	}
	if f.ConvertObjectTypes != nil {
		opts = append(opts, WithConvertObjectTypes(*f.ConvertObjectTypes))
	}
	return opts
}

// Load reads a YAML configuration from r. Unknown keys are rejected.
// Options in opts are applied after the file, so they win.
func Load(r io.Reader, opts ...Option) (apis.Config, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return apis.Config{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	return NewConfig(append(f.Options(), opts...)...), nil
}

// LoadFile is Load on the named file.
func LoadFile(path string, opts ...Option) (apis.Config, error) {
	fh, err := os.Open(path)
	if err != nil {
		return apis.Config{}, fmt.Errorf("config: %w", err)
	}
	defer fh.Close()
	return Load(fh, opts...)
}
