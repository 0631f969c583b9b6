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
	"log/slog"

	"dirpx.dev/jsv/apis"
	"dirpx.dev/jsv/policy"
)

const (
	// DefaultMaxDepth represents the default for MaxDepth.
	// 64 levels of maps and lists is far beyond any real payload.
	DefaultMaxDepth = apis.DefaultMaxDepth
	// DefaultKeyMatch represents the default for KeyMatch.
	DefaultKeyMatch = policy.Exact
	// DefaultUnsupportedProperty represents the default for UnsupportedProperty.
	DefaultUnsupportedProperty = policy.Skip
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Ensure MaxDepth is valid.
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	return cfg
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		MaxDepth:            DefaultMaxDepth,
		KeyMatch:            DefaultKeyMatch,
		UnsupportedProperty: DefaultUnsupportedProperty,
	}
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithMaxDepth sets the MaxDepth option.
// A non-positive value resets to the default.
func WithMaxDepth(max int) Option {
	return func(c *apis.Config) {
		if max <= 0 {
			c.MaxDepth = DefaultMaxDepth
			return
		}
		c.MaxDepth = max
	}
}

// WithKeyMatch sets the KeyMatch option.
func WithKeyMatch(m policy.KeyMatch) Option {
	return func(c *apis.Config) {
		c.KeyMatch = m
	}
}

// WithUnsupportedProperty sets the UnsupportedProperty option.
func WithUnsupportedProperty(u policy.Unsupported) Option {
	return func(c *apis.Config) {
		c.UnsupportedProperty = u
	}
}

// WithExcludeDefaultValues sets the ExcludeDefaultValues option.
func WithExcludeDefaultValues(exclude bool) Option {
	return func(c *apis.Config) {
		c.ExcludeDefaultValues = exclude
	}
}

// WithIncludeNullValues sets the IncludeNullValues option.
func WithIncludeNullValues(include bool) Option {
	return func(c *apis.Config) {
		c.IncludeNullValues = include
	}
}

// WithConvertObjectTypes sets the ConvertObjectTypes option.
func WithConvertObjectTypes(convert bool) Option {
	return func(c *apis.Config) {
		c.ConvertObjectTypes = convert
	}
}

// WithLogger sets the Logger option. Nil discards diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *apis.Config) {
		c.Logger = l
	}
}
