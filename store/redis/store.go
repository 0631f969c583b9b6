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

// Package redisstore keeps typed values in Redis as JSV text.
//
// Each key is a hash with three fields: data holds the JSV text, format is
// always "jsv", and version is bumped on every Set. Values written by
// anything else (a JSON cache sharing the keyspace, say) are rejected on
// read instead of being misparsed.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"dirpx.dev/jsv"
	"dirpx.dev/jsv/apis"
)

const (
	fieldData    = "data"
	fieldFormat  = "format"
	fieldVersion = "version"

	// Format is the value of the format field for JSV payloads.
	Format = "jsv"
)

var (
	// ErrNilClient is returned by New when no client is given.
	ErrNilClient = errors.New("jsv(store): client is nil")

	// ErrNotFound is returned by Get when the key does not exist.
	ErrNotFound = errors.New("jsv(store): key not found")

	// ErrForeignFormat is returned by Get when the stored payload was not
	// written as JSV.
	ErrForeignFormat = errors.New("jsv(store): payload is not jsv")
)

// Meta describes a stored value.
type Meta struct {
	Version int64
	TTL     time.Duration
}

// Option configures a Store.
type Option func(*options)

type options struct {
	prefix string
	reg    apis.Registry
}

// WithKeyPrefix prepends prefix to every key.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithRegistry serializes through reg instead of the package-level
// registry of dirpx.dev/jsv.
func WithRegistry(reg apis.Registry) Option {
	return func(o *options) { o.reg = reg }
}

// Store reads and writes values of type T.
type Store[T any] struct {
	client redis.UniversalClient
	prefix string
	reg    apis.Registry
}

// New wraps an existing client.
func New[T any](client redis.UniversalClient, opts ...Option) (*Store[T], error) {
	if client == nil {
		return nil, ErrNilClient
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{client: client, prefix: o.prefix, reg: o.reg}, nil
}

// Set stores v under key and returns the new version. A positive ttl
// sets the expiry; otherwise any previous expiry is removed.
func (s *Store[T]) Set(ctx context.Context, key string, v T, ttl time.Duration) (int64, error) {
	text, err := s.serialize(v)
	if err != nil {
		return 0, err
	}

	k := s.prefix + key
	var version *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, k, fieldData, text, fieldFormat, Format)
		version = p.HIncrBy(ctx, k, fieldVersion, 1)
		if ttl > 0 {
			p.Expire(ctx, k, ttl)
		} else {
			p.Persist(ctx, k)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("jsv(store): set %q: %w", k, err)
	}
	return version.Val(), nil
}

// Get returns the value stored under key.
func (s *Store[T]) Get(ctx context.Context, key string) (T, error) {
	v, _, err := s.Load(ctx, key)
	return v, err
}

// Load returns the value stored under key together with its metadata.
func (s *Store[T]) Load(ctx context.Context, key string) (T, Meta, error) {
	var zero T
	k := s.prefix + key

	fields, err := s.client.HGetAll(ctx, k).Result()
	if err != nil {
		return zero, Meta{}, fmt.Errorf("jsv(store): get %q: %w", k, err)
	}
	if len(fields) == 0 {
		return zero, Meta{}, ErrNotFound
	}
	if f := fields[fieldFormat]; f != Format {
		return zero, Meta{}, fmt.Errorf("%w: key %q has format %q", ErrForeignFormat, k, f)
	}

	v, err := s.parse(fields[fieldData])
	if err != nil {
		return zero, Meta{}, fmt.Errorf("jsv(store): decode %q: %w", k, err)
	}

	var meta Meta
	if n, err := strconv.ParseInt(fields[fieldVersion], 10, 64); err == nil {
		meta.Version = n
	}
	if ttl, err := s.client.TTL(ctx, k).Result(); err == nil && ttl > 0 {
		meta.TTL = ttl
	}
	return v, meta, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store[T]) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

func (s *Store[T]) serialize(v T) (string, error) {
	if s.reg != nil {
		return s.reg.Serialize(v)
	}
	return jsv.Serialize(v)
}

func (s *Store[T]) parse(text string) (T, error) {
	if s.reg == nil {
		return jsv.Parse[T](text)
	}
	var zero T
	out, err := s.reg.Parse(text, reflect.TypeFor[T]())
	if err != nil || out == nil {
		return zero, err
	}
	return out.(T), nil
}
