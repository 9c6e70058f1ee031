// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package dip

import (
	"github.com/born-ml/dipbind/internal/buffer"
	"github.com/born-ml/dipbind/internal/cast"
)

// Value is a host value handed to or returned from a caster.
type Value = cast.Value

// Registry resolves overloaded calls by trying casters explicitly.
type Registry = cast.Registry

// Overload is one signature, as parameter type names.
type Overload = cast.Overload

// ErrNoOverload is returned when no overload accepts a call's arguments.
var ErrNoOverload = cast.ErrNoOverload

// NewRegistry returns a registry with every built-in caster. Images are
// imported with the process-wide configuration.
func NewRegistry() *Registry { return cast.NewDefaultRegistry(buffer.Default) }

// ImageOrPixel converts a buffer, None, scalar or list to an image.
func ImageOrPixel(v Value) (*Image, error) { return cast.ImageOrPixel(buffer.Default, v) }
