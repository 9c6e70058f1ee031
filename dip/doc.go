// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dip converts between host buffer-protocol objects and strided
// tensor images without copying sample data.
//
// # Overview
//
// A host runtime describes memory as a buffer: a memory block, an item
// size, a format code and per-axis extents and byte strides. An Image is
// the native view of such memory, with the fastest-varying axis first and
// an optional tensor (channel) axis. This package provides:
//   - FromBuffer / ToBuffer: zero-copy import and export
//   - Process-wide axis-order and tensor-inference configuration
//   - Casters for samples, pixels, ranges and structured results
//
// # Basic Usage
//
//	mem := make([]byte, 3*100*100*4)
//	desc, _ := dip.NewDescriptor(mem, "f", []int{100, 100, 3})
//	img, _ := dip.FromBuffer(desc, owner)
//	fmt.Println(dip.ImageRepr(img)) // <Tensor image (3x1 column vector), SFLOAT, sizes [100 100]>
//
// # Axis Order
//
// By default the order of axes is reversed at the boundary, so a host
// array of shape (rows, cols) becomes an image of sizes [cols rows]. Call
// ReverseDimensions once at start-up to keep host order instead. The
// setting is not synchronized; do not change it while other goroutines
// convert buffers.
//
// # Tensor Inference
//
// A buffer with more than two axes whose first or last axis has at most
// TensorConversionThreshold elements (4 by default) gets that axis as
// tensor axis. Use WithTensorAxis to choose the axis explicitly, or
// WithoutTensorInference to keep every axis spatial.
//
// # Ownership
//
// The host object passed as Owner has its reference count incremented for
// as long as any image views its memory. The count is decremented exactly
// once, under the configured HostLock, when the last such image is
// released or collected.
package dip
