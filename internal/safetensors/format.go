// Package safetensors exposes the tensors of a SafeTensors file as foreign
// buffers, so that images can view file memory without copying it.
//
// SafeTensors format:
//
//	[8 bytes: header_size (uint64 LE)]
//	[header_size bytes: JSON header]
//	[tensor data: raw bytes, C order, little-endian]
//
// The file is memory-mapped. Each imported image holds a reference on the
// mapping, which is unmapped once the file is closed and the last image is
// released. Samples are interpreted in native byte order, which matches the
// format on little-endian machines only.
package safetensors

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/born-ml/dipbind/internal/buffer"
	"github.com/born-ml/dipbind/internal/image"
)

// Common errors.
var (
	ErrHeaderTooLarge = errors.New("header exceeds maximum size")
	ErrOutOfBounds    = errors.New("tensor extends beyond data section")
	ErrUnknownTensor  = errors.New("tensor not found")
	ErrClosed         = errors.New("file is closed")
)

// MaxHeaderSize bounds the JSON header.
const MaxHeaderSize = 100 * 1024 * 1024

// DType is a SafeTensors data type name.
type DType string

// Supported SafeTensors dtypes.
const (
	Bool DType = "BOOL"
	U8   DType = "U8"
	I8   DType = "I8"
	U16  DType = "U16"
	I16  DType = "I16"
	U32  DType = "U32"
	I32  DType = "I32"
	U64  DType = "U64"
	I64  DType = "I64"
	F16  DType = "F16"
	BF16 DType = "BF16"
	F32  DType = "F32"
	F64  DType = "F64"
)

// Format returns the buffer format code of a dtype. Half-precision types
// have no image equivalent.
func (d DType) Format() (string, error) {
	switch d {
	case Bool:
		return "?", nil
	case U8:
		return "B", nil
	case I8:
		return "b", nil
	case U16:
		return "H", nil
	case I16:
		return "h", nil
	case U32:
		return "I", nil
	case I32:
		return "i", nil
	case U64:
		return "Q", nil
	case I64:
		return "q", nil
	case F32:
		return "f", nil
	case F64:
		return "d", nil
	default:
		return "", fmt.Errorf("%w: safetensors dtype %s", buffer.ErrUnsupportedFormat, d)
	}
}

// DTypeOf returns the SafeTensors dtype of an image data type.
func DTypeOf(dt image.DataType) (DType, error) {
	switch dt {
	case image.DTBin:
		return Bool, nil
	case image.DTUint8:
		return U8, nil
	case image.DTSint8:
		return I8, nil
	case image.DTUint16:
		return U16, nil
	case image.DTSint16:
		return I16, nil
	case image.DTUint32:
		return U32, nil
	case image.DTSint32:
		return I32, nil
	case image.DTUint64:
		return U64, nil
	case image.DTSint64:
		return I64, nil
	case image.DTSfloat:
		return F32, nil
	case image.DTDfloat:
		return F64, nil
	default:
		return "", fmt.Errorf("%w: %s has no safetensors dtype", buffer.ErrUnsupportedFormat, dt)
	}
}

// TensorInfo describes a tensor in the header.
type TensorInfo struct {
	DType       DType    `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"` // [start, end)
}

// Header is the parsed JSON header.
type Header struct {
	Metadata map[string]string
	Tensors  map[string]TensorInfo
}

// UnmarshalJSON implements custom JSON unmarshaling for Header.
func (h *Header) UnmarshalJSON(data []byte) error {
	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawMap); err != nil {
		return err
	}
	if metadataRaw, ok := rawMap["__metadata__"]; ok {
		if err := json.Unmarshal(metadataRaw, &h.Metadata); err != nil {
			return fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	h.Tensors = make(map[string]TensorInfo, len(rawMap))
	for key, value := range rawMap {
		if key == "__metadata__" {
			continue
		}
		var info TensorInfo
		if err := json.Unmarshal(value, &info); err != nil {
			return fmt.Errorf("failed to unmarshal tensor %s: %w", key, err)
		}
		h.Tensors[key] = info
	}
	return nil
}

// MarshalJSON implements custom JSON marshaling for Header.
func (h Header) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(h.Tensors)+1)
	if len(h.Metadata) > 0 {
		out["__metadata__"] = h.Metadata
	}
	for name, info := range h.Tensors {
		out[name] = info
	}
	return json.Marshal(out)
}
