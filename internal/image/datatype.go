// Package image provides the native strided tensor-image model that foreign
// buffers are adapted to and from.
package image

import (
	"fmt"
	"strings"
)

// DataType is the element type tag of an image sample.
type DataType int

// Supported sample types.
const (
	DTBin DataType = iota
	DTUint8
	DTUint16
	DTUint32
	DTUint64
	DTSint8
	DTSint16
	DTSint32
	DTSint64
	DTSfloat
	DTDfloat
	DTScomplex
	DTDcomplex
)

// DataTypes lists every supported data type in declaration order.
var DataTypes = []DataType{
	DTBin,
	DTUint8, DTUint16, DTUint32, DTUint64,
	DTSint8, DTSint16, DTSint32, DTSint64,
	DTSfloat, DTDfloat,
	DTScomplex, DTDcomplex,
}

// Size returns the byte size of one sample of the data type.
func (dt DataType) Size() int {
	switch dt {
	case DTBin, DTUint8, DTSint8:
		return 1
	case DTUint16, DTSint16:
		return 2
	case DTUint32, DTSint32, DTSfloat:
		return 4
	case DTUint64, DTSint64, DTDfloat, DTScomplex:
		return 8
	case DTDcomplex:
		return 16
	default:
		panic("unknown data type")
	}
}

// String returns the canonical upper-case name of the data type.
func (dt DataType) String() string {
	switch dt {
	case DTBin:
		return "BIN"
	case DTUint8:
		return "UINT8"
	case DTUint16:
		return "UINT16"
	case DTUint32:
		return "UINT32"
	case DTUint64:
		return "UINT64"
	case DTSint8:
		return "SINT8"
	case DTSint16:
		return "SINT16"
	case DTSint32:
		return "SINT32"
	case DTSint64:
		return "SINT64"
	case DTSfloat:
		return "SFLOAT"
	case DTDfloat:
		return "DFLOAT"
	case DTScomplex:
		return "SCOMPLEX"
	case DTDcomplex:
		return "DCOMPLEX"
	default:
		return "unknown"
	}
}

// IsBinary reports whether dt is the binary type.
func (dt DataType) IsBinary() bool { return dt == DTBin }

// IsUnsigned reports whether dt is an unsigned integer type.
func (dt DataType) IsUnsigned() bool {
	return dt >= DTUint8 && dt <= DTUint64
}

// IsSigned reports whether dt is a signed integer type.
func (dt DataType) IsSigned() bool {
	return dt >= DTSint8 && dt <= DTSint64
}

// IsInteger reports whether dt is a signed or unsigned integer type.
func (dt DataType) IsInteger() bool { return dt.IsUnsigned() || dt.IsSigned() }

// IsFloat reports whether dt is a real floating-point type.
func (dt DataType) IsFloat() bool { return dt == DTSfloat || dt == DTDfloat }

// IsComplex reports whether dt is a complex type.
func (dt DataType) IsComplex() bool { return dt == DTScomplex || dt == DTDcomplex }

// IsValid reports whether dt is one of the supported data types.
func (dt DataType) IsValid() bool { return dt >= DTBin && dt <= DTDcomplex }

// ParseDataType converts a data type name to a DataType.
// Names are case-insensitive; "bool" and "binary" are accepted for DTBin.
func ParseDataType(name string) (DataType, error) {
	switch n := strings.ToUpper(strings.TrimSpace(name)); n {
	case "BOOL", "BINARY":
		return DTBin, nil
	default:
		for _, dt := range DataTypes {
			if dt.String() == n {
				return dt, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDataType, name)
}
