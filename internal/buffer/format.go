package buffer

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/born-ml/dipbind/internal/image"
	"github.com/sirupsen/logrus"
)

// longIs64 reports whether a C long is 64 bits wide on this platform.
// It is 32 bits on Windows and on every 32-bit target.
const longIs64 = strconv.IntSize == 64 && runtime.GOOS != "windows"

// ParseFormat maps a buffer-protocol format code to a sample type.
//
// Besides the canonical codes, 'K'/'Q' and 'k'/'q' both name 64-bit
// integers, and 'L'/'l' name a C long, whose width depends on the platform.
func ParseFormat(code string) (image.DataType, error) {
	if code == "" {
		return 0, unsupported(code)
	}
	switch code[0] {
	case '?':
		return image.DTBin, nil
	case 'B':
		return image.DTUint8, nil
	case 'H':
		return image.DTUint16, nil
	case 'I':
		return image.DTUint32, nil
	case 'L':
		if longIs64 {
			return image.DTUint64, nil
		}
		return image.DTUint32, nil
	case 'K', 'Q':
		return image.DTUint64, nil
	case 'b':
		return image.DTSint8, nil
	case 'h':
		return image.DTSint16, nil
	case 'i':
		return image.DTSint32, nil
	case 'l':
		if longIs64 {
			return image.DTSint64, nil
		}
		return image.DTSint32, nil
	case 'k', 'q':
		return image.DTSint64, nil
	case 'f':
		return image.DTSfloat, nil
	case 'd':
		return image.DTDfloat, nil
	case 'Z':
		if len(code) > 1 {
			switch code[1] {
			case 'f':
				return image.DTScomplex, nil
			case 'd':
				return image.DTDcomplex, nil
			}
		}
	}
	return 0, unsupported(code)
}

func unsupported(code string) error {
	Logger().WithFields(logrus.Fields{
		"format": code,
	}).Warn("Attempted to convert buffer to image: data type not compatible")
	return fmt.Errorf("%w: format %q", ErrUnsupportedFormat, code)
}

// FormatOf returns the canonical format code of a sample type.
func FormatOf(dt image.DataType) string {
	switch dt {
	case image.DTBin:
		return "?"
	case image.DTUint8:
		return "B"
	case image.DTUint16:
		return "H"
	case image.DTUint32:
		return "I"
	case image.DTUint64:
		return "Q"
	case image.DTSint8:
		return "b"
	case image.DTSint16:
		return "h"
	case image.DTSint32:
		return "i"
	case image.DTSint64:
		return "q"
	case image.DTSfloat:
		return "f"
	case image.DTDfloat:
		return "d"
	case image.DTScomplex:
		return "Zf"
	case image.DTDcomplex:
		return "Zd"
	default:
		panic(fmt.Sprintf("image of unknown type %d", dt))
	}
}
