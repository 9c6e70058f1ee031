// Package imageio reads and writes image files through the buffer adapter.
//
// Decoded pixels are not copied into a new image: the pixel slice of the
// decoded picture is described as a buffer and imported with BufferToImage,
// the same way a host array would be. 16-bit pictures store big-endian
// samples and are converted to native order first.
package imageio

import (
	"errors"
	"fmt"
	stdimage "image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/born-ml/dipbind/internal/buffer"
	"github.com/born-ml/dipbind/internal/cast"
	"github.com/born-ml/dipbind/internal/image"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned for file extensions without a codec.
	ErrUnsupportedFormat = errors.New("imageio: unsupported file format")

	// ErrUnsupportedImage is returned when an image cannot be stored in the
	// requested file format.
	ErrUnsupportedImage = errors.New("imageio: image cannot be stored in this format")
)

// Format is a file format name.
type Format string

// Supported file formats.
const (
	PNG  Format = "PNG"
	JPEG Format = "JPEG"
	TIFF Format = "TIFF"
	BMP  Format = "BMP"
)

// FormatOf picks the file format from the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".jpg", ".jpeg":
		return JPEG, nil
	case ".tif", ".tiff":
		return TIFF, nil
	case ".bmp":
		return BMP, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Read decodes the image file at path. Colour pictures become tensor images
// with one tensor element per channel. cfg decides the axis order exactly
// as for any other buffer (buffer.Default when nil).
func Read(cfg *buffer.Config, path string) (*image.Image, cast.FileInformation, error) {
	if cfg == nil {
		cfg = buffer.Default
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, cast.FileInformation{}, err
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, cast.FileInformation{}, fmt.Errorf("imageio: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	m, err := decode(format, f)
	if err != nil {
		return nil, cast.FileInformation{}, err
	}
	img, colorSpace, bits, err := fromStd(cfg, m)
	if err != nil {
		return nil, cast.FileInformation{}, err
	}

	// File information lists sizes x first, whatever the axis order of img.
	sizes := img.Sizes()
	if !cfg.AreDimensionsReversed() {
		slices.Reverse(sizes)
	}
	info := cast.FileInformation{
		Name:            path,
		FileType:        string(format),
		DataType:        img.DataType(),
		SignificantBits: bits,
		Sizes:           sizes,
		TensorElements:  img.TensorElements(),
		ColorSpace:      colorSpace,
		PixelSize:       make([]float64, img.Dimensionality()),
		Origin:          make([]float64, img.Dimensionality()),
		NumberOfImages:  1,
	}
	for i := range info.PixelSize {
		info.PixelSize[i] = 1
	}
	buffer.Logger().WithFields(logrus.Fields{
		"path":   path,
		"format": format,
		"image":  img.String(),
	}).Debug("Read image file")
	return img, info, nil
}

func decode(format Format, r io.Reader) (stdimage.Image, error) {
	var (
		m   stdimage.Image
		err error
	)
	switch format {
	case PNG:
		m, err = png.Decode(r)
	case JPEG:
		m, err = jpeg.Decode(r)
	case TIFF:
		m, err = tiff.Decode(r)
	case BMP:
		m, err = bmp.Decode(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("imageio: decode %s: %w", format, err)
	}
	return m, nil
}

// Write encodes img to path in the format named by its extension. The image
// must be 2-D with 1, 3 or 4 tensor elements of type BIN, UINT8 or UINT16.
// JPEG and BMP only take 8-bit samples, JPEG no alpha channel.
func Write(cfg *buffer.Config, path string, img *image.Image) error {
	if cfg == nil {
		cfg = buffer.Default
	}
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	m, err := toStd(cfg, img)
	if err != nil {
		return err
	}
	if err := checkEncodable(format, img); err != nil {
		return err
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("imageio: create file: %w", err)
	}
	if err := encode(format, f, m); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func checkEncodable(format Format, img *image.Image) error {
	wide := img.DataType() == image.DTUint16
	switch format {
	case JPEG:
		if wide || img.TensorElements() == 4 {
			return fmt.Errorf("%w: %s with %d channels as %s", ErrUnsupportedImage, img.DataType(), img.TensorElements(), format)
		}
	case BMP:
		if wide {
			return fmt.Errorf("%w: %s as %s", ErrUnsupportedImage, img.DataType(), format)
		}
	}
	return nil
}

func encode(format Format, w io.Writer, m stdimage.Image) error {
	var err error
	switch format {
	case PNG:
		err = png.Encode(w, m)
	case JPEG:
		err = jpeg.Encode(w, m, &jpeg.Options{Quality: 95})
	case TIFF:
		err = tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case BMP:
		err = bmp.Encode(w, m)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("imageio: encode %s: %w", format, err)
	}
	return nil
}
