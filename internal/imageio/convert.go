package imageio

import (
	"encoding/binary"
	"fmt"
	stdimage "image"
	"image/color"

	"github.com/born-ml/dipbind/internal/buffer"
	"github.com/born-ml/dipbind/internal/image"
	"github.com/born-ml/dipbind/internal/parallel"
	xdraw "golang.org/x/image/draw"
)

// fromStd imports a decoded picture. It returns the image, its colour space
// name ("" for grey values) and the significant bits per sample.
func fromStd(cfg *buffer.Config, m stdimage.Image) (*image.Image, string, int, error) {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	var (
		img *image.Image
		err error
	)
	switch m := m.(type) {
	case *stdimage.Gray:
		img, err = importPix(cfg, m.Pix, m.PixOffset(b.Min.X, b.Min.Y), m.Stride, w, h, 1, 1)
		return img, "", 8, err
	case *stdimage.NRGBA:
		img, err = importPix(cfg, m.Pix, m.PixOffset(b.Min.X, b.Min.Y), m.Stride, w, h, colorChannels(m), 4)
		return img, "sRGB", 8, err
	case *stdimage.RGBA:
		img, err = importPix(cfg, m.Pix, m.PixOffset(b.Min.X, b.Min.Y), m.Stride, w, h, colorChannels(m), 4)
		return img, "sRGB", 8, err
	case *stdimage.CMYK:
		img, err = importPix(cfg, m.Pix, m.PixOffset(b.Min.X, b.Min.Y), m.Stride, w, h, 4, 4)
		return img, "CMYK", 8, err
	case *stdimage.Gray16:
		img, err = importWide(cfg, m.Pix, m.PixOffset(b.Min.X, b.Min.Y), m.Stride, w, h, 1, 1)
		return img, "", 16, err
	case *stdimage.NRGBA64:
		img, err = importWide(cfg, m.Pix, m.PixOffset(b.Min.X, b.Min.Y), m.Stride, w, h, colorChannels(m), 4)
		return img, "sRGB", 16, err
	case *stdimage.RGBA64:
		img, err = importWide(cfg, m.Pix, m.PixOffset(b.Min.X, b.Min.Y), m.Stride, w, h, colorChannels(m), 4)
		return img, "sRGB", 16, err
	case *stdimage.Paletted:
		if isGrayPalette(m.Palette) {
			gray := stdimage.NewGray(stdimage.Rect(0, 0, w, h))
			xdraw.Draw(gray, gray.Bounds(), m, b.Min, xdraw.Src)
			img, err = importPix(cfg, gray.Pix, 0, gray.Stride, w, h, 1, 1)
			return img, "", 8, err
		}
	}

	// Paletted, YCbCr and the rest are drawn into NRGBA first.
	nrgba := stdimage.NewNRGBA(stdimage.Rect(0, 0, w, h))
	xdraw.Draw(nrgba, nrgba.Bounds(), m, b.Min, xdraw.Src)
	img, err = importPix(cfg, nrgba.Pix, 0, nrgba.Stride, w, h, colorChannels(nrgba), 4)
	return img, "sRGB", 8, err
}

func isGrayPalette(pal color.Palette) bool {
	for _, c := range pal {
		r, g, b, a := c.RGBA()
		if r != g || g != b || a != 0xffff {
			return false
		}
	}
	return true
}

// colorChannels is 3 for opaque pictures, whose alpha channel is skipped
// by the pixel stride, and 4 otherwise.
func colorChannels(m interface{ Opaque() bool }) int {
	if m.Opaque() {
		return 3
	}
	return 4
}

// importPix views 8-bit interleaved pixels as an image. step is the byte
// distance between horizontally adjacent pixels, which may exceed channels.
func importPix(cfg *buffer.Config, pix []byte, offset, rowStride, w, h, channels, step int) (*image.Image, error) {
	desc := buffer.Descriptor{Mem: pix, Offset: offset, ItemSize: 1, Format: "B"}
	if channels == 1 {
		desc.Shape = []int{h, w}
		desc.Strides = []int{rowStride, step}
		return cfg.BufferToImage(desc, nil, buffer.WithoutTensorInference())
	}
	desc.Shape = []int{h, w, channels}
	desc.Strides = []int{rowStride, step, 1}
	return cfg.BufferToImage(desc, nil, buffer.WithTensorAxis(-1))
}

// importWide converts big-endian 16-bit samples to native order and imports
// the copy. step is the number of samples between horizontally adjacent
// pixels of the source; only the first channels samples of each are kept.
func importWide(cfg *buffer.Config, pix []byte, offset, rowStride, w, h, channels, step int) (*image.Image, error) {
	row := w * channels
	mem := make([]byte, 2*row*h)
	parallel.Rows(h, parallel.DefaultConfig(), func(y int) {
		src := pix[offset+y*rowStride:]
		dst := mem[2*row*y:]
		for x := range w {
			for c := range channels {
				v := binary.BigEndian.Uint16(src[2*(x*step+c):])
				binary.NativeEndian.PutUint16(dst[2*(x*channels+c):], v)
			}
		}
	})
	shape := []int{h, w}
	opt := buffer.WithoutTensorInference()
	if channels > 1 {
		shape = append(shape, channels)
		opt = buffer.WithTensorAxis(-1)
	}
	desc, err := buffer.NewDescriptor(mem, "H", shape)
	if err != nil {
		return nil, err
	}
	return cfg.BufferToImage(desc, nil, opt)
}

// toStd copies a 2-D image into a picture the standard codecs understand.
// Rows are converted concurrently.
// The first buffer axis (in cfg's order) runs over rows.
func toStd(cfg *buffer.Config, img *image.Image) (stdimage.Image, error) {
	if !img.IsForged() {
		return nil, image.ErrNotForged
	}
	if img.Dimensionality() != 2 {
		return nil, fmt.Errorf("%w: %d-D image", ErrUnsupportedImage, img.Dimensionality())
	}
	dt := img.DataType()
	if dt != image.DTBin && dt != image.DTUint8 && dt != image.DTUint16 {
		return nil, fmt.Errorf("%w: data type %s", ErrUnsupportedImage, dt)
	}
	channels := img.TensorElements()
	if channels != 1 && channels != 3 && channels != 4 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedImage, channels)
	}

	desc := cfg.ImageToBuffer(img)
	h, w := desc.Shape[0], desc.Shape[1]
	rect := stdimage.Rect(0, 0, w, h)
	at := func(y, x, c int) int {
		off := desc.Offset + y*desc.Strides[0] + x*desc.Strides[1]
		if channels > 1 {
			off += c * desc.Strides[2]
		}
		return off
	}

	if dt == image.DTUint16 {
		if channels == 1 {
			out := stdimage.NewGray16(rect)
			parallel.Rows(h, parallel.DefaultConfig(), func(y int) {
				for x := range w {
					v := binary.NativeEndian.Uint16(desc.Mem[at(y, x, 0):])
					binary.BigEndian.PutUint16(out.Pix[out.PixOffset(x, y):], v)
				}
			})
			return out, nil
		}
		out := stdimage.NewNRGBA64(rect)
		parallel.Rows(h, parallel.DefaultConfig(), func(y int) {
			for x := range w {
				p := out.Pix[out.PixOffset(x, y):]
				binary.BigEndian.PutUint16(p[6:], 0xffff)
				for c := range channels {
					binary.BigEndian.PutUint16(p[2*c:], binary.NativeEndian.Uint16(desc.Mem[at(y, x, c):]))
				}
			}
		})
		return out, nil
	}

	byteAt := func(y, x, c int) byte {
		v := desc.Mem[at(y, x, c)]
		if dt == image.DTBin && v != 0 {
			return 0xff
		}
		return v
	}
	if channels == 1 {
		out := stdimage.NewGray(rect)
		parallel.Rows(h, parallel.DefaultConfig(), func(y int) {
			for x := range w {
				out.Pix[out.PixOffset(x, y)] = byteAt(y, x, 0)
			}
		})
		return out, nil
	}
	out := stdimage.NewNRGBA(rect)
	parallel.Rows(h, parallel.DefaultConfig(), func(y int) {
		for x := range w {
			p := out.Pix[out.PixOffset(x, y):]
			p[3] = 0xff
			for c := range channels {
				p[c] = byteAt(y, x, c)
			}
		}
	})
	return out, nil
}
