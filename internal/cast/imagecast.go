package cast

import (
	"github.com/born-ml/dipbind/internal/buffer"
	"github.com/born-ml/dipbind/internal/image"
)

// ImageCaster converts host buffer objects to images through the buffer
// adapter. None loads as a raw image.
type ImageCaster struct {
	Config *buffer.Config
	Opts   []buffer.ImportOption
}

// NewImageCaster returns an ImageCaster using cfg, or buffer.Default when
// cfg is nil.
func NewImageCaster(cfg *buffer.Config, opts ...buffer.ImportOption) ImageCaster {
	if cfg == nil {
		cfg = buffer.Default
	}
	return ImageCaster{Config: cfg, Opts: opts}
}

// Name implements Caster.
func (ImageCaster) Name() string { return "Image" }

// Load implements Caster. Malformed buffers are errors, not mismatches.
func (c ImageCaster) Load(v Value) Result[*image.Image] {
	switch v.Kind() {
	case KindNone:
		return Match(image.NewRaw(image.DTSfloat))
	case KindBuffer:
		b := v.AsBuffer()
		img, err := c.Config.BufferToImage(b.Desc, b.Owner, c.Opts...)
		if err != nil {
			return Fail[*image.Image](err)
		}
		return Match(img)
	default:
		return Skip[*image.Image](nil)
	}
}

// Emit implements Caster. The buffer views the image's memory and holds no
// reference to it.
func (c ImageCaster) Emit(img *image.Image) Value {
	return Buffer(c.Config.ImageToBuffer(img), nil)
}

// ImageOrPixel loads v as an image, or else as a pixel turned into a 0-D
// image.
func ImageOrPixel(cfg *buffer.Config, v Value) (*image.Image, error) {
	idx, out, err := Dispatch(v, Erase[*image.Image](NewImageCaster(cfg)), Erase[image.Pixel](PixelCaster{}))
	if err != nil {
		return nil, err
	}
	if idx == 0 {
		return out.(*image.Image), nil
	}
	p := out.(image.Pixel)
	img, err := image.New(nil, p.TensorElements(), p.DataType())
	if err != nil {
		return nil, err
	}
	if err := img.Set(p); err != nil {
		img.Release()
		return nil, err
	}
	return img, nil
}
