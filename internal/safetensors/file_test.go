package safetensors

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/dipbind/internal/buffer"
	"github.com/born-ml/dipbind/internal/image"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeRaw writes a SafeTensors file from a header and a data section.
func writeRaw(t *testing.T, header map[string]any, data []byte) string {
	t.Helper()
	headerJSON, err := json.Marshal(header)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "raw.safetensors")
	buf := make([]byte, 8, 8+len(headerJSON)+len(data))
	binary.LittleEndian.PutUint64(buf, uint64(len(headerJSON)))
	buf = append(buf, headerJSON...)
	buf = append(buf, data...)
	require.NoError(t, os.WriteFile(path, buf, 0o600))
	return path
}

func rgbImage(t *testing.T) *image.Image {
	t.Helper()
	img, err := image.New([]int{5, 6}, 3, image.DTUint8)
	require.NoError(t, err)
	for i := range img.NumberOfPixels() {
		p := image.NewPixel(image.DTUint8, 3)
		for c := range 3 {
			p.Set(c, image.IntSample(int64(3*i+c)))
		}
		require.NoError(t, img.SetIndex(p, i))
	}
	return img
}

func TestWriteThenOpen(t *testing.T) {
	cfg := buffer.DefaultConfig()
	path := filepath.Join(t.TempDir(), "images.safetensors")

	gray, err := image.New([]int{3, 5}, 1, image.DTSfloat)
	require.NoError(t, err)
	require.NoError(t, gray.Set(image.PixelFromSample(image.FloatSample(1.5)), 2, 4))

	err = Write(path, cfg, map[string]*image.Image{
		"rgb":  rgbImage(t),
		"gray": gray,
	}, map[string]string{"source": "test"})
	require.NoError(t, err)

	f, err := Open(path)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, f.Close())
	}()

	assert.Equal(t, path, f.Path())
	assert.Equal(t, map[string]string{"source": "test"}, f.Metadata())
	assert.Equal(t, []string{"gray", "rgb"}, f.TensorNames())

	info, err := f.TensorInfo("rgb")
	require.NoError(t, err)
	assert.Equal(t, U8, info.DType)
	assert.Equal(t, []int{6, 5, 3}, info.Shape)

	info, err = f.TensorInfo("gray")
	require.NoError(t, err)
	assert.Equal(t, F32, info.DType)
	assert.Equal(t, []int{5, 3}, info.Shape)

	rgb, err := f.Image(cfg, "rgb")
	require.NoError(t, err)
	defer rgb.Release()
	assert.Equal(t, []int{5, 6}, rgb.Sizes())
	assert.Equal(t, 3, rgb.TensorElements())
	p, err := rgb.AtIndex(5)
	require.NoError(t, err)
	assert.Equal(t, int64(16), p.At(1).Int64())

	g, err := f.Image(cfg, "gray")
	require.NoError(t, err)
	defer g.Release()
	assert.Equal(t, []int{3, 5}, g.Sizes())
	p, err = g.At(2, 4)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, p.At(0).Float64(), 0)
}

func TestWriteStridedView(t *testing.T) {
	cfg := buffer.DefaultConfig()
	img, err := image.New([]int{6}, 1, image.DTSint16)
	require.NoError(t, err)
	for i := range 6 {
		require.NoError(t, img.Set(image.PixelFromSample(image.IntSample(int64(i))), i))
	}
	view, err := img.View(image.Range{Start: -1, Stop: 0, Step: 2})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "view.safetensors")
	require.NoError(t, Write(path, cfg, map[string]*image.Image{"v": view}, nil))

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.Image(cfg, "v")
	require.NoError(t, err)
	defer got.Release()
	assert.Equal(t, []int{3}, got.Sizes())
	for i, want := range []int64{5, 3, 1} {
		p, err := got.At(i)
		require.NoError(t, err)
		assert.Equal(t, want, p.At(0).Int64())
	}
}

func TestWriteRejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.safetensors")

	err := Write(path, nil, map[string]*image.Image{"raw": image.NewRaw(image.DTUint8)}, nil)
	assert.ErrorIs(t, err, image.ErrNotForged)

	c, err := image.New([]int{2}, 1, image.DTScomplex)
	require.NoError(t, err)
	err = Write(path, nil, map[string]*image.Image{"c": c}, nil)
	assert.ErrorIs(t, err, buffer.ErrUnsupportedFormat)
}

func TestImageReferencesMapping(t *testing.T) {
	cfg := buffer.DefaultConfig()
	path := filepath.Join(t.TempDir(), "refs.safetensors")
	require.NoError(t, Write(path, cfg, map[string]*image.Image{"rgb": rgbImage(t)}, nil))

	f, err := Open(path)
	require.NoError(t, err)

	a, err := f.Image(cfg, "rgb")
	require.NoError(t, err)
	b, err := f.Image(cfg, "rgb")
	require.NoError(t, err)
	assert.Equal(t, 2, f.Refs())

	// Images keep the mapping alive past Close
	require.NoError(t, f.Close())
	assert.True(t, f.IsMapped())
	_, err = f.Descriptor("rgb")
	assert.ErrorIs(t, err, ErrClosed)

	p, err := a.AtIndex(0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.At(2).Int64())

	a.Release()
	assert.True(t, f.IsMapped())
	b.Release()
	assert.Equal(t, 0, f.Refs())
	assert.False(t, f.IsMapped())

	// Closing twice is fine
	require.NoError(t, f.Close())
}

func TestCloseDuringImportKeepsMapping(t *testing.T) {
	cfg := buffer.DefaultConfig()
	path := filepath.Join(t.TempDir(), "pin.safetensors")
	require.NoError(t, Write(path, cfg, map[string]*image.Image{"rgb": rgbImage(t)}, nil))

	f, err := Open(path)
	require.NoError(t, err)

	// Close lands between the descriptor lookup and the owner increment.
	desc, err := f.pin("rgb")
	require.NoError(t, err)
	assert.Equal(t, 1, f.Refs())
	require.NoError(t, f.Close())
	assert.True(t, f.IsMapped())

	img, err := cfg.BufferToImage(desc, f)
	require.NoError(t, err)
	f.DecRef()
	assert.Equal(t, 1, f.Refs())
	assert.True(t, f.IsMapped())

	p, err := img.AtIndex(5)
	require.NoError(t, err)
	assert.Equal(t, int64(16), p.At(1).Int64())

	img.Release()
	assert.Equal(t, 0, f.Refs())
	assert.False(t, f.IsMapped())

	_, err = f.Image(cfg, "rgb")
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 0, f.Refs())
}

func TestLogsThroughAdapterLogger(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	buffer.SetLogger(logger)
	defer buffer.SetLogger(nil)

	path := filepath.Join(t.TempDir(), "log.safetensors")
	require.NoError(t, Write(path, nil, map[string]*image.Image{"rgb": rgbImage(t)}, nil))
	f, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var messages []string
	for _, e := range hook.AllEntries() {
		messages = append(messages, e.Message)
	}
	assert.Contains(t, messages, "Wrote safetensors file")
	assert.Contains(t, messages, "Mapped safetensors file")
	assert.Contains(t, messages, "Unmapped safetensors file")
}

func TestCopyOnWriteMapping(t *testing.T) {
	cfg := buffer.DefaultConfig()
	path := filepath.Join(t.TempDir(), "cow.safetensors")
	require.NoError(t, Write(path, cfg, map[string]*image.Image{"rgb": rgbImage(t)}, nil))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	f, err := Open(path)
	require.NoError(t, err)
	img, err := f.Image(cfg, "rgb")
	require.NoError(t, err)
	require.NoError(t, img.SetIndex(image.PixelFromSample(image.IntSample(255)), 0))
	img.Release()
	require.NoError(t, f.Close())

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.safetensors"))
	assert.Error(t, err)

	path := writeRaw(t, map[string]any{
		"x": map[string]any{"dtype": "F32", "shape": []int{4}, "data_offsets": []int{0, 16}},
	}, make([]byte, 8))
	_, err = Open(path)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	tiny := filepath.Join(t.TempDir(), "tiny.safetensors")
	require.NoError(t, os.WriteFile(tiny, []byte{1, 2, 3}, 0o600))
	_, err = Open(tiny)
	assert.Error(t, err)
}

func TestHalfPrecisionUnsupported(t *testing.T) {
	path := writeRaw(t, map[string]any{
		"h": map[string]any{"dtype": "F16", "shape": []int{2}, "data_offsets": []int{0, 4}},
		"f": map[string]any{"dtype": "F32", "shape": []int{1}, "data_offsets": []int{4, 8}},
	}, make([]byte, 8))

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Image(nil, "h")
	assert.ErrorIs(t, err, buffer.ErrUnsupportedFormat)
	assert.Equal(t, 0, f.Refs())

	_, err = f.Image(nil, "nope")
	assert.ErrorIs(t, err, ErrUnknownTensor)

	img, err := f.Image(nil, "f")
	require.NoError(t, err)
	assert.Equal(t, 1, f.Refs())
	img.Release()
	assert.Equal(t, 0, f.Refs())
}

func TestDTypeMapping(t *testing.T) {
	for _, dt := range image.DataTypes {
		st, err := DTypeOf(dt)
		if dt.IsComplex() {
			assert.ErrorIs(t, err, buffer.ErrUnsupportedFormat)
			continue
		}
		require.NoError(t, err, dt.String())
		code, err := st.Format()
		require.NoError(t, err)
		back, err := buffer.ParseFormat(code)
		require.NoError(t, err)
		assert.Equal(t, dt, back)
	}

	_, err := BF16.Format()
	assert.ErrorIs(t, err, buffer.ErrUnsupportedFormat)
}
