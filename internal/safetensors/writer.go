package safetensors

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/born-ml/dipbind/internal/buffer"
	"github.com/born-ml/dipbind/internal/image"
	"github.com/sirupsen/logrus"
)

// Write stores images in a SafeTensors file. Each image is exported with
// cfg (buffer.Default when nil), so the stored shape is the buffer shape a
// host would see, tensor axis last. Tensors are written in alphabetical
// order by name.
func Write(path string, cfg *buffer.Config, images map[string]*image.Image, metadata map[string]string) (err error) {
	if cfg == nil {
		cfg = buffer.Default
	}
	names := make([]string, 0, len(images))
	for name := range images {
		names = append(names, name)
	}
	sort.Strings(names)

	header := Header{Metadata: metadata, Tensors: make(map[string]TensorInfo, len(names))}
	descs := make([]buffer.Descriptor, len(names))
	var offset int64
	for i, name := range names {
		img := images[name]
		if !img.IsForged() {
			return fmt.Errorf("tensor %q: %w", name, image.ErrNotForged)
		}
		dtype, err := DTypeOf(img.DataType())
		if err != nil {
			return fmt.Errorf("tensor %q: %w", name, err)
		}
		desc := cfg.ImageToBuffer(img)
		size := int64(desc.Len() * desc.ItemSize)
		header.Tensors[name] = TensorInfo{
			DType:       dtype,
			Shape:       desc.Shape,
			DataOffsets: [2]int64{offset, offset + size},
		}
		descs[i] = desc
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", closeErr)
		}
	}()

	w := bufio.NewWriter(file)
	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, desc := range descs {
		if err := writeStrided(w, desc); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", names[i], err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	buffer.Logger().WithFields(logrus.Fields{
		"path":    path,
		"tensors": len(names),
	}).Debug("Wrote safetensors file")
	return nil
}

// writeStrided writes the elements addressed by desc in C order.
func writeStrided(w *bufio.Writer, desc buffer.Descriptor) error {
	ndim := desc.Ndim()
	idx := make([]int, ndim)
	for n := desc.Len(); n > 0; n-- {
		off := desc.Offset
		for i, x := range idx {
			off += x * desc.Strides[i]
		}
		if _, err := w.Write(desc.Mem[off : off+desc.ItemSize]); err != nil {
			return err
		}
		for i := ndim - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < desc.Shape[i] {
				break
			}
			idx[i] = 0
		}
	}
	return nil
}
