package safetensors

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/born-ml/dipbind/internal/buffer"
	"github.com/born-ml/dipbind/internal/image"
	"github.com/sirupsen/logrus"
)

// File is a memory-mapped SafeTensors file. It is the buffer.Owner of every
// descriptor it hands out: the mapping stays alive while images reference
// it, even after Close.
type File struct {
	path       string
	data       []byte // mapped region
	header     Header
	dataOffset int64

	mu     sync.Mutex
	refs   int
	closed bool
	err    error // unmap error, reported by Close when it unmaps
}

// Open maps path and parses its header.
//
// Important: Always call Close() when done (use defer).
func Open(path string) (*File, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close() // The mapping survives closing the descriptor
	}()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	data, err := mmapFile(file, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("mmap failed: %w", err)
	}

	f := &File{path: path, data: data}
	if err := f.parseHeader(); err != nil {
		_ = munmapFile(data)
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}
	buffer.Logger().WithFields(logrus.Fields{
		"path":    path,
		"tensors": len(f.header.Tensors),
		"bytes":   len(data),
	}).Debug("Mapped safetensors file")
	return f, nil
}

func (f *File) parseHeader() error {
	if len(f.data) < 8 {
		return fmt.Errorf("file too small: %d bytes (minimum 8 bytes required)", len(f.data))
	}
	headerSize := binary.LittleEndian.Uint64(f.data[:8])
	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}
	if 8+headerSize > uint64(len(f.data)) {
		return fmt.Errorf("%w: header of %d bytes in a %d-byte file", ErrOutOfBounds, headerSize, len(f.data))
	}
	if err := json.Unmarshal(f.data[8:8+headerSize], &f.header); err != nil {
		return fmt.Errorf("failed to parse header JSON: %w", err)
	}
	f.dataOffset = int64(8 + headerSize) //nolint:gosec // G115: bounded by MaxHeaderSize

	dataSize := int64(len(f.data)) - f.dataOffset
	for name, info := range f.header.Tensors {
		start, end := info.DataOffsets[0], info.DataOffsets[1]
		if start < 0 || end < start || end > dataSize {
			return fmt.Errorf("%w: tensor %q spans [%d, %d) of %d bytes", ErrOutOfBounds, name, start, end, dataSize)
		}
	}
	return nil
}

// Path returns the file path.
func (f *File) Path() string { return f.path }

// Metadata returns the metadata map from the header.
func (f *File) Metadata() map[string]string { return f.header.Metadata }

// TensorNames returns the tensor names in alphabetical order.
func (f *File) TensorNames() []string {
	names := make([]string, 0, len(f.header.Tensors))
	for name := range f.header.Tensors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TensorInfo returns the header entry of a tensor.
func (f *File) TensorInfo(name string) (TensorInfo, error) {
	info, ok := f.header.Tensors[name]
	if !ok {
		return TensorInfo{}, fmt.Errorf("%w: %s", ErrUnknownTensor, name)
	}
	return info, nil
}

// Descriptor describes the memory of a tensor as a C-ordered buffer.
func (f *File) Descriptor(name string) (buffer.Descriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.descriptorLocked(name)
}

func (f *File) descriptorLocked(name string) (buffer.Descriptor, error) {
	if f.closed {
		return buffer.Descriptor{}, ErrClosed
	}
	info, ok := f.header.Tensors[name]
	if !ok {
		return buffer.Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownTensor, name)
	}
	format, err := info.DType.Format()
	if err != nil {
		return buffer.Descriptor{}, err
	}
	start := f.dataOffset + info.DataOffsets[0]
	end := f.dataOffset + info.DataOffsets[1]
	desc, err := buffer.NewDescriptor(f.data[start:end], format, info.Shape)
	if err != nil {
		return buffer.Descriptor{}, fmt.Errorf("tensor %q: %w", name, err)
	}
	return desc, nil
}

// pin returns the descriptor of a tensor together with a reference on the
// mapping, taken atomically with the closed check. The caller gives the
// reference back with DecRef.
func (f *File) pin(name string) (buffer.Descriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	desc, err := f.descriptorLocked(name)
	if err != nil {
		return buffer.Descriptor{}, err
	}
	f.refs++
	return desc, nil
}

// Image imports a tensor as an image viewing the mapped memory. A
// concurrent Close does not unmap the tensor while it is being imported.
func (f *File) Image(cfg *buffer.Config, name string, opts ...buffer.ImportOption) (*image.Image, error) {
	if cfg == nil {
		cfg = buffer.Default
	}
	desc, err := f.pin(name)
	if err != nil {
		return nil, err
	}
	defer f.DecRef()
	return cfg.BufferToImage(desc, f, opts...)
}

// IncRef implements buffer.Owner.
func (f *File) IncRef() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs++
}

// DecRef implements buffer.Owner. The mapping is removed when the count
// drops to zero after Close.
func (f *File) DecRef() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs--
	if f.refs == 0 && f.closed {
		f.unmapLocked()
	}
}

// Refs returns the number of live references on the mapping.
func (f *File) Refs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refs
}

// IsMapped reports whether the mapping is still in place.
func (f *File) IsMapped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data != nil
}

// Close releases the file's own hold on the mapping. The mapping itself is
// removed once no image references it any more.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	if f.refs == 0 {
		f.unmapLocked()
	}
	return f.err
}

func (f *File) unmapLocked() {
	if f.data == nil {
		return
	}
	f.err = munmapFile(f.data)
	f.data = nil
	buffer.Logger().WithFields(logrus.Fields{
		"path": f.path,
	}).Debug("Unmapped safetensors file")
}
