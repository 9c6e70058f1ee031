package cast

import (
	"fmt"
	"strings"
	"sync"

	"github.com/born-ml/dipbind/internal/buffer"
	"github.com/born-ml/dipbind/internal/image"
)

// Overload is one function signature, as the names of its parameter types.
type Overload []string

// Registry resolves calls against overloaded signatures by trying the
// registered casters for each parameter explicitly.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]Loader
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]Loader)}
}

// NewDefaultRegistry returns a registry with the sample, pixel, range, image,
// data type, tensor shape and dimension array casters. Images are imported
// with cfg (buffer.Default when nil).
func NewDefaultRegistry(cfg *buffer.Config) *Registry {
	r := NewRegistry()
	r.Register(Erase[image.Sample](SampleCaster{}))
	r.Register(Erase[image.Pixel](PixelCaster{}))
	r.Register(Erase[image.Range](RangeCaster{}))
	r.Register(Erase[*image.Image](NewImageCaster(cfg)))
	r.Register(Erase[image.DataType](DataTypeCaster{}))
	r.Register(Erase[image.TensorShape](TensorShapeCaster{}))
	r.Register(Erase[[]int](DimensionArrayCaster{}))
	return r
}

// Register adds l under its name, replacing any loader of the same name.
func (r *Registry) Register(l Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[l.Name()] = l
}

// Lookup returns the loader registered under name.
func (r *Registry) Lookup(name string) (Loader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loaders[name]
	return l, ok
}

// Resolve converts args for the first overload that accepts all of them and
// returns its index with the converted values. An argument that fails hard
// aborts resolution. Images loaded for a rejected overload are released.
func (r *Registry) Resolve(args []Value, overloads ...Overload) (int, []any, error) {
	for oi, sig := range overloads {
		if len(sig) != len(args) {
			continue
		}
		out := make([]any, 0, len(args))
		matched := true
		for ai, typ := range sig {
			l, ok := r.Lookup(typ)
			if !ok {
				releaseImages(out)
				return -1, nil, fmt.Errorf("overload %d: no caster registered for %s", oi, typ)
			}
			res := l.LoadAny(args[ai])
			if res.Status == Failed {
				releaseImages(out)
				return oi, nil, fmt.Errorf("argument %d: converting %s to %s: %w", ai, args[ai].Kind(), typ, res.Err)
			}
			if res.Status == NoMatch {
				matched = false
				break
			}
			out = append(out, res.Value)
		}
		if matched {
			return oi, out, nil
		}
		releaseImages(out)
	}
	kinds := make([]string, len(args))
	for i, a := range args {
		kinds[i] = a.Kind().String()
	}
	return -1, nil, fmt.Errorf("%w: (%s)", ErrNoOverload, strings.Join(kinds, ", "))
}

func releaseImages(vals []any) {
	for _, v := range vals {
		if img, ok := v.(*image.Image); ok {
			img.Release()
		}
	}
}
