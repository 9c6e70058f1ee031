package buffer

import "slices"

// DefaultTensorConversionThreshold is the largest extent of a first or last
// axis that is turned into the tensor axis on import.
const DefaultTensorConversionThreshold = 4

// Config controls how buffers and images are translated into each other.
//
// Axis order: images list the fastest-varying axis first, while host
// buffers usually list it last. By default the adapter reverses the order of
// sizes and strides in both directions. ReverseDimensions switches that off
// for the rest of the program; buffers imported before and after the switch
// use different conventions, so it should be called once, at start-up.
//
// Config has no internal locking. Changing it while other goroutines run
// adapter calls with it is a data race; a reader may or may not observe the
// change.
type Config struct {
	reverse   bool
	threshold int

	// Lock is held around every decrement of a foreign reference count.
	// Nil means the host needs no lock.
	Lock HostLock
}

// DefaultConfig returns a configuration that reverses axis order and uses
// DefaultTensorConversionThreshold.
func DefaultConfig() *Config {
	return &Config{
		reverse:   true,
		threshold: DefaultTensorConversionThreshold,
	}
}

// Default is the process-wide configuration.
var Default = DefaultConfig()

// ReverseDimensions stops the adapter from reversing axis order. There is no
// way back.
func (c *Config) ReverseDimensions() {
	c.reverse = false
}

// AreDimensionsReversed reports whether the adapter reverses axis order.
func (c *Config) AreDimensionsReversed() bool { return c.reverse }

// SetTensorConversionThreshold sets the largest first or last axis extent
// that tensor inference turns into a tensor axis.
func (c *Config) SetTensorConversionThreshold(n int) {
	c.threshold = n
}

// TensorConversionThreshold returns the current threshold.
func (c *Config) TensorConversionThreshold() int { return c.threshold }

// orderAxes reverses sizes and strides in place when the configuration
// asks for it.
func (c *Config) orderAxes(sizes, strides []int) {
	if !c.reverse {
		return
	}
	slices.Reverse(sizes)
	slices.Reverse(strides)
}
