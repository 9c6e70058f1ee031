// Package main provides the dipbind CLI.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/dipbind/internal/buffer"
	"github.com/born-ml/dipbind/internal/imageio"
	"github.com/born-ml/dipbind/internal/safetensors"
	"github.com/sirupsen/logrus"
)

const version = "v0.0.1-dev"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		logrus.WithError(err).Error("dipbind failed")
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return nil
	}
	switch args[0] {
	case "version":
		fmt.Fprintf(out, "dipbind %s\n", version)
		return nil
	case "inspect":
		return inspect(args[1:], out)
	case "info":
		return info(args[1:], out)
	case "export":
		return export(args[1:], out)
	default:
		usage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage(out io.Writer) {
	fmt.Fprintf(out, "dipbind %s - zero-copy buffer to image adapter\n\n", version)
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  version                       Show version")
	fmt.Fprintln(out, "  inspect [flags] FILE          Import every tensor of a .safetensors file as an image")
	fmt.Fprintln(out, "  info [flags] IMAGE            Show file information of a PNG, JPEG, TIFF or BMP file")
	fmt.Fprintln(out, "  export [flags] FILE NAME OUT  Write one tensor of a .safetensors file as an image file")
}

// commonFlags registers the adapter flags shared by every command.
type commonFlags struct {
	keepOrder *bool
	threshold *int
	noTensor  *bool
	verbose   *bool
}

func newFlagSet(name string, out io.Writer) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs, &commonFlags{
		keepOrder: fs.Bool("keep-order", false, "do not reverse axis order"),
		threshold: fs.Int("threshold", buffer.DefaultTensorConversionThreshold, "tensor conversion threshold"),
		noTensor:  fs.Bool("no-tensor", false, "keep every axis spatial"),
		verbose:   fs.Bool("v", false, "debug logging"),
	}
}

// setup applies the flags: logging first, then the adapter configuration.
func (c *commonFlags) setup() (*buffer.Config, []buffer.ImportOption) {
	if *c.verbose {
		logger := logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.DebugLevel)
		buffer.SetLogger(logger)
	}

	cfg := buffer.DefaultConfig()
	if *c.keepOrder {
		cfg.ReverseDimensions()
	}
	cfg.SetTensorConversionThreshold(*c.threshold)
	var opts []buffer.ImportOption
	if *c.noTensor {
		opts = append(opts, buffer.WithoutTensorInference())
	}
	return cfg, opts
}

func inspect(args []string, out io.Writer) error {
	fs, flags := newFlagSet("inspect", out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("inspect needs exactly one file, got %d", fs.NArg())
	}
	cfg, opts := flags.setup()

	f, err := safetensors.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	for _, name := range f.TensorNames() {
		ti, _ := f.TensorInfo(name)
		img, err := f.Image(cfg, name, opts...)
		if err != nil {
			fmt.Fprintf(out, "%-32s %-5s %v  error: %v\n", name, ti.DType, ti.Shape, err)
			continue
		}
		fmt.Fprintf(out, "%-32s %-5s %v  %s strides %v\n", name, ti.DType, ti.Shape, img, img.Strides())
		img.Release()
	}
	return nil
}

func info(args []string, out io.Writer) error {
	fs, flags := newFlagSet("info", out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("info needs exactly one file, got %d", fs.NArg())
	}
	cfg, _ := flags.setup()

	img, fi, err := imageio.Read(cfg, fs.Arg(0))
	if err != nil {
		return err
	}
	defer img.Release()
	fmt.Fprintln(out, img)
	fmt.Fprintln(out, fi.Emit(cfg))
	return nil
}

func export(args []string, out io.Writer) error {
	fs, flags := newFlagSet("export", out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 3 {
		return fmt.Errorf("export needs FILE NAME OUT, got %d arguments", fs.NArg())
	}
	cfg, opts := flags.setup()

	f, err := safetensors.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	img, err := f.Image(cfg, fs.Arg(1), opts...)
	if err != nil {
		return err
	}
	defer img.Release()
	if err := imageio.Write(cfg, fs.Arg(2), img); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s to %s\n", img, fs.Arg(2))
	return nil
}
