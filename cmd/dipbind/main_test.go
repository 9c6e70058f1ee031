package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/born-ml/dipbind/internal/buffer"
	"github.com/born-ml/dipbind/internal/image"
	"github.com/born-ml/dipbind/internal/safetensors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	rgb, err := image.New([]int{8, 6}, 3, image.DTUint8)
	require.NoError(t, err)
	mask, err := image.New([]int{8, 6}, 1, image.DTBin)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "fixture.safetensors")
	err = safetensors.Write(path, buffer.DefaultConfig(), map[string]*image.Image{
		"rgb":  rgb,
		"mask": mask,
	}, nil)
	require.NoError(t, err)
	return path
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"version"}, &out))
	assert.Equal(t, "dipbind "+version+"\n", out.String())
}

func TestRunUsage(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(nil, &out))
	assert.Contains(t, out.String(), "inspect")

	out.Reset()
	assert.Error(t, run([]string{"frobnicate"}, &out))
}

func TestRunInspect(t *testing.T) {
	path := writeFixture(t)

	var out bytes.Buffer
	require.NoError(t, run([]string{"inspect", path}, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "mask"))
	assert.Contains(t, lines[0], "<Scalar image, BIN, sizes [8 6]>")
	assert.True(t, strings.HasPrefix(lines[1], "rgb"))
	assert.Contains(t, lines[1], "<Tensor image (3x1 column vector), UINT8, sizes [8 6]>")
	assert.Contains(t, lines[1], "strides [3 24]")
}

func TestRunInspectFlags(t *testing.T) {
	path := writeFixture(t)

	var out bytes.Buffer
	require.NoError(t, run([]string{"inspect", "-no-tensor", path}, &out))
	assert.Contains(t, out.String(), "<Scalar image, UINT8, sizes [3 8 6]>")

	out.Reset()
	require.NoError(t, run([]string{"inspect", "-keep-order", path}, &out))
	assert.Contains(t, out.String(), "<Tensor image (3x1 column vector), UINT8, sizes [6 8]>")

	out.Reset()
	require.NoError(t, run([]string{"inspect", "-threshold", "2", path}, &out))
	assert.Contains(t, out.String(), "<Scalar image, UINT8, sizes [3 8 6]>")
}

func TestRunInspectErrors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run([]string{"inspect"}, &out))
	assert.Error(t, run([]string{"inspect", filepath.Join(t.TempDir(), "missing.safetensors")}, &out))
	assert.Error(t, run([]string{"inspect", "-bogus"}, &out))
}

func TestRunExportAndInfo(t *testing.T) {
	path := writeFixture(t)
	png := filepath.Join(t.TempDir(), "rgb.png")

	var out bytes.Buffer
	require.NoError(t, run([]string{"export", path, "rgb", png}, &out))
	assert.Contains(t, out.String(), "wrote <Tensor image (3x1 column vector), UINT8, sizes [8 6]>")

	out.Reset()
	require.NoError(t, run([]string{"info", png}, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "<Tensor image (3x1 column vector), UINT8, sizes [8 6]>", lines[0])
	assert.Contains(t, lines[1], `"fileType": "PNG"`)
	assert.Contains(t, lines[1], `"sizes": [8, 6]`)

	out.Reset()
	require.NoError(t, run([]string{"info", "-keep-order", png}, &out))
	assert.Contains(t, out.String(), "sizes [6 8]")
	assert.Contains(t, out.String(), `"sizes": [6, 8]`, "host order matches the image")
}

func TestRunExportErrors(t *testing.T) {
	path := writeFixture(t)
	var out bytes.Buffer
	assert.Error(t, run([]string{"export", path, "rgb"}, &out))
	assert.Error(t, run([]string{"export", path, "missing", filepath.Join(t.TempDir(), "x.png")}, &out))
	assert.Error(t, run([]string{"export", path, "rgb", filepath.Join(t.TempDir(), "x.gif")}, &out))
	assert.Error(t, run([]string{"info"}, &out))
}
