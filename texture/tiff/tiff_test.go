package tiff

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xtiff "golang.org/x/image/tiff"
)

func writeTiff(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tex.tif")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, xtiff.Encode(f, img, &xtiff.Options{Compression: xtiff.Uncompressed}))
	return path
}

func TestStripedGray(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			src.SetGray(x, y, color.Gray{Y: uint8(x*30 + y)})
		}
	}

	img, err := LoadStripedTiff(writeTiff(t, src))
	require.NoError(t, err)
	defer img.Close()

	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())
	r, g, b, a := img.At(5, 2).RGBA()
	assert.Equal(t, uint32(152)*0x101, r)
	assert.Equal(t, r, g)
	assert.Equal(t, r, b)
	assert.Equal(t, uint32(0xffff), a)
}

func TestStripedRejectsAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	_, err := LoadStripedTiff(writeTiff(t, src))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupported), "got %v", err)
}

func TestNotATiff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.tif")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n...."), 0o644))

	_, err := LoadStripedTiff(path)
	assert.ErrorIs(t, err, ErrInvalidTiffHeader)
	_, err = LoadTiledTiff(path)
	assert.ErrorIs(t, err, ErrInvalidTiffHeader)
}

func TestTiledRejectsStriped(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 4))
	_, err := LoadTiledTiff(writeTiff(t, src))
	assert.ErrorIs(t, err, ErrUnsupported)
}
