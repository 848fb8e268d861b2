package tiff

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"image/color"
	"io"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/exp/mmap"
)

const tileCacheSize = 200

type tiledTiff struct {
	header      TiffHeader
	reader      *mmap.ReaderAt
	tilesAcross int
	cache       *lru.Cache // tileIndex -> []byte
}

// LoadTiledTiff maps a tile-organised TIFF, uncompressed or deflate. Decoded
// tiles are kept in an LRU cache.
func LoadTiledTiff(path string) (Image, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	img, err := newTiled(reader)
	if err != nil {
		reader.Close()
		return nil, err
	}
	return img, nil
}

func newTiled(reader *mmap.ReaderAt) (*tiledTiff, error) {
	header, err := parseTiffHeader(reader)
	if err != nil {
		return nil, err
	}
	if len(header.TileOffsets) == 0 || header.TileWidth <= 0 || header.TileHeight <= 0 {
		return nil, fmt.Errorf("%w: no tiles", ErrUnsupported)
	}
	switch header.Compression {
	case CompressionNone, CompressionDeflate, CompressionAdobeDeflate:
	default:
		return nil, fmt.Errorf("%w: tiled compression %d", ErrUnsupported, header.Compression)
	}
	if err := header.checkPixelFormat(); err != nil {
		return nil, err
	}
	if len(header.TileOffsets) != len(header.TileByteCounts) {
		return nil, fmt.Errorf("%w: invalid tile offset/length", ErrUnsupported)
	}
	for i, off := range header.TileOffsets {
		if off+header.TileByteCounts[i] > reader.Len() {
			return nil, fmt.Errorf("%w: tile %d exceeds file size", ErrUnsupported, i)
		}
	}

	cache, err := lru.New(tileCacheSize)
	if err != nil {
		return nil, err
	}
	return &tiledTiff{
		header:      header,
		reader:      reader,
		tilesAcross: (header.Width + header.TileWidth - 1) / header.TileWidth,
		cache:       cache,
	}, nil
}

func (t *tiledTiff) ColorModel() color.Model {
	return color.RGBAModel
}

func (t *tiledTiff) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.header.Width, t.header.Height)
}

func (t *tiledTiff) Close() error {
	t.cache.Purge()
	return t.reader.Close()
}

func (t *tiledTiff) At(x, y int) color.Color {
	h := t.header
	if !image.Pt(x, y).In(t.Bounds()) {
		return color.RGBA{}
	}

	tileIndex := (y/h.TileHeight)*t.tilesAcross + x/h.TileWidth

	var tile []byte
	if val, ok := t.cache.Get(tileIndex); ok {
		tile = val.([]byte)
	} else {
		tile = t.loadTile(tileIndex)
		t.cache.Add(tileIndex, tile)
	}

	localX := x % h.TileWidth
	localY := y % h.TileHeight
	pixOffset := (localY*h.TileWidth + localX) * h.SamplesPerPixel
	if pixOffset+h.SamplesPerPixel > len(tile) {
		return color.RGBA{}
	}

	if h.Photometric == PhotometricRGB {
		return color.RGBA{
			R: tile[pixOffset],
			G: tile[pixOffset+1],
			B: tile[pixOffset+2],
			A: 255,
		}
	}
	v := tile[pixOffset]
	return color.RGBA{R: v, G: v, B: v, A: 255}
}

func (t *tiledTiff) loadTile(index int) []byte {
	h := t.header
	buf := make([]byte, h.TileByteCounts[index])
	if _, err := t.reader.ReadAt(buf, int64(h.TileOffsets[index])); err != nil {
		panic(fmt.Sprintf("failed to read tile %d: %v", index, err))
	}

	if h.Compression == CompressionNone {
		return buf
	}
	r, err := zlib.NewReader(bytes.NewReader(buf))
	if err != nil {
		panic(fmt.Sprintf("zlib decompression error in tile %d: %v", index, err))
	}
	defer r.Close()
	tile, err := io.ReadAll(r)
	if err != nil {
		panic(fmt.Sprintf("zlib read error in tile %d: %v", index, err))
	}
	return tile
}
