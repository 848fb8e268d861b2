package tiff

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"golang.org/x/exp/mmap"
)

// Image is a TIFF decoded lazily from a memory map. Pixels are read on demand
// so multi-gigapixel surface maps do not have to fit in memory.
type Image interface {
	image.Image
	io.Closer
}

type stripedTiff struct {
	header TiffHeader
	reader *mmap.ReaderAt
}

// LoadStripedTiff maps an uncompressed, strip-organised TIFF.
func LoadStripedTiff(path string) (Image, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	img, err := newStriped(reader)
	if err != nil {
		reader.Close()
		return nil, err
	}
	return img, nil
}

func newStriped(reader *mmap.ReaderAt) (*stripedTiff, error) {
	header, err := parseTiffHeader(reader)
	if err != nil {
		return nil, err
	}
	if len(header.StripOffsets) == 0 {
		return nil, fmt.Errorf("%w: no strips", ErrUnsupported)
	}
	if header.Compression != CompressionNone {
		return nil, fmt.Errorf("%w: striped compression %d", ErrUnsupported, header.Compression)
	}
	if err := header.checkPixelFormat(); err != nil {
		return nil, err
	}
	if len(header.StripOffsets) != len(header.StripByteCounts) {
		return nil, fmt.Errorf("%w: invalid strip offset/length", ErrUnsupported)
	}

	rowBytes := header.Width * header.SamplesPerPixel
	for i, off := range header.StripOffsets {
		rows := header.RowsPerStrip
		if last := header.Height - i*header.RowsPerStrip; last < rows {
			rows = last
		}
		if off+rows*rowBytes > reader.Len() {
			return nil, fmt.Errorf("%w: strip %d exceeds file size", ErrUnsupported, i)
		}
	}
	return &stripedTiff{header: header, reader: reader}, nil
}

func (t *stripedTiff) ColorModel() color.Model {
	return color.RGBAModel
}

func (t *stripedTiff) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.header.Width, t.header.Height)
}

func (t *stripedTiff) Close() error {
	return t.reader.Close()
}

func (t *stripedTiff) At(x, y int) color.Color {
	h := t.header
	if !image.Pt(x, y).In(t.Bounds()) {
		return color.RGBA{}
	}

	strip := y / h.RowsPerStrip
	localY := y % h.RowsPerStrip
	idx := h.StripOffsets[strip] + (localY*h.Width+x)*h.SamplesPerPixel

	switch h.Photometric {
	case PhotometricRGB:
		var buf [3]byte
		if _, err := t.reader.ReadAt(buf[:], int64(idx)); err != nil {
			panic(fmt.Sprintf("could not read RGB pixel at (%d,%d): %v", x, y, err))
		}
		return color.RGBA{R: buf[0], G: buf[1], B: buf[2], A: 255}
	default:
		var b [1]byte
		if _, err := t.reader.ReadAt(b[:], int64(idx)); err != nil {
			panic(fmt.Sprintf("could not read grayscale pixel at (%d,%d): %v", x, y, err))
		}
		return color.RGBA{R: b[0], G: b[0], B: b[0], A: 255}
	}
}
