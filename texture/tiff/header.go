package tiff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

type TiffHeader struct {
	ByteOrder       binary.ByteOrder
	Width, Height   int
	SamplesPerPixel int
	BitsPerSample   []int
	Photometric     int
	Compression     int
	PlanarConfig    int

	// Strip layout
	RowsPerStrip    int
	StripOffsets    []int
	StripByteCounts []int

	// Tile layout
	TileWidth      int
	TileHeight     int
	TileOffsets    []int
	TileByteCounts []int
}

// https://www.loc.gov/preservation/digital/formats/content/tiff_tags.shtml
const (
	TagImageWidth                = 256
	TagImageLength               = 257
	TagBitsPerSample             = 258
	TagCompression               = 259
	TagPhotometricInterpretation = 262
	TagStripOffsets              = 273
	TagSamplesPerPixel           = 277
	TagRowsPerStrip              = 278
	TagStripByteCounts           = 279
	TagPlanarConfiguration       = 284
	TagTileWidth                 = 322
	TagTileLength                = 323
	TagTileOffsets               = 324
	TagTileByteCounts            = 325
)

const (
	CompressionNone         = 1
	CompressionDeflate      = 8
	CompressionAdobeDeflate = 32946

	PhotometricBlackIsZero = 1
	PhotometricRGB         = 2
)

var (
	// ErrInvalidTiffHeader means the data is not a TIFF at all, so callers
	// can move on to other decoders without logging.
	ErrInvalidTiffHeader = errors.New("invalid TIFF header")
	ErrUnsupported       = errors.New("unsupported TIFF layout")
)

func parseTiffHeader(reader io.ReaderAt) (TiffHeader, error) {
	read := func(offset int64, size int) ([]byte, error) {
		buf := make([]byte, size)
		_, err := reader.ReadAt(buf, offset)
		return buf, err
	}

	header, err := read(0, 8)
	if err != nil {
		return TiffHeader{}, ErrInvalidTiffHeader
	}

	var bo binary.ByteOrder
	switch string(header[0:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return TiffHeader{}, ErrInvalidTiffHeader
	}
	if bo.Uint16(header[2:4]) != 42 {
		return TiffHeader{}, ErrInvalidTiffHeader
	}
	ifdOffset := int64(bo.Uint32(header[4:8]))

	entryCountRaw, err := read(ifdOffset, 2)
	if err != nil {
		return TiffHeader{}, fmt.Errorf("read IFD: %w", err)
	}
	numEntries := int(bo.Uint16(entryCountRaw))
	entriesRaw, err := read(ifdOffset+2, numEntries*12)
	if err != nil {
		return TiffHeader{}, fmt.Errorf("read IFD entries: %w", err)
	}

	hdr := TiffHeader{
		ByteOrder:       bo,
		SamplesPerPixel: 1,
		Photometric:     -1,
		Compression:     CompressionNone,
		PlanarConfig:    1,
	}

	for i := 0; i < numEntries; i++ {
		entry := entriesRaw[i*12 : (i+1)*12]
		tag := bo.Uint16(entry[0:2])
		typ := bo.Uint16(entry[2:4])
		count := bo.Uint32(entry[4:8])
		valOffset := int64(bo.Uint32(entry[8:12]))

		// scalar reads the first value of a SHORT (3) or LONG (4) entry.
		scalar := func() int {
			if typ == 3 {
				return int(bo.Uint16(entry[8:10]))
			}
			return int(valOffset)
		}
		readArray := func() ([]int, error) {
			size := 4
			if typ == 3 {
				size = 2
			}
			if int(count)*size <= 4 {
				out := make([]int, count)
				for i := range out {
					if size == 2 {
						out[i] = int(bo.Uint16(entry[8+i*2:]))
					} else {
						out[i] = int(bo.Uint32(entry[8:12]))
					}
				}
				return out, nil
			}
			buf, err := read(valOffset, int(count)*size)
			if err != nil {
				return nil, err
			}
			out := make([]int, count)
			for i := range out {
				if size == 2 {
					out[i] = int(bo.Uint16(buf[i*2:]))
				} else {
					out[i] = int(bo.Uint32(buf[i*4:]))
				}
			}
			return out, nil
		}

		switch tag {
		case TagImageWidth:
			hdr.Width = scalar()
		case TagImageLength:
			hdr.Height = scalar()
		case TagBitsPerSample:
			hdr.BitsPerSample, err = readArray()
		case TagCompression:
			hdr.Compression = scalar()
		case TagPhotometricInterpretation:
			hdr.Photometric = scalar()
		case TagStripOffsets:
			hdr.StripOffsets, err = readArray()
		case TagSamplesPerPixel:
			hdr.SamplesPerPixel = scalar()
		case TagRowsPerStrip:
			hdr.RowsPerStrip = scalar()
		case TagStripByteCounts:
			hdr.StripByteCounts, err = readArray()
		case TagPlanarConfiguration:
			hdr.PlanarConfig = scalar()
		case TagTileWidth:
			hdr.TileWidth = scalar()
		case TagTileLength:
			hdr.TileHeight = scalar()
		case TagTileOffsets:
			hdr.TileOffsets, err = readArray()
		case TagTileByteCounts:
			hdr.TileByteCounts, err = readArray()
		}
		if err != nil {
			return TiffHeader{}, fmt.Errorf("read tag %d: %w", tag, err)
		}
	}

	if hdr.Width <= 0 || hdr.Height <= 0 {
		return TiffHeader{}, fmt.Errorf("%w: invalid dimensions %dx%d", ErrUnsupported, hdr.Width, hdr.Height)
	}
	if hdr.RowsPerStrip <= 0 || hdr.RowsPerStrip > hdr.Height {
		hdr.RowsPerStrip = hdr.Height
	}
	return hdr, nil
}

// checkPixelFormat accepts 8-bit RGB and 8-bit grayscale, chunky layout only.
func (h TiffHeader) checkPixelFormat() error {
	if h.PlanarConfig != 1 {
		return fmt.Errorf("%w: planar configuration %d", ErrUnsupported, h.PlanarConfig)
	}
	if len(h.BitsPerSample) == 0 || h.BitsPerSample[0] != 8 {
		return fmt.Errorf("%w: bits per sample %v", ErrUnsupported, h.BitsPerSample)
	}
	switch h.Photometric {
	case PhotometricBlackIsZero:
		if h.SamplesPerPixel != 1 {
			return fmt.Errorf("%w: grayscale with %d samples", ErrUnsupported, h.SamplesPerPixel)
		}
	case PhotometricRGB:
		if h.SamplesPerPixel != 3 {
			return fmt.Errorf("%w: RGB with %d samples", ErrUnsupported, h.SamplesPerPixel)
		}
	default:
		return fmt.Errorf("%w: photometric %d", ErrUnsupported, h.Photometric)
	}
	return nil
}
