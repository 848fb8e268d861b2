package texture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"

	"github.com/echoflaresat/orrery/colors"
	"github.com/echoflaresat/orrery/logging"
	"github.com/echoflaresat/orrery/texture/tiff"
	"github.com/echoflaresat/orrery/vectors"
	ctiff "github.com/echoflaresat/tiff"

	_ "golang.org/x/image/webp" // register WebP format with image.Decode
	_ "image/jpeg"              // register JPEG format with image.Decode
	_ "image/png"               // register PNG format with image.Decode
)

// PlaceholderColor is the flat color substituted for textures that fail to load.
var PlaceholderColor = colors.MustParseHex("#444444")

// Texture is an image sampled by direction (spheres) or by UV (rings).
type Texture struct {
	Width       int
	Height      int
	Placeholder bool
	img         image.Image
	closer      io.Closer
}

// FromImage wraps an already decoded image.
func FromImage(img image.Image) Texture {
	b := img.Bounds()
	return Texture{Width: b.Dx(), Height: b.Dy(), img: img}
}

// Placeholder returns a size×size texture filled with c.
func Placeholder(c colors.Color4, size int) Texture {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	px := c.ToNRGBA()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, px)
		}
	}
	t := FromImage(img)
	t.Placeholder = true
	return t
}

// Load decodes the image at path. Uncompressed striped or tiled TIFFs are
// memory-mapped and must be released with Close; everything else is decoded
// into memory.
func Load(path string) (Texture, error) {
	return LoadLogged(context.Background(), path, nil)
}

// LoadLogged is Load with decoder fallbacks reported to log at Debug.
func LoadLogged(ctx context.Context, path string, log logging.Logger) (Texture, error) {
	img, err := loadImage(ctx, path, logging.OrNoop(log))
	if err != nil {
		return Texture{}, err
	}
	t := FromImage(img)
	if c, ok := img.(io.Closer); ok {
		t.closer = c
	}
	return t, nil
}

func loadImage(ctx context.Context, path string, log logging.Logger) (image.Image, error) {
	img, err := tiff.LoadStripedTiff(path)
	if err == nil {
		return img, nil
	}
	if !isNotTiff(err) {
		log.Debug(ctx, "striped TIFF reader declined", logging.String("path", path), logging.Err(err))
	}

	img, err = tiff.LoadTiledTiff(path)
	if err == nil {
		return img, nil
	}
	tiffErr := err

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !isNotTiff(tiffErr) {
		log.Debug(ctx, "tiled TIFF reader declined", logging.String("path", path), logging.Err(tiffErr))
		// A real TIFF the mmap readers cannot handle: compressed strips,
		// alpha channels, 16-bit samples.
		decoded, err := ctiff.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return decoded, nil
	}

	decoded, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return decoded, nil
}

func isNotTiff(err error) bool {
	return errors.Is(err, tiff.ErrInvalidTiffHeader)
}

// Close releases memory-mapped pixel data, if any.
func (t Texture) Close() error {
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

// Image exposes the backing image.
func (t Texture) Image() image.Image {
	return t.img
}

// Sample maps a direction in the sphere's local frame (+Y through the north
// pole) onto an equirectangular map and returns the nearest texel. The seam
// sits on -X, matching the UV layout of a standard lat/long sphere mesh.
func (t Texture) Sample(dir vectors.Vec3) colors.Color4 {
	d := dir.Normalize()

	theta := math.Acos(clamp(d.Y, -1, 1))
	phi := math.Atan2(d.Z, -d.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return t.SampleUV(phi/(2*math.Pi), theta/math.Pi)
}

// SampleUV returns the texel at u across and v down, both in [0,1].
func (t Texture) SampleUV(u, v float64) colors.Color4 {
	if t.img == nil || t.Width == 0 || t.Height == 0 {
		return PlaceholderColor
	}
	x := int(u * float64(t.Width))
	y := int(v * float64(t.Height))

	if x < 0 {
		x = 0
	} else if x >= t.Width {
		x = t.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= t.Height {
		y = t.Height - 1
	}

	b := t.img.Bounds()
	return colors.FromStandardColor(t.img.At(b.Min.X+x, b.Min.Y+y))
}

// SampleRadial samples along the horizontal midline, the layout used for ring
// textures where u runs from the inner to the outer edge.
func (t Texture) SampleRadial(u float64) colors.Color4 {
	return t.SampleUV(u, 0.5)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
