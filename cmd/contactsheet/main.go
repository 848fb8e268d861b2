// Command contactsheet lays snapshot images out on a grid, for reviewing a
// scripted session at a glance.
package main

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/echoflaresat/orrery/texture"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Fprintf(os.Stderr, "Usage: %s <cols>x<rows> <output.png> <frame1> <frame2> ...\n", os.Args[0])
		os.Exit(1)
	}

	cols, rows, err := parseGrid(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	output := os.Args[2]
	inputs := os.Args[3:]
	if len(inputs) > cols*rows {
		log.Fatalf("Grid %dx%d holds %d frames, got %d", cols, rows, cols*rows, len(inputs))
	}

	canvas, err := compose(cols, rows, inputs)
	if err != nil {
		log.Fatal(err)
	}
	if err := save(output, canvas); err != nil {
		log.Fatal(err)
	}
}

func parseGrid(s string) (cols, rows int, err error) {
	c, r, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid grid %q (expected NxM)", s)
	}
	if cols, err = strconv.Atoi(c); err != nil || cols <= 0 {
		return 0, 0, fmt.Errorf("invalid cols %q", c)
	}
	if rows, err = strconv.Atoi(r); err != nil || rows <= 0 {
		return 0, 0, fmt.Errorf("invalid rows %q", r)
	}
	return cols, rows, nil
}

// compose draws each frame into its cell, row-major. All frames must share
// the size of the first; unused cells stay transparent.
func compose(cols, rows int, inputs []string) (*image.NRGBA, error) {
	var canvas *image.NRGBA
	var tileW, tileH int
	for idx, path := range inputs {
		fmt.Printf("Processing %s\n", path)
		tex, err := texture.Load(path)
		if err != nil {
			return nil, fmt.Errorf("could not load %q: %w", path, err)
		}
		tile := tex.Image()

		if canvas == nil {
			tileW, tileH = tex.Width, tex.Height
			canvas = image.NewNRGBA(image.Rect(0, 0, cols*tileW, rows*tileH))
		} else if tileW != tex.Width || tileH != tex.Height {
			tex.Close()
			return nil, fmt.Errorf("frame size mismatch for %q: expected %dx%d, got %dx%d",
				path, tileW, tileH, tex.Width, tex.Height)
		}

		x := (idx % cols) * tileW
		y := (idx / cols) * tileH
		draw.Draw(canvas, image.Rect(x, y, x+tileW, y+tileH), tile, tile.Bounds().Min, draw.Over)
		tex.Close()
	}
	if canvas == nil {
		return nil, fmt.Errorf("no frames")
	}
	return canvas, nil
}

func save(output string, canvas *image.NRGBA) error {
	fmt.Printf("-> creating %s\n", output)
	outFile, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", output, err)
	}
	defer outFile.Close()

	switch ext := strings.ToLower(filepath.Ext(output)); ext {
	case ".png":
		return png.Encode(outFile, canvas)
	case ".jpg", ".jpeg":
		return jpeg.Encode(outFile, canvas, &jpeg.Options{Quality: 95})
	default:
		return fmt.Errorf("unsupported output format: %s", ext)
	}
}
