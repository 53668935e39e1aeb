package gfractalaux

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strings"
	"time"

	"github.com/soypat/gfractal/gleval"
	"github.com/soypat/gfractal/glrender"
	"golang.org/x/image/draw"
)

// RenderConfig configures the rendering of a fractal image.
type RenderConfig struct {
	// Width and Height are the output image dimensions in pixels.
	Width, Height int
	// Supersample is the linear supersampling factor. The image is rendered at
	// Supersample times the output dimensions and downsampled with a Catmull-Rom filter.
	// Values below 2 disable supersampling.
	Supersample int
	// Workers is the amount of goroutines rendering rows. Non-positive uses GOMAXPROCS.
	Workers int
	Mode    glrender.ColorMode
	// Shader overrides the default shader of Mode.
	Shader *glrender.Shader
	// Label is an optional caption drawn on the bottom left corner of the image.
	Label  string
	Silent bool
}

// RenderImage is an auxiliary function to aid users in rendering fractals quickly.
// Rows are rendered in parallel at the supersampled resolution, then downsampled.
func RenderImage(f gleval.Fractal, cfg RenderConfig) (*image.RGBA, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New("RenderImage requires positive image dimensions")
	}
	log := func(args ...any) {
		if !cfg.Silent {
			fmt.Println(args...)
		}
	}
	ss := max(1, cfg.Supersample)
	counter := gleval.NewEvalCounter(f)
	watch := stopwatch()
	renderer, err := glrender.NewRenderer(counter, glrender.Config{Mode: cfg.Mode, Shader: cfg.Shader})
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, cfg.Width*ss, cfg.Height*ss))
	err = glrender.RenderParallel(renderer, img, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("rendering %s image: %w", renderer.Shader().Mode, err)
	}
	log("rendered", img.Bounds().Dx(), "x", img.Bounds().Dy(), "pixels in", watch(), "with", counter.Evaluations(), "SDF evaluations")
	if ss > 1 {
		watch = stopwatch()
		img = Downsample(img, cfg.Width, cfg.Height)
		log("downsampled to", cfg.Width, "x", cfg.Height, "in", watch())
	}
	if cfg.Label != "" {
		err = DrawLabel(img, cfg.Label, labelSize(cfg.Height))
		if err != nil {
			return nil, fmt.Errorf("drawing label: %w", err)
		}
	}
	return img, nil
}

// RenderPNGFile renders fractal f and saves the result to a PNG file with said filename.
func RenderPNGFile(filename string, f gleval.Fractal, cfg RenderConfig) error {
	img, err := RenderImage(f, cfg)
	if err != nil {
		return err
	}
	watch := stopwatch()
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	err = WritePNG(fp, img)
	if err != nil {
		return err
	}
	err = fp.Sync()
	if err != nil {
		return err
	}
	if !cfg.Silent {
		fmt.Println("wrote", filename, "in", watch())
	}
	return nil
}

// WritePNG encodes img as PNG to w.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// Downsample resizes src to width x height with a Catmull-Rom filter.
func Downsample(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Filename returns the lowercase output file name of a fractal variant's
// configuration rendered with mode, i.e: "fractal-cube-2-normal.png".
func Filename(variant, config string, mode glrender.ColorMode) string {
	return strings.ToLower(fmt.Sprintf("fractal-%s%s-%s.png", variant, config, mode))
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}

func labelSize(height int) float64 {
	return max(10, float64(height)/40)
}
