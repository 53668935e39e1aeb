package glrender

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"runtime"

	"github.com/soypat/geometry/md2"
	"github.com/soypat/gfractal/gleval"
	"golang.org/x/sync/errgroup"
)

type setImage = interface {
	image.Image
	Set(x, y int, c color.Color)
}

// ImageRenderer renders fractal images row by row, marching a full row of rays per batch.
// It owns its evaluation buffers and is not safe for concurrent use.
type ImageRenderer struct {
	r      *Renderer
	rays   []Ray
	hits   []Hit
	colors []color.RGBA
	vp     gleval.VecPool
}

// NewImageRenderer instances a new [ImageRenderer]. evalBufferSize is the maximum image width it can render.
func NewImageRenderer(r *Renderer, evalBufferSize int) (*ImageRenderer, error) {
	if r == nil {
		return nil, errors.New("nil Renderer")
	} else if evalBufferSize <= 0 {
		return nil, errors.New("too small evaluation buffer size")
	}
	return &ImageRenderer{
		r:      r,
		rays:   make([]Ray, evalBufferSize),
		hits:   make([]Hit, evalBufferSize),
		colors: make([]color.RGBA, evalBufferSize),
	}, nil
}

// VecPool returns the evaluation buffer pool of the renderer.
func (ir *ImageRenderer) VecPool() *gleval.VecPool { return &ir.vp }

// Render renders the whole of img. The screen dimensions are the image's dimensions.
func (ir *ImageRenderer) Render(img setImage) error {
	bb := img.Bounds()
	return ir.RenderRows(img, bb.Min.Y, bb.Max.Y)
}

// RenderRows renders image rows y0 (inclusive) to y1 (exclusive).
// Image rows are flipped so that the world's up axis points to the top of the image.
func (ir *ImageRenderer) RenderRows(img setImage, y0, y1 int) error {
	bb := img.Bounds()
	width := bb.Dx()
	if len(ir.rays) < width {
		return fmt.Errorf("require evaluation buffer (%d) to be at least of length of image rows (%d)", len(ir.rays), width)
	} else if y0 < bb.Min.Y || y1 > bb.Max.Y || y0 > y1 {
		return fmt.Errorf("rows [%d,%d) out of image bounds %v", y0, y1, bb)
	}
	if width == 0 {
		return nil
	}
	screen := md2.Vec{X: float64(width), Y: float64(bb.Dy())}
	rgba, isRGBA := img.(*image.RGBA)
	for y := y0; y < y1; y++ {
		err := ir.renderRow(y, bb, screen)
		if err != nil {
			return err
		}
		row := ir.colors[:width]
		for i, c := range row {
			if isRGBA {
				rgba.SetRGBA(bb.Min.X+i, y, c)
			} else {
				img.Set(bb.Min.X+i, y, c)
			}
		}
	}
	return nil
}

func (ir *ImageRenderer) renderRow(y int, bb image.Rectangle, screen md2.Vec) error {
	width := bb.Dx()
	py := float64(bb.Max.Y - 1 - y)
	cam := ir.r.cam
	for i := 0; i < width; i++ {
		ir.rays[i] = cam.Ray(md2.Vec{X: float64(i), Y: py}, screen)
	}
	return ir.r.shadeRays(ir.rays[:width], ir.hits[:width], ir.colors[:width], &ir.vp)
}

// RenderParallel renders img using up to workers goroutines. Rows are split in disjoint chunks
// so no two workers write the same pixel. A non-positive workers uses GOMAXPROCS.
func RenderParallel(r *Renderer, img *image.RGBA, workers int) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	bb := img.Bounds()
	if bb.Empty() {
		return nil
	}
	free := make(chan *ImageRenderer, workers)
	for i := 0; i < workers; i++ {
		ir, err := NewImageRenderer(r, bb.Dx())
		if err != nil {
			return err
		}
		free <- ir
	}
	chunk := max(1, bb.Dy()/(4*workers))
	var g errgroup.Group
	g.SetLimit(workers)
	for y := bb.Min.Y; y < bb.Max.Y; y += chunk {
		y0, y1 := y, min(y+chunk, bb.Max.Y)
		g.Go(func() error {
			ir := <-free
			defer func() { free <- ir }()
			return ir.RenderRows(img, y0, y1)
		})
	}
	return g.Wait()
}
