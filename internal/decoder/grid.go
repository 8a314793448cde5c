package decoder

import (
	"github.com/MeKo-Tech/matrixscan/internal/raster"
)

// ModuleGrid is a square matrix of modules, true = dark. Row indexes follow
// the image y axis and columns the x axis.
type ModuleGrid struct {
	size    int
	modules []bool
}

// NewModuleGrid returns an all-light grid of size x size.
func NewModuleGrid(size int) *ModuleGrid {
	return &ModuleGrid{size: size, modules: make([]bool, size*size)}
}

// GridFromRows builds a grid from equally long rows. It panics if the rows
// do not form a square.
func GridFromRows(rows [][]bool) *ModuleGrid {
	g := NewModuleGrid(len(rows))
	for r, row := range rows {
		if len(row) != g.size {
			panic("decoder: module grid rows must form a square")
		}
		copy(g.modules[r*g.size:], row)
	}
	return g
}

// Size returns the number of modules per side.
func (g *ModuleGrid) Size() int { return g.size }

// Dark reports whether the module at (row, col) is dark.
func (g *ModuleGrid) Dark(row, col int) bool { return g.modules[row*g.size+col] }

// Set marks the module at (row, col).
func (g *ModuleGrid) Set(row, col int, dark bool) { g.modules[row*g.size+col] = dark }

// String renders the grid with '#' for dark and '.' for light modules.
func (g *ModuleGrid) String() string {
	buf := make([]byte, 0, g.size*(g.size+1))
	for row := range g.size {
		for col := range g.size {
			if g.Dark(row, col) {
				buf = append(buf, '#')
			} else {
				buf = append(buf, '.')
			}
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}

// cellLayout is the partition of a raster into gridSize x gridSize cells.
// Pixels past the last full cell belong to no cell.
type cellLayout struct {
	size   int
	width  int
	height int
}

func newCellLayout(r *raster.Raster, gridSize int) (cellLayout, bool) {
	if gridSize <= 0 {
		return cellLayout{}, false
	}
	l := cellLayout{size: gridSize, width: r.Width() / gridSize, height: r.Height() / gridSize}
	if l.width == 0 || l.height == 0 {
		return cellLayout{}, false
	}
	return l, true
}

func (l cellLayout) cell(row, col int) raster.BoundingBox {
	return raster.Box(col*l.width, row*l.height, l.width, l.height)
}

// isDarkCell reports whether more than total/ratio pixels of the cell are
// darker than level.
func isDarkCell(r *raster.Raster, cell raster.BoundingBox, level uint8, ratio float64) bool {
	dark := 0
	for y := cell.Y; y < cell.Bottom(); y++ {
		for x := cell.X; x < cell.Right(); x++ {
			if r.At(x, y) < level {
				dark++
			}
		}
	}
	return float64(dark) > float64(cell.Area())/ratio
}

// Analyze samples the modules of a normalized raster. It reports false when
// gridSize leaves no room for a single pixel per cell.
func Analyze(r *raster.Raster, gridSize int, cfg Config) (*ModuleGrid, bool) {
	layout, ok := newCellLayout(r, gridSize)
	if !ok {
		return nil, false
	}

	g := NewModuleGrid(gridSize)
	for row := range gridSize {
		for col := range gridSize {
			g.Set(row, col, isDarkCell(r, layout.cell(row, col), cfg.DarkLevel, cfg.AnalyzeRatio))
		}
	}
	return g, true
}
