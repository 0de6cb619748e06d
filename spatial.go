package main

import "math"

const (
	SpatialCellSize = 80.0 // ~4x the tank collision radius
	maxSpatialCells = 1 << 16
)

// EntityRef identifies an entity in the grid
type EntityRef struct {
	Kind byte // 't'=tank
	Idx  int  // index into the corresponding ordered list
}

// SpatialGrid is a uniform grid over a rectangle of world space used for
// broad-phase collision queries. Positions outside the rectangle clamp to
// the border cells.
type SpatialGrid struct {
	originX, originY float64
	cellSize         float64
	cols, rows       int
	cells            [][]EntityRef
}

// NewSpatialGrid returns an empty single-cell grid; call Reset to size it
func NewSpatialGrid() *SpatialGrid {
	g := &SpatialGrid{}
	g.Reset(0, 0, SpatialCellSize, SpatialCellSize)
	return g
}

// Reset clears the grid and resizes it to cover [minX,maxX]x[minY,maxY].
// The cell size grows when the area would need more than maxSpatialCells.
func (g *SpatialGrid) Reset(minX, minY, maxX, maxY float64) {
	w := math.Max(maxX-minX, SpatialCellSize)
	h := math.Max(maxY-minY, SpatialCellSize)
	cs := SpatialCellSize
	if cells := (w / cs) * (h / cs); cells > maxSpatialCells {
		cs *= math.Ceil(math.Sqrt(cells / maxSpatialCells))
	}
	g.originX, g.originY = minX, minY
	g.cellSize = cs
	g.cols = int(w/cs) + 1
	g.rows = int(h/cs) + 1

	n := g.cols * g.rows
	if cap(g.cells) < n {
		g.cells = make([][]EntityRef, n)
	} else {
		g.cells = g.cells[:n]
	}
	g.Clear()
}

// Clear resets all cells (keeps allocated capacity)
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *SpatialGrid) cellRange(x, y, radius float64) (minCX, maxCX, minCY, maxCY int) {
	minCX = int((x - radius - g.originX) / g.cellSize)
	maxCX = int((x + radius - g.originX) / g.cellSize)
	minCY = int((y - radius - g.originY) / g.cellSize)
	maxCY = int((y + radius - g.originY) / g.cellSize)
	if minCX < 0 {
		minCX = 0
	}
	if maxCX >= g.cols {
		maxCX = g.cols - 1
	}
	if minCY < 0 {
		minCY = 0
	}
	if maxCY >= g.rows {
		maxCY = g.rows - 1
	}
	return
}

// Insert adds an entity reference at the given position
func (g *SpatialGrid) Insert(x, y float64, ref EntityRef) {
	g.InsertCircle(x, y, 0, ref)
}

// InsertCircle adds an entity reference to all cells overlapping its bounding box
func (g *SpatialGrid) InsertCircle(x, y, radius float64, ref EntityRef) {
	minCX, maxCX, minCY, maxCY := g.cellRange(x, y, radius)
	if minCX > maxCX || minCY > maxCY {
		// entirely off one side; keep it in the nearest border cell
		cx := int(Clamp(float64(minCX), 0, float64(g.cols-1)))
		cy := int(Clamp(float64(minCY), 0, float64(g.rows-1)))
		g.cells[cy*g.cols+cx] = append(g.cells[cy*g.cols+cx], ref)
		return
	}
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			idx := cy*g.cols + cx
			g.cells[idx] = append(g.cells[idx], ref)
		}
	}
}

// Query returns all entity refs in cells that overlap the given bounding box
func (g *SpatialGrid) Query(x, y, radius float64) []EntityRef {
	return g.QueryBuf(x, y, radius, nil)
}

// QueryBuf appends results to buf and returns the extended slice, avoiding
// per-call allocation. An entity spanning several cells appears once per cell.
func (g *SpatialGrid) QueryBuf(x, y, radius float64, buf []EntityRef) []EntityRef {
	minCX, maxCX, minCY, maxCY := g.cellRange(x, y, radius)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			buf = append(buf, g.cells[cy*g.cols+cx]...)
		}
	}
	return buf
}
