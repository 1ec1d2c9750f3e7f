// Package layout carves the terminal into panel areas: rectangle
// math, weighted one-axis splits, and the column grid the dashboard
// arranges its widgets in.
package layout

// Rect is a rectangular area in terminal cells.
type Rect struct {
	X, Y, Width, Height int
}

// Empty reports whether the rectangle has no drawable area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Right returns the x coordinate one past the right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the y coordinate one past the bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Contains reports whether the cell (px, py) lies inside.
func (r Rect) Contains(px, py int) bool {
	return px >= r.X && px < r.Right() && py >= r.Y && py < r.Bottom()
}

// Shrink returns the rectangle reduced by margin cells on every side,
// clamped at zero size.
func (r Rect) Shrink(margin int) Rect {
	if margin <= 0 {
		return r
	}
	out := Rect{
		X:      r.X + margin,
		Y:      r.Y + margin,
		Width:  r.Width - 2*margin,
		Height: r.Height - 2*margin,
	}
	if out.Width < 0 {
		out.Width = 0
	}
	if out.Height < 0 {
		out.Height = 0
	}
	return out
}

// SplitRows divides the rectangle top to bottom by weight. Every
// returned row gets at least its floor share; leftover cells go to
// the earliest rows, so the heights always sum exactly to r.Height.
// Non-positive weights count as one.
func SplitRows(r Rect, weights ...int) []Rect {
	return split(r, true, weights)
}

// SplitColumns divides the rectangle left to right by weight, with
// the same exactness rules as SplitRows.
func SplitColumns(r Rect, weights ...int) []Rect {
	return split(r, false, weights)
}

func split(r Rect, vertical bool, weights []int) []Rect {
	if len(weights) == 0 {
		return nil
	}

	total := 0
	normalized := make([]int, len(weights))
	for i, w := range weights {
		if w <= 0 {
			w = 1
		}
		normalized[i] = w
		total += w
	}

	size := r.Width
	if vertical {
		size = r.Height
	}

	out := make([]Rect, len(weights))
	allotted := 0
	for i, w := range normalized {
		share := size * w / total
		if i == len(weights)-1 {
			share = size - allotted
		}
		if vertical {
			out[i] = Rect{X: r.X, Y: r.Y + allotted, Width: r.Width, Height: share}
		} else {
			out[i] = Rect{X: r.X + allotted, Y: r.Y, Width: share, Height: r.Height}
		}
		allotted += share
	}
	return out
}

// Grid lays out count cells in the given number of columns, filling
// row by row. Rows share the height evenly; a short final row keeps
// full-width columns rather than stretching. Gap cells separate
// neighbors both ways.
func Grid(r Rect, count, columns, gap int) []Rect {
	if count <= 0 || r.Empty() {
		return nil
	}
	if columns < 1 {
		columns = 1
	}
	if columns > count {
		columns = count
	}
	if gap < 0 {
		gap = 0
	}

	rows := (count + columns - 1) / columns
	rowWeights := make([]int, rows)
	for i := range rowWeights {
		rowWeights[i] = 1
	}

	rowRects := SplitRows(shrinkGaps(r, 0, gap*(rows-1)), rowWeights...)
	out := make([]Rect, 0, count)
	for rowIdx, rowRect := range rowRects {
		rowRect.Y += gap * rowIdx
		colWeights := make([]int, columns)
		for i := range colWeights {
			colWeights[i] = 1
		}
		cells := SplitColumns(shrinkGaps(rowRect, gap*(columns-1), 0), colWeights...)
		for colIdx, cell := range cells {
			if len(out) == count {
				break
			}
			cell.X += gap * colIdx
			out = append(out, cell)
		}
	}
	return out
}

// shrinkGaps removes the total gap allowance from a rectangle before
// splitting, clamped at zero.
func shrinkGaps(r Rect, dw, dh int) Rect {
	r.Width -= dw
	r.Height -= dh
	if r.Width < 0 {
		r.Width = 0
	}
	if r.Height < 0 {
		r.Height = 0
	}
	return r
}
