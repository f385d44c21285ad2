// Package mouse maps screen cells to the panes drawn there.
package mouse

// Rect is a screen rectangle in cells. The right and bottom edges are
// exclusive.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return r.W > 0 && r.H > 0 &&
		x >= r.X && x < r.X+r.W &&
		y >= r.Y && y < r.Y+r.H
}

// Region is a named hit target.
type Region struct {
	ID   string
	Rect Rect
	Data any
}

// HitMap holds regions in draw order; later regions sit on top.
type HitMap struct {
	regions []Region
}

// NewHitMap returns an empty HitMap.
func NewHitMap() *HitMap {
	return &HitMap{}
}

// Add appends a region.
func (h *HitMap) Add(id string, r Rect, data any) {
	h.regions = append(h.regions, Region{ID: id, Rect: r, Data: data})
}

// AddRect appends a region from coordinates.
func (h *HitMap) AddRect(id string, x, y, w, height int, data any) {
	h.Add(id, Rect{X: x, Y: y, W: w, H: height}, data)
}

// Test returns the topmost region containing (x, y), or nil.
func (h *HitMap) Test(x, y int) *Region {
	for i := len(h.regions) - 1; i >= 0; i-- {
		if h.regions[i].Rect.Contains(x, y) {
			r := h.regions[i]
			return &r
		}
	}
	return nil
}

// Clear removes all regions.
func (h *HitMap) Clear() {
	h.regions = h.regions[:0]
}

// Regions returns a copy of the regions in draw order.
func (h *HitMap) Regions() []Region {
	out := make([]Region, len(h.regions))
	copy(out, h.regions)
	return out
}
