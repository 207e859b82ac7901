package widget

// Constraints are the size limits a widget type declares. A zero maximum
// means unbounded.
type Constraints struct {
	MinW     int `toml:"min_w" json:"minW"`
	MaxW     int `toml:"max_w" json:"maxW"`
	MinH     int `toml:"min_h" json:"minH"`
	MaxH     int `toml:"max_h" json:"maxH"`
	DefaultW int `toml:"default_w" json:"defaultW"`
	DefaultH int `toml:"default_h" json:"defaultH"`
}

// ConstraintLookup resolves a widget type to its constraints.
type ConstraintLookup func(widgetType string) (Constraints, bool)

// Normalize substitutes sensible values for missing or malformed fields:
// minimums of at least one cell, maximums that are zero or not below the
// minimum, and a default size inside the range.
func (c Constraints) Normalize() Constraints {
	if c.MinW < 1 {
		c.MinW = 1
	}
	if c.MinH < 1 {
		c.MinH = 1
	}
	if c.MaxW < 0 || (c.MaxW > 0 && c.MaxW < c.MinW) {
		c.MaxW = 0
	}
	if c.MaxH < 0 || (c.MaxH > 0 && c.MaxH < c.MinH) {
		c.MaxH = 0
	}
	c.DefaultW = c.clampW(max(c.DefaultW, c.MinW))
	c.DefaultH = c.clampH(max(c.DefaultH, c.MinH))
	return c
}

// Clamp fits a size into the constraints.
func (c Constraints) Clamp(w, h int) (int, int) {
	return c.clampW(max(w, c.MinW)), c.clampH(max(h, c.MinH))
}

func (c Constraints) clampW(w int) int {
	if c.MaxW > 0 && w > c.MaxW {
		return c.MaxW
	}
	return w
}

func (c Constraints) clampH(h int) int {
	if c.MaxH > 0 && h > c.MaxH {
		return c.MaxH
	}
	return h
}

// Lookup resolves widgetType through fn and always returns normalized
// constraints, falling back to the one-cell minimum when fn is nil or does
// not know the type.
func Lookup(fn ConstraintLookup, widgetType string) Constraints {
	if fn == nil {
		return Constraints{}.Normalize()
	}
	c, ok := fn(widgetType)
	if !ok {
		return Constraints{}.Normalize()
	}
	return c.Normalize()
}
