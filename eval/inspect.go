package eval

import (
	"strconv"
	"strings"
)

// Inspect renders a value for display. Numbers use the shortest form
// that round-trips (5, -2, 0.1, +Inf, NaN).
func Inspect(v Value) string {
	switch v := v.(type) {
	case Number:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case *Closure:
		return "[Function " + v.Name() + "(" + strings.Join(v.params, ", ") + ")]"
	case nil:
		return "undefined"
	}
	return "<?>"
}

func (v Number) String() string   { return Inspect(v) }
func (c *Closure) String() string { return Inspect(c) }
