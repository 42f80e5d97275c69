package cron

import "math/bits"

// bitset64 uses a uint64 as a compact set of integers 0-63.
type bitset64 uint64

func (b bitset64) has(value int) bool {
	return value >= 0 && value < 64 && b&(1<<uint(value)) != 0
}

func (b *bitset64) set(value int) { *b |= 1 << uint(value) }

// Field is the set of values a single cron field permits. The zero value
// permits nothing; use Any for the wildcard.
type Field struct {
	any    bool
	values bitset64
}

// Any returns a Field that permits every value.
func Any() Field {
	return Field{any: true}
}

// Only returns a Field that permits exactly the given values. Values
// outside 0-63 are ignored.
func Only(values ...int) Field {
	var f Field
	for _, v := range values {
		if v >= 0 && v < 64 {
			f.values.set(v)
		}
	}
	return f
}

// IsAny reports whether the field is the wildcard.
func (f Field) IsAny() bool {
	return f.any
}

// Allows reports whether value satisfies the field.
func (f Field) Allows(value int) bool {
	return f.any || f.values.has(value)
}

// Values returns the permitted values in ascending order, or nil for the
// wildcard.
func (f Field) Values() []int {
	if f.any {
		return nil
	}
	out := make([]int, 0, bits.OnesCount64(uint64(f.values)))
	for v := 0; v < 64; v++ {
		if f.values.has(v) {
			out = append(out, v)
		}
	}
	return out
}
