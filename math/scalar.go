package math

import "github.com/chewxy/math32"

// Clamp limits x to [lo, hi]. NaN is returned as lo.
func Clamp(x, lo, hi float32) float32 {
	if math32.IsNaN(x) || x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Smoothstep matches the GLSL builtin.
func Smoothstep(edge0, edge1, x float32) float32 {
	if edge1 == edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// Mod is a floored modulo: the result has the sign of m.
func Mod(x, m float32) float32 {
	if m == 0 {
		return 0
	}
	return x - m*math32.Floor(x/m)
}
