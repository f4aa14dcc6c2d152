package audio

import "math"

// ToInt16 converts a processed f32 buffer (values in [-1,1]) to the host
// sample type i16, per §6: round(x * 32767) clipped to [-32768, 32767].
func ToInt16(in []float32, out []int16) {
	for i, x := range in {
		out[i] = int16(clampFloat(math.Round(float64(x)*32767), -32768, 32767))
	}
}

// ToUint16 converts a processed f32 buffer to the host sample type u16,
// per §6: round((x+1) * 32767.5) clipped to [0, 65535].
func ToUint16(in []float32, out []uint16) {
	for i, x := range in {
		out[i] = uint16(clampFloat(math.Round((float64(x)+1)*32767.5), 0, 65535))
	}
}

func clampFloat(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
