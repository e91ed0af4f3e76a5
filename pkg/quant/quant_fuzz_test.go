package quant

import (
	"math"
	"testing"
)

// FuzzNum ensures the coercion boundary never panics and only ever yields
// a parsed value or NaN.
func FuzzNum(f *testing.F) {
	// Seed corpus
	f.Add("60000")
	f.Add("0.0001")
	f.Add("-2.43")
	f.Add("")
	f.Add("1e309")
	f.Add("not-a-number")
	f.Add(".5")

	f.Fuzz(func(t *testing.T, s string) {
		got := Num(s)
		_ = math.IsNaN(got) // any float64 result is acceptable; panic is not
	})
}
