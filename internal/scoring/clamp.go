package scoring

// Clamp bounds v to [lo, hi]. It is applied once at the output boundary of
// each aggregator and of the vendor score combiner.
func Clamp[T int | float64](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
