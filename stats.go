package mnistseq

// Stats summarizes the label distribution of a dataset.
type Stats struct {
	// Classes[v] counts label slots equal to v; Classes[Sentinel] counts padding.
	Classes [Sentinel + 1]int

	// Lengths[n] counts samples with exactly n digits, for n in 0..MaxDigits.
	Lengths []int
}

// ComputeStats tallies digit classes and sequence lengths over d.
// Out-of-range label values are ignored in Classes.
func ComputeStats(d *Dataset) Stats {
	s := Stats{Lengths: make([]int, d.MaxDigits+1)}
	for _, v := range d.Labels {
		if v >= 0 && int(v) < len(s.Classes) {
			s.Classes[v]++
		}
	}
	for i := range d.N {
		s.Lengths[d.SequenceLength(i)]++
	}
	return s
}

// Balanced reports whether every length 1..MaxDigits has the same count and
// no sample is empty.
func (s Stats) Balanced() bool {
	if len(s.Lengths) < 2 || s.Lengths[0] != 0 {
		return false
	}
	for _, n := range s.Lengths[1:] {
		if n != s.Lengths[1] {
			return false
		}
	}
	return true
}
