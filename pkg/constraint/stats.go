package constraint

// Stats summarizes a sequence for reports
type Stats struct {
	Length         int     `json:"length" msgpack:"length"`
	GCRatio        float64 `json:"gc_ratio" msgpack:"gc_ratio"`
	MaxHomopolymer int     `json:"max_homopolymer" msgpack:"max_homopolymer"`
}

// Analyze computes Stats for seq
func Analyze(seq string) Stats {
	return Stats{
		Length:         len(seq),
		GCRatio:        GCRatio(seq),
		MaxHomopolymer: LongestRun(seq),
	}
}

// Overhead is the symbol cost of dataBytes relative to the 4 symbols per
// byte of a bare 2-bit map
func Overhead(dataBytes, symbols int) float64 {
	if dataBytes == 0 {
		return 0
	}
	ideal := float64(dataBytes * 4)
	return (float64(symbols) - ideal) / ideal
}
