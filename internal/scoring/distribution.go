package scoring

// Bucket labels in ascending order. Upper bounds are inclusive.
var Buckets = []string{"0-20", "21-40", "41-60", "61-80", "81-100"}

// Distribution counts scores per bucket. Every bucket is present, zero-filled
// when scores is empty.
func Distribution(scores []float64) map[string]int {
	out := make(map[string]int, len(Buckets))
	for _, b := range Buckets {
		out[b] = 0
	}
	for _, s := range scores {
		switch {
		case s <= 20:
			out["0-20"]++
		case s <= 40:
			out["21-40"]++
		case s <= 60:
			out["41-60"]++
		case s <= 80:
			out["61-80"]++
		default:
			out["81-100"]++
		}
	}
	return out
}
