package embedding

// Average returns the element-wise mean of the embeddings of tokens known to
// model. Unknown tokens are skipped; if none are known the zero vector is returned.
func Average(model WordVectors, tokens []string) []float64 {
	out := make([]float64, model.Dimension())
	found := 0
	for _, tok := range tokens {
		vec, ok := model.Vector(tok)
		if !ok {
			continue
		}
		for i, v := range vec {
			out[i] += v
		}
		found++
	}
	if found == 0 {
		return out
	}
	inv := 1.0 / float64(found)
	for i := range out {
		out[i] *= inv
	}
	return out
}

// IsZero reports whether every component of vec is zero.
func IsZero(vec []float64) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
