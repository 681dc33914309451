package embedding

// WordVectors is a read-only token to vector lookup of a fixed dimension.
type WordVectors interface {
	Dimension() int
	Vector(token string) ([]float64, bool)
}
