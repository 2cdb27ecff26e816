package breeds

import "math"

// TopK is the number of predictions kept per model and in the ensemble.
const TopK = 3

type Prediction struct {
	Breed      string  `json:"breed"`
	Confidence float64 `json:"confidence"`
}

// Percentage is the confidence scaled to 100 and rounded to two decimals.
func (p Prediction) Percentage() float64 {
	return Percent(p.Confidence)
}

// Result is one model's ranked answer for one image. An empty Result means
// the model could not classify the image.
type Result []Prediction

func (r Result) Empty() bool { return len(r) == 0 }

func Percent(confidence float64) float64 {
	return math.Round(confidence*100*100) / 100
}
