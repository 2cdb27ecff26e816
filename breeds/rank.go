package breeds

import (
	"math"
	"sort"
	"strconv"
)

// UnknownLabel names a class index the vocabulary has no entry for.
func UnknownLabel(idx int) string {
	return "Unknown_Class_" + strconv.Itoa(idx)
}

// TopIndices returns the indices of the k largest finite scores, highest
// first. Equal scores keep their index order.
func TopIndices(scores []float32, k int) []int {
	idx := rankedIndices(scores)
	if len(idx) > k {
		idx = idx[:k]
	}
	return idx
}

func rankedIndices(scores []float32) []int {
	idx := make([]int, 0, len(scores))
	for i, v := range scores {
		if finite(float64(v)) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	return idx
}

// FromScores ranks a per-class score vector and labels the winners with the
// given vocabulary. Non-finite scores are skipped and a label shared by
// several indices is reported once, with its best score.
func FromScores(scores []float32, classes []string) Result {
	out := make(Result, 0, TopK)
	seen := make(map[string]struct{}, TopK)
	for _, i := range rankedIndices(scores) {
		if len(out) == TopK {
			break
		}
		label := UnknownLabel(i)
		if i < len(classes) && classes[i] != "" {
			label = classes[i]
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, Prediction{Breed: label, Confidence: clamp(float64(scores[i]))})
	}
	return out
}

// Rank re-sorts a list, drops empty labels and non-finite scores, merges
// repeated labels (keeping the best score), clamps confidences into [0,1]
// and truncates to TopK.
func Rank(preds []Prediction) Result {
	best := make(map[string]int, len(preds))
	uniq := make([]Prediction, 0, len(preds))
	for _, p := range preds {
		if p.Breed == "" || !finite(p.Confidence) {
			continue
		}
		p.Confidence = clamp(p.Confidence)
		if i, ok := best[p.Breed]; ok {
			if p.Confidence > uniq[i].Confidence {
				uniq[i].Confidence = p.Confidence
			}
			continue
		}
		best[p.Breed] = len(uniq)
		uniq = append(uniq, p)
	}
	sort.SliceStable(uniq, func(i, j int) bool {
		return uniq[i].Confidence > uniq[j].Confidence
	})
	if len(uniq) > TopK {
		uniq = uniq[:TopK]
	}
	return Result(uniq)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v float64) float64 {
	return min(max(v, 0), 1)
}

func Sigmoid(x float32) float32 {
	if x > 50 {
		x = 50
	} else if x < -50 {
		x = -50
	}
	return 1 / (1 + float32(math.Exp(float64(-x))))
}

// Softmax converts logits into a probability distribution.
func Softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	maxV := logits[0]
	for _, v := range logits[1:] {
		maxV = max(maxV, v)
	}
	out := make([]float32, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - maxV))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}
