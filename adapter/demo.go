package adapter

import (
	"context"
	"hash/fnv"
	"math/rand/v2"

	"github.com/krau/konabreed/breeds"
	"github.com/krau/konabreed/imageproc"
)

// Demo stands in for real models when none could be loaded. Its answers are
// meaningless but well formed: a softmax over random logits, seeded by the
// adapter name and the image so the same upload always gets the same answer.
type Demo struct {
	base
	classes []string
	seed    uint64
}

var _ Adapter = (*Demo)(nil)

func NewDemo(name string, env Env) *Demo {
	return &Demo{
		base:    newBase(name, "", CategoryDemo, imageproc.Default, env),
		classes: breeds.Canonical,
		seed:    hash64([]byte(name)),
	}
}

func (d *Demo) Classes() []string { return d.classes }
func (d *Demo) Synthetic() bool   { return true }

func (d *Demo) Predict(ctx context.Context, _ *imageproc.Tensor, raw []byte) breeds.Result {
	return d.guard(ctx, func(context.Context) (breeds.Result, error) {
		return breeds.FromScores(d.Distribution(raw), d.classes), nil
	})
}

// Distribution returns the full probability vector behind Predict.
func (d *Demo) Distribution(raw []byte) []float32 {
	rng := rand.New(rand.NewPCG(d.seed, hash64(raw)))
	logits := make([]float32, len(d.classes))
	for i := range logits {
		logits[i] = float32(rng.NormFloat64())
	}
	return breeds.Softmax(logits)
}

func hash64(b []byte) uint64 {
	h := fnv.New64a()
	h.Write(b)
	return h.Sum64()
}
