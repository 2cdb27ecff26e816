package breeds

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromScores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		scores  []float32
		classes []string
		want    Result
	}{
		{
			name:    "Descending",
			scores:  []float32{0.1, 0.6, 0.05, 0.25},
			classes: []string{"A", "B", "C", "D"},
			want: Result{
				{Breed: "B", Confidence: float64(float32(0.6))},
				{Breed: "D", Confidence: float64(float32(0.25))},
				{Breed: "A", Confidence: float64(float32(0.1))},
			},
		},
		{
			name:    "TiesKeepIndexOrder",
			scores:  []float32{0.2, 0.4, 0.4, 0.0, 0.4},
			classes: []string{"A", "B", "C", "D", "E"},
			want: Result{
				{Breed: "B", Confidence: float64(float32(0.4))},
				{Breed: "C", Confidence: float64(float32(0.4))},
				{Breed: "E", Confidence: float64(float32(0.4))},
			},
		},
		{
			name:    "OutOfVocabulary",
			scores:  []float32{0.1, 0.2, 0.7},
			classes: []string{"A", "B"},
			want: Result{
				{Breed: "Unknown_Class_2", Confidence: float64(float32(0.7))},
				{Breed: "B", Confidence: float64(float32(0.2))},
				{Breed: "A", Confidence: float64(float32(0.1))},
			},
		},
		{
			name:    "FewerThanK",
			scores:  []float32{0.3, 0.7},
			classes: []string{"A", "B"},
			want: Result{
				{Breed: "B", Confidence: float64(float32(0.7))},
				{Breed: "A", Confidence: float64(float32(0.3))},
			},
		},
		{
			name:    "NonFiniteSkipped",
			scores:  []float32{float32(math.NaN()), 0.2, float32(math.Inf(1)), 0.5, float32(math.Inf(-1))},
			classes: []string{"A", "B", "C", "D", "E"},
			want: Result{
				{Breed: "D", Confidence: float64(float32(0.5))},
				{Breed: "B", Confidence: float64(float32(0.2))},
			},
		},
		{
			name:    "AllNaN",
			scores:  []float32{float32(math.NaN()), float32(math.NaN())},
			classes: []string{"A", "B"},
			want:    Result{},
		},
		{
			name:    "RepeatedLabels",
			scores:  []float32{0.5, 0.3, 0.2},
			classes: []string{"Pug", "Pug", "Akita"},
			want: Result{
				{Breed: "Pug", Confidence: float64(float32(0.5))},
				{Breed: "Akita", Confidence: float64(float32(0.2))},
			},
		},
		{
			name:    "Clamped",
			scores:  []float32{1.5, -0.25},
			classes: []string{"A", "B"},
			want: Result{
				{Breed: "A", Confidence: 1},
				{Breed: "B", Confidence: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FromScores(tt.scores, tt.classes))
		})
	}
}

func TestRank(t *testing.T) {
	t.Parallel()

	got := Rank([]Prediction{
		{Breed: "Pug", Confidence: 0.1},
		{Breed: "Beagle", Confidence: 0.5},
		{Breed: "", Confidence: 0.9},
		{Breed: "Boxer", Confidence: 0.3},
		{Breed: "Pug", Confidence: 0.6},
		{Breed: "Akita", Confidence: 0.3},
		{Breed: "Collie", Confidence: math.NaN()},
	})
	assert.Equal(t, Result{
		{Breed: "Pug", Confidence: 0.6},
		{Breed: "Beagle", Confidence: 0.5},
		{Breed: "Boxer", Confidence: 0.3},
	}, got)

	assert.Empty(t, Rank(nil))

	got = Rank([]Prediction{
		{Breed: "Pug", Confidence: math.Inf(1)},
		{Breed: "Akita", Confidence: 1.2},
		{Breed: "Boxer", Confidence: math.Inf(-1)},
		{Breed: "Chow", Confidence: -0.1},
	})
	assert.Equal(t, Result{
		{Breed: "Akita", Confidence: 1},
		{Breed: "Chow", Confidence: 0},
	}, got)
}

func TestSoftmax(t *testing.T) {
	t.Parallel()

	probs := Softmax([]float32{1, 2, 3, 1000})
	var sum float64
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, float32(0))
		sum += float64(p)
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
	assert.Nil(t, Softmax(nil))
}

func TestSigmoid(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 0.5, Sigmoid(0), 1e-6)
	assert.InDelta(t, 1.0, Sigmoid(500), 1e-6)
	assert.InDelta(t, 0.0, Sigmoid(-500), 1e-6)
}

func TestPercent(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 12.35, Percent(0.123456))
	assert.Equal(t, 90.0, Prediction{Confidence: 0.9}.Percentage())
}

func TestReadLabels(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	txt := filepath.Join(dir, "labels.txt")
	require.NoError(t, os.WriteFile(txt, []byte("Beagle\n\n  Pug  \nBoxer\n"), 0o644))
	labels, err := ReadLabels(txt)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beagle", "Pug", "Boxer"}, labels)

	csvPath := filepath.Join(dir, "class_mapping.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("class_name,class_index\nPug,2\nBeagle,0\nBoxer,1\n"), 0o644))
	labels, err = ReadLabels(csvPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beagle", "Boxer", "Pug"}, labels)

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("name,index\nPug,0\n"), 0o644))
	_, err = ReadLabels(bad)
	assert.Error(t, err)

	_, err = ReadLabels(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}
