package imageproc

// Tensor is a batch of one RGB image in NHWC order with values in [0,1].
type Tensor struct {
	Data  []float32
	Shape [4]int
}

func (t *Tensor) Size() Size {
	return Size{Width: t.Shape[2], Height: t.Shape[1]}
}

// Planar returns a copy of the data in NCHW order.
func (t *Tensor) Planar() []float32 {
	h, w := t.Shape[1], t.Shape[2]
	plane := h * w
	out := make([]float32, len(t.Data))
	for p := range plane {
		out[p] = t.Data[p*3]
		out[plane+p] = t.Data[p*3+1]
		out[2*plane+p] = t.Data[p*3+2]
	}
	return out
}
