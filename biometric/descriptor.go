package biometric

import (
	"fmt"
	"math"
)

// DescriptorKind identifies the numeric representation of a descriptor set and
// therefore the distance metric the matcher must use.
type DescriptorKind string

const (
	// KindFloat marks float32 descriptors compared with Euclidean distance
	// (the primary, SIFT-style detector).
	KindFloat DescriptorKind = "float"
	// KindBinary marks bit-string descriptors compared with Hamming distance
	// (the fallback, ORB-style detector).
	KindBinary DescriptorKind = "binary"
)

// Keypoint is the detection location a descriptor vector was computed at. It is
// kept for geometric plausibility checks and diagnostics only and is never
// persisted with the template.
type Keypoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	Angle float64 `json:"angle"`
}

// DescriptorSet is an ordered sequence of fixed-length feature vectors extracted
// from one image. An empty set is a valid-but-useless value, not an error.
//
// Exactly one of Float or Binary is populated, selected by Kind. Dim is the
// vector width: float32 elements per row for KindFloat, bytes per row for
// KindBinary.
type DescriptorSet struct {
	Kind      DescriptorKind
	Dim       int
	Float     [][]float32
	Binary    [][]byte
	Keypoints []Keypoint
}

// Len returns the number of descriptor vectors in the set.
func (d DescriptorSet) Len() int {
	if d.Kind == KindBinary {
		return len(d.Binary)
	}
	return len(d.Float)
}

// Empty reports whether the set holds no descriptor vectors.
func (d DescriptorSet) Empty() bool {
	return d.Len() == 0
}

// ElementCount returns the total number of numeric elements across all vectors.
func (d DescriptorSet) ElementCount() int {
	return d.Len() * d.Dim
}

// Usable reports whether the set carries enough feature data to be stored or
// matched. Callers must check this before enrolling or deciding; an unusable
// set signals ErrInsufficientFeatures at the call site.
func (d DescriptorSet) Usable(minElements int) bool {
	return d.ElementCount() > minElements
}

// EncodeRows flattens the descriptor vectors into a single byte slice for BLOB
// persistence. Float32 values are stored bit-exact in little-endian order so the
// round-trip is lossless; binary rows are stored verbatim.
func (d DescriptorSet) EncodeRows() []byte {
	if d.Kind == KindBinary {
		out := make([]byte, 0, len(d.Binary)*d.Dim)
		for _, row := range d.Binary {
			out = append(out, row...)
		}
		return out
	}
	out := make([]byte, 0, len(d.Float)*d.Dim*4)
	for _, row := range d.Float {
		for _, v := range row {
			bits := math.Float32bits(v)
			out = append(out, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
		}
	}
	return out
}

// DecodeDescriptorSet rebuilds a DescriptorSet from its persisted form. A length
// that does not divide evenly into dim-wide rows means the stored blob was
// damaged; the caller surfaces that as ErrStoreCorrupt.
func DecodeDescriptorSet(kind DescriptorKind, dim int, data []byte) (DescriptorSet, error) {
	if dim <= 0 {
		return DescriptorSet{}, fmt.Errorf("%w: invalid descriptor width %d", ErrStoreCorrupt, dim)
	}
	ds := DescriptorSet{Kind: kind, Dim: dim}
	switch kind {
	case KindBinary:
		if len(data)%dim != 0 {
			return DescriptorSet{}, fmt.Errorf("%w: %d bytes is not a multiple of row width %d", ErrStoreCorrupt, len(data), dim)
		}
		rows := len(data) / dim
		ds.Binary = make([][]byte, rows)
		for i := 0; i < rows; i++ {
			row := make([]byte, dim)
			copy(row, data[i*dim:(i+1)*dim])
			ds.Binary[i] = row
		}
	case KindFloat:
		rowBytes := dim * 4
		if len(data)%rowBytes != 0 {
			return DescriptorSet{}, fmt.Errorf("%w: %d bytes is not a multiple of row width %d", ErrStoreCorrupt, len(data), rowBytes)
		}
		rows := len(data) / rowBytes
		ds.Float = make([][]float32, rows)
		for i := 0; i < rows; i++ {
			row := make([]float32, dim)
			for j := 0; j < dim; j++ {
				off := i*rowBytes + j*4
				bits := uint32(data[off]) |
					uint32(data[off+1])<<8 |
					uint32(data[off+2])<<16 |
					uint32(data[off+3])<<24
				row[j] = math.Float32frombits(bits)
			}
			ds.Float[i] = row
		}
	default:
		return DescriptorSet{}, fmt.Errorf("%w: unknown descriptor kind %q", ErrStoreCorrupt, kind)
	}
	return ds, nil
}
