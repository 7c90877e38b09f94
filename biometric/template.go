package biometric

import "fmt"

// Template is the durable enrollment artifact for one subject. Primary is the
// first usable capture's descriptors verbatim and is what matching runs against;
// Centroid is the element-wise mean across all usable captures, retained for
// future use but not consulted by the matcher.
type Template struct {
	Strategy DetectorStrategy
	Primary  DescriptorSet
	Centroid DescriptorSet
}

// BuildTemplate merges one or more enrollment captures of the same subject into
// a Template. Captures below the usability threshold are dropped before
// aggregation; captures whose vector shape differs from the first usable capture
// are excluded from the centroid rather than failing the build. If no usable
// capture remains the build fails with ErrInsufficientFeatures and no Template
// is produced.
func BuildTemplate(captures []DescriptorSet, minElements int) (*Template, error) {
	var usable []DescriptorSet
	for _, c := range captures {
		if c.Usable(minElements) {
			usable = append(usable, c)
		}
	}
	if len(usable) == 0 {
		return nil, fmt.Errorf("template build from %d capture(s): %w", len(captures), ErrInsufficientFeatures)
	}

	primary := usable[0]
	return &Template{
		Strategy: StrategyForKind(primary.Kind),
		Primary:  primary,
		Centroid: buildCentroid(usable),
	}, nil
}

// buildCentroid averages descriptor vectors element-wise across captures that
// share the first capture's kind and vector width. The centroid keeps as many
// rows as the smallest contributing capture and is always stored as float32,
// even for binary descriptors.
func buildCentroid(usable []DescriptorSet) DescriptorSet {
	first := usable[0]
	var contributors []DescriptorSet
	minRows := first.Len()
	for _, c := range usable {
		if c.Kind != first.Kind || c.Dim != first.Dim {
			continue
		}
		contributors = append(contributors, c)
		if c.Len() < minRows {
			minRows = c.Len()
		}
	}

	centroid := DescriptorSet{Kind: KindFloat, Dim: first.Dim}
	if minRows == 0 || len(contributors) == 0 {
		return centroid
	}

	centroid.Float = make([][]float32, minRows)
	n := float32(len(contributors))
	for i := 0; i < minRows; i++ {
		row := make([]float32, first.Dim)
		for _, c := range contributors {
			for j := 0; j < first.Dim; j++ {
				row[j] += c.elementAt(i, j)
			}
		}
		for j := range row {
			row[j] /= n
		}
		centroid.Float[i] = row
	}
	return centroid
}

func (d DescriptorSet) elementAt(row, col int) float32 {
	if d.Kind == KindBinary {
		return float32(d.Binary[row][col])
	}
	return d.Float[row][col]
}
