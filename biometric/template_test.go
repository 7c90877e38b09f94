package biometric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// usableFloatSet builds a float set with enough elements to clear the given
// usability minimum: rows of the given dim filled with the base value.
func usableFloatSet(rows, dim int, base float32) DescriptorSet {
	data := make([][]float32, rows)
	for i := range data {
		row := make([]float32, dim)
		for j := range row {
			row[j] = base + float32(i)
		}
		data[i] = row
	}
	return DescriptorSet{Kind: KindFloat, Dim: dim, Float: data}
}

func TestBuildTemplateNoUsableCaptures(t *testing.T) {
	captures := []DescriptorSet{
		floatSet([][]float32{{1, 2}}), // 2 elements, far below minimum
		{Kind: KindFloat},
	}
	tpl, err := BuildTemplate(captures, 100)
	require.ErrorIs(t, err, ErrInsufficientFeatures)
	assert.Nil(t, tpl)
}

func TestBuildTemplatePrimaryIsFirstUsableVerbatim(t *testing.T) {
	tooSmall := floatSet([][]float32{{9, 9}})
	first := usableFloatSet(10, 16, 1)
	second := usableFloatSet(10, 16, 5)

	tpl, err := BuildTemplate([]DescriptorSet{tooSmall, first, second}, 100)
	require.NoError(t, err)

	assert.Equal(t, DetectorPrimary, tpl.Strategy)
	assert.Equal(t, first.Float, tpl.Primary.Float, "primary must be the first usable capture, untouched")
	assert.Equal(t, 16, tpl.Primary.Dim)
}

func TestBuildTemplateCentroidIsElementWiseMean(t *testing.T) {
	a := usableFloatSet(3, 64, 2) // rows of 2,3,4
	b := usableFloatSet(3, 64, 4) // rows of 4,5,6

	tpl, err := BuildTemplate([]DescriptorSet{a, b}, 100)
	require.NoError(t, err)

	require.Equal(t, KindFloat, tpl.Centroid.Kind)
	require.Len(t, tpl.Centroid.Float, 3)
	assert.InDelta(t, 3.0, tpl.Centroid.Float[0][0], 1e-6)
	assert.InDelta(t, 4.0, tpl.Centroid.Float[1][0], 1e-6)
	assert.InDelta(t, 5.0, tpl.Centroid.Float[2][0], 1e-6)
}

func TestBuildTemplateCentroidKeepsMinRows(t *testing.T) {
	a := usableFloatSet(5, 64, 1)
	b := usableFloatSet(3, 64, 1)

	tpl, err := BuildTemplate([]DescriptorSet{a, b}, 100)
	require.NoError(t, err)
	assert.Len(t, tpl.Centroid.Float, 3, "centroid keeps as many rows as the smallest contributor")
	assert.Len(t, tpl.Primary.Float, 5, "primary keeps all of the first capture's rows")
}

func TestBuildTemplateCentroidDropsShapeMismatch(t *testing.T) {
	a := usableFloatSet(4, 64, 2)
	narrower := usableFloatSet(4, 32, 100)

	tpl, err := BuildTemplate([]DescriptorSet{a, narrower}, 100)
	require.NoError(t, err)

	// the mismatched capture must not pull the mean
	assert.InDelta(t, 2.0, tpl.Centroid.Float[0][0], 1e-6)
	assert.Equal(t, 64, tpl.Centroid.Dim)
}

func TestBuildTemplateBinaryCentroidStoredAsFloat(t *testing.T) {
	rows := make([][]byte, 4)
	for i := range rows {
		row := make([]byte, 32)
		for j := range row {
			row[j] = byte(10 * (i + 1))
		}
		rows[i] = row
	}
	capture := DescriptorSet{Kind: KindBinary, Dim: 32, Binary: rows}

	tpl, err := BuildTemplate([]DescriptorSet{capture}, 100)
	require.NoError(t, err)

	assert.Equal(t, DetectorFallback, tpl.Strategy)
	assert.Equal(t, KindBinary, tpl.Primary.Kind)
	require.Equal(t, KindFloat, tpl.Centroid.Kind, "centroids are float even for binary primaries")
	assert.InDelta(t, 10.0, tpl.Centroid.Float[0][0], 1e-6)
}
