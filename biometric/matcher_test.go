package biometric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatcherClampsRatio(t *testing.T) {
	assert.Equal(t, DefaultRatioThreshold, NewMatcher(0).ratio)
	assert.Equal(t, DefaultRatioThreshold, NewMatcher(1).ratio)
	assert.Equal(t, DefaultRatioThreshold, NewMatcher(-3).ratio)
	assert.Equal(t, 0.6, NewMatcher(0.6).ratio)
}

func TestMatchEmptySets(t *testing.T) {
	m := NewMatcher(DefaultRatioThreshold)
	populated := floatSet([][]float32{{1, 2}, {3, 4}})

	assert.Equal(t, 0, m.Match(DescriptorSet{Kind: KindFloat}, populated))
	assert.Equal(t, 0, m.Match(populated, DescriptorSet{Kind: KindFloat}))
	assert.Equal(t, 0, m.Match(DescriptorSet{Kind: KindFloat}, DescriptorSet{Kind: KindFloat}))
}

func TestMatchIncomparableSets(t *testing.T) {
	m := NewMatcher(DefaultRatioThreshold)

	f := floatSet([][]float32{{1, 2}, {3, 4}})
	b := binarySet([][]byte{{0x01, 0x02}, {0x03, 0x04}})
	assert.Equal(t, 0, m.Match(f, b), "kind mismatch never matches")

	wider := floatSet([][]float32{{1, 2, 3}, {4, 5, 6}})
	assert.Equal(t, 0, m.Match(f, wider), "width mismatch never matches")
}

func TestMatchNeedsSecondNeighbour(t *testing.T) {
	m := NewMatcher(DefaultRatioThreshold)
	query := floatSet([][]float32{{0, 0}})
	single := floatSet([][]float32{{0, 0}})
	assert.Equal(t, 0, m.Match(query, single), "a one-row candidate cannot pass the ratio test")
}

func TestMatchRatioTestFloat(t *testing.T) {
	// one query vector at the origin, candidates at distances 1 and 10
	query := floatSet([][]float32{{0, 0}})
	candidate := floatSet([][]float32{{1, 0}, {10, 0}})

	t.Run("decisive nearest neighbour accepted", func(t *testing.T) {
		m := NewMatcher(0.75)
		assert.Equal(t, 1, m.Match(query, candidate), "1 < 0.75*10 passes")
	})

	t.Run("stricter ratio rejects the same pair", func(t *testing.T) {
		m := NewMatcher(0.05)
		assert.Equal(t, 0, m.Match(query, candidate), "1 >= 0.05*10 fails")
	})

	t.Run("ambiguous neighbours rejected", func(t *testing.T) {
		m := NewMatcher(0.75)
		ambiguous := floatSet([][]float32{{1, 0}, {1.1, 0}})
		assert.Equal(t, 0, m.Match(query, ambiguous), "near-equal distances are indecisive")
	})
}

func TestMatchRatioTestBinary(t *testing.T) {
	query := binarySet([][]byte{{0x00}})

	t.Run("decisive hamming neighbour accepted", func(t *testing.T) {
		m := NewMatcher(0.75)
		candidate := binarySet([][]byte{{0x01}, {0xFF}}) // distances 1 and 8
		assert.Equal(t, 1, m.Match(query, candidate))
	})

	t.Run("ambiguous hamming neighbours rejected", func(t *testing.T) {
		m := NewMatcher(0.75)
		candidate := binarySet([][]byte{{0x01}, {0x02}}) // both at distance 1
		assert.Equal(t, 0, m.Match(query, candidate))
	})
}

func TestMatchExactAndIndexedAgree(t *testing.T) {
	query := wellSeparatedFloatSet(12, 8, 0.1)
	candidate := wellSeparatedFloatSet(12, 8, 0)

	m := NewMatcher(DefaultRatioThreshold)

	indexed, ok := m.matchFloatIndexed(query, candidate)
	require.True(t, ok, "the flat index path must be available")
	exact := m.matchFloatExact(query, candidate)
	assert.Equal(t, exact, indexed, "indexed and brute-force scores must agree")
	assert.Equal(t, 12, exact, "every jittered row should find its own twin decisively")
}

func TestMatchJitteredCaptureScoresHigh(t *testing.T) {
	stored := wellSeparatedFloatSet(20, 16, 0)
	jittered := wellSeparatedFloatSet(20, 16, 0.2)

	m := NewMatcher(DefaultRatioThreshold)
	assert.Equal(t, 20, m.Match(jittered, stored))
}

func TestMatchUnrelatedCaptureScoresZero(t *testing.T) {
	stored := wellSeparatedFloatSet(20, 16, 0)

	// every query row sits exactly between two stored rows, so the nearest
	// neighbour is never decisive
	rows := make([][]float32, 20)
	for i := range rows {
		row := make([]float32, 16)
		row[0] = float32(i)*100 + 50
		rows[i] = row
	}
	between := DescriptorSet{Kind: KindFloat, Dim: 16, Float: rows}

	m := NewMatcher(DefaultRatioThreshold)
	assert.Equal(t, 0, m.Match(between, stored))
}

// wellSeparatedFloatSet places row i at i*100 on the first axis, shifted by
// the given jitter. Twin rows across two such sets are 100x closer to each
// other than to any other row, so the ratio test verdict is deterministic.
func wellSeparatedFloatSet(rows, dim int, jitter float32) DescriptorSet {
	data := make([][]float32, rows)
	for i := range data {
		row := make([]float32, dim)
		row[0] = float32(i)*100 + jitter
		data[i] = row
	}
	return DescriptorSet{Kind: KindFloat, Dim: dim, Float: data}
}
