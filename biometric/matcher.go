package biometric

import (
	"context"
	"log"
	"math"
	"math/bits"

	"github.com/hupe1980/vecgo"
)

// DefaultRatioThreshold is Lowe's nearest-neighbour ratio used when the
// configured value is out of range.
const DefaultRatioThreshold = 0.75

// Matcher counts good descriptor correspondences between a live capture and a
// stored template. The direction is fixed by convention: query is always the
// live capture, candidate the stored primary descriptors, so scores stay
// comparable across the gallery.
type Matcher struct {
	ratio float64
}

// NewMatcher creates a matcher with the given ratio-test threshold. Values
// outside (0,1) fall back to DefaultRatioThreshold.
func NewMatcher(ratio float64) *Matcher {
	if ratio <= 0 || ratio >= 1 {
		ratio = DefaultRatioThreshold
	}
	return &Matcher{ratio: ratio}
}

// Match returns the number of query vectors whose nearest neighbour in
// candidate passes the ratio test. An empty set on either side scores 0; it is
// a legitimate "no overlap" outcome, never an error. Sets of different kinds or
// widths are incomparable and also score 0.
func (m *Matcher) Match(query, candidate DescriptorSet) int {
	if query.Empty() || candidate.Empty() {
		return 0
	}
	if query.Kind != candidate.Kind || query.Dim != candidate.Dim {
		return 0
	}
	// the ratio test needs a second-nearest neighbour
	if candidate.Len() < 2 {
		return 0
	}
	if query.Kind == KindBinary {
		return m.matchBinary(query, candidate)
	}
	if score, ok := m.matchFloatIndexed(query, candidate); ok {
		return score
	}
	return m.matchFloatExact(query, candidate)
}

// accept applies the ratio test: the nearest neighbour is a good match only if
// it is decisively closer than the runner-up.
func (m *Matcher) accept(nearest, second float64) bool {
	return nearest < m.ratio*second
}

// matchFloatIndexed runs the 2-NN search through a flat vector index. Exact at
// this scale, but any index failure abandons the whole attempt so the caller
// can fall back to plain brute force; correctness outranks speed here.
func (m *Matcher) matchFloatIndexed(query, candidate DescriptorSet) (int, bool) {
	db, err := vecgo.Flat[int](candidate.Dim).SquaredL2().Build()
	if err != nil {
		log.Printf("matcher: flat index unavailable, falling back to brute force: %v", err)
		return 0, false
	}
	defer db.Close()

	ctx := context.Background()
	for i, v := range candidate.Float {
		if _, err := db.Insert(ctx, vecgo.VectorWithData[int]{Vector: v, Data: i}); err != nil {
			log.Printf("matcher: index insert failed, falling back to brute force: %v", err)
			return 0, false
		}
	}

	good := 0
	for _, q := range query.Float {
		results, err := db.Search(q).KNN(2).Execute(ctx)
		if err != nil {
			log.Printf("matcher: index search failed, falling back to brute force: %v", err)
			return 0, false
		}
		if len(results) < 2 {
			continue
		}
		// index distances are squared L2
		d1 := math.Sqrt(float64(results[0].Distance))
		d2 := math.Sqrt(float64(results[1].Distance))
		if m.accept(d1, d2) {
			good++
		}
	}
	return good, true
}

func (m *Matcher) matchFloatExact(query, candidate DescriptorSet) int {
	good := 0
	for _, q := range query.Float {
		best, second := math.Inf(1), math.Inf(1)
		for _, c := range candidate.Float {
			d := squaredEuclidean(q, c)
			if d < best {
				best, second = d, best
			} else if d < second {
				second = d
			}
		}
		if m.accept(math.Sqrt(best), math.Sqrt(second)) {
			good++
		}
	}
	return good
}

func (m *Matcher) matchBinary(query, candidate DescriptorSet) int {
	good := 0
	for _, q := range query.Binary {
		best, second := math.MaxInt, math.MaxInt
		for _, c := range candidate.Binary {
			d := hamming(q, c)
			if d < best {
				best, second = d, best
			} else if d < second {
				second = d
			}
		}
		if m.accept(float64(best), float64(second)) {
			good++
		}
	}
	return good
}

func squaredEuclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

func hamming(a, b []byte) int {
	d := 0
	for i := range a {
		d += bits.OnesCount8(a[i] ^ b[i])
	}
	return d
}
