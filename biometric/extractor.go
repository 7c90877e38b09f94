package biometric

import (
	"fmt"
	"image"
	"log"

	"gocv.io/x/gocv"
)

// DetectorStrategy selects which keypoint detector/descriptor algorithm the
// extractor runs. It is chosen once by capability probing at startup, never by
// per-call exception handling, and is recorded on every template so matching
// always uses a compatible descriptor metric.
type DetectorStrategy string

const (
	// DetectorPrimary is the scale/rotation-invariant float-descriptor
	// detector (SIFT). Higher quality, higher per-vector cost.
	DetectorPrimary DetectorStrategy = "primary"
	// DetectorFallback is the cheaper binary-descriptor detector (ORB), used
	// when the primary detector is unavailable.
	DetectorFallback DetectorStrategy = "fallback"
)

const (
	// DefaultMinFeatureElements is the minimum total element count for a
	// DescriptorSet to be considered usable (dozens of keypoints).
	DefaultMinFeatureElements = 100

	// Accept thresholds differ per pipeline because the detectors produce
	// different match densities.
	DefaultAcceptThresholdPrimary  = 30
	DefaultAcceptThresholdFallback = 20

	orbFeatureLimit = 1000
)

// StrategyForKind maps a descriptor representation back to the strategy that
// produces it.
func StrategyForKind(kind DescriptorKind) DetectorStrategy {
	if kind == KindBinary {
		return DetectorFallback
	}
	return DetectorPrimary
}

// KindForStrategy is the inverse of StrategyForKind.
func KindForStrategy(strategy DetectorStrategy) DescriptorKind {
	if strategy == DetectorFallback {
		return KindBinary
	}
	return KindFloat
}

// DefaultAcceptThreshold returns the decision threshold calibrated for the
// given detector's descriptor density.
func DefaultAcceptThreshold(strategy DetectorStrategy) int {
	if strategy == DetectorFallback {
		return DefaultAcceptThresholdFallback
	}
	return DefaultAcceptThresholdPrimary
}

// ProbeDetector checks at startup whether the primary detector is operational
// and returns the strategy the extractor should run with.
func ProbeDetector() DetectorStrategy {
	if probePrimary() {
		log.Println("extractor: primary detector (SIFT) available")
		return DetectorPrimary
	}
	log.Println("extractor: primary detector unavailable, using fallback detector (ORB)")
	return DetectorFallback
}

func probePrimary() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("extractor: primary detector probe panicked: %v", r)
			ok = false
		}
	}()

	sift := gocv.NewSIFT()
	defer sift.Close()

	probe := gocv.NewMatWithSize(64, 64, gocv.MatTypeCV8U)
	defer probe.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	_, desc := sift.DetectAndCompute(probe, mask)
	desc.Close()
	return true
}

// Extractor turns a raw capture image into a normalized, comparable
// DescriptorSet. Extraction is deterministic for identical pixel input; the
// detectors run with fixed parameters and no random seeding.
type Extractor struct {
	strategy DetectorStrategy
}

// NewExtractor creates an extractor bound to the given detector strategy.
func NewExtractor(strategy DetectorStrategy) *Extractor {
	if strategy != DetectorPrimary && strategy != DetectorFallback {
		strategy = ProbeDetector()
	}
	return &Extractor{strategy: strategy}
}

// Strategy returns the detector strategy the extractor is running with.
func (e *Extractor) Strategy() DetectorStrategy {
	return e.strategy
}

// Extract preprocesses the image and runs feature detection on it. The result
// may be empty or below the usability threshold; callers check Usable before
// storing or matching. An empty input image is an acquisition failure, not a
// zero-feature capture.
func (e *Extractor) Extract(img gocv.Mat) (DescriptorSet, error) {
	if img.Empty() {
		return DescriptorSet{}, fmt.Errorf("extractor: empty input image: %w", ErrAcquisitionFailed)
	}

	enhanced := e.enhance(img)
	defer enhanced.Close()

	mask := gocv.NewMat()
	defer mask.Close()

	var kps []gocv.KeyPoint
	var desc gocv.Mat
	var kind DescriptorKind

	switch e.strategy {
	case DetectorFallback:
		orb := gocv.NewORBWithParams(orbFeatureLimit, 1.2, 8, 31, 0, 2, gocv.ORBScoreTypeHarris, 31, 20)
		defer orb.Close()
		kps, desc = orb.DetectAndCompute(enhanced, mask)
		kind = KindBinary
	default:
		sift := gocv.NewSIFT()
		defer sift.Close()
		kps, desc = sift.DetectAndCompute(enhanced, mask)
		kind = KindFloat
	}
	defer desc.Close()

	return descriptorSetFromMat(kind, kps, desc), nil
}

// enhance normalizes a capture so downstream detection sees a consistent
// ridge/valley polarity regardless of sensor or lighting: grayscale, adaptive
// histogram equalization, Gaussian smoothing, Otsu binarization, and an
// inversion pass that forces ridge pixels to the bright class.
func (e *Extractor) enhance(img gocv.Mat) gocv.Mat {
	var gray gocv.Mat
	if img.Channels() >= 3 {
		gray = gocv.NewMat()
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	} else {
		gray = img.Clone()
	}
	defer gray.Close()

	clahe := gocv.NewCLAHEWithParams(2.0, image.Pt(8, 8))
	defer clahe.Close()
	equalized := gocv.NewMat()
	clahe.Apply(gray, &equalized)
	defer equalized.Close()

	blurred := gocv.NewMat()
	gocv.GaussianBlur(equalized, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)
	defer blurred.Close()

	binary := gocv.NewMat()
	gocv.Threshold(blurred, &binary, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)

	if binary.Mean().Val1 < 127 {
		inverted := gocv.NewMat()
		gocv.BitwiseNot(binary, &inverted)
		binary.Close()
		return inverted
	}
	return binary
}

func descriptorSetFromMat(kind DescriptorKind, kps []gocv.KeyPoint, desc gocv.Mat) DescriptorSet {
	ds := DescriptorSet{Kind: kind}
	if desc.Empty() {
		return ds
	}

	rows, cols := desc.Rows(), desc.Cols()
	ds.Dim = cols
	ds.Keypoints = make([]Keypoint, 0, len(kps))
	for _, kp := range kps {
		ds.Keypoints = append(ds.Keypoints, Keypoint{X: kp.X, Y: kp.Y, Size: kp.Size, Angle: kp.Angle})
	}

	if kind == KindBinary {
		ds.Binary = make([][]byte, rows)
		for i := 0; i < rows; i++ {
			row := make([]byte, cols)
			for j := 0; j < cols; j++ {
				row[j] = desc.GetUCharAt(i, j)
			}
			ds.Binary[i] = row
		}
		return ds
	}

	ds.Float = make([][]float32, rows)
	for i := 0; i < rows; i++ {
		row := make([]float32, cols)
		for j := 0; j < cols; j++ {
			row[j] = desc.GetFloatAt(i, j)
		}
		ds.Float[i] = row
	}
	return ds
}
