package acquisition

import (
	"fmt"
	"log"
	"sync"

	"gocv.io/x/gocv"

	"github.com/dilip-codes/fingerauthbackend/biometric"
)

// warmup frames discarded after opening so auto-exposure settles before the
// first real capture
const webcamWarmupFrames = 5

// LiveCapture grabs frames from an attached webcam for kiosk deployments. It
// serializes access: one capture event completes before the next begins.
type LiveCapture struct {
	mu       sync.Mutex
	device   *gocv.VideoCapture
	deviceID int
}

// OpenLiveCapture opens the webcam with the given device id.
func OpenLiveCapture(deviceID int) (*LiveCapture, error) {
	device, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to open webcam device %d: %v: %w", deviceID, err, biometric.ErrAcquisitionFailed)
	}

	lc := &LiveCapture{device: device, deviceID: deviceID}
	frame := gocv.NewMat()
	defer frame.Close()
	for i := 0; i < webcamWarmupFrames; i++ {
		device.Read(&frame)
	}

	log.Printf("acquisition: opened webcam device %d", deviceID)
	return lc, nil
}

// Acquire reads one frame from the webcam.
func (lc *LiveCapture) Acquire() (gocv.Mat, error) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	frame := gocv.NewMat()
	if ok := lc.device.Read(&frame); !ok || frame.Empty() {
		frame.Close()
		return gocv.Mat{}, fmt.Errorf("webcam device %d produced no frame: %w", lc.deviceID, biometric.ErrAcquisitionFailed)
	}
	return frame, nil
}

// Close releases the webcam device.
func (lc *LiveCapture) Close() error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.device.Close()
}
