package acquisition

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/dilip-codes/fingerauthbackend/biometric"
)

// ImageSource supplies one capture image per acquisition event. The matching
// core only ever consumes the resulting image and stays oblivious to whether
// it came from a live camera or a selected file; device handles live behind
// this interface, never in the core.
type ImageSource interface {
	Acquire() (gocv.Mat, error)
	Close() error
}

// FileSelection wraps an already-selected image, typically an upload. Each
// acquisition decodes the same bytes, so a FileSelection can be re-acquired.
type FileSelection struct {
	data []byte
}

// NewFileSelection creates an ImageSource over raw encoded image bytes.
func NewFileSelection(data []byte) *FileSelection {
	return &FileSelection{data: data}
}

// Acquire decodes the selected image. Undecodable input surfaces as an
// acquisition failure, never as a zero-feature capture.
func (f *FileSelection) Acquire() (gocv.Mat, error) {
	if len(f.data) == 0 {
		return gocv.Mat{}, fmt.Errorf("file selection is empty: %w", biometric.ErrAcquisitionFailed)
	}
	img, err := gocv.IMDecode(f.data, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("file selection decode: %v: %w", err, biometric.ErrAcquisitionFailed)
	}
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, fmt.Errorf("file selection decoded to empty image: %w", biometric.ErrAcquisitionFailed)
	}
	return img, nil
}

// Close is a no-op for file selections.
func (f *FileSelection) Close() error {
	return nil
}
