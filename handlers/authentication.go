package handlers

import (
	"io"
	"log"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/dilip-codes/fingerauthbackend/acquisition"
	"github.com/dilip-codes/fingerauthbackend/biometric"
	"github.com/dilip-codes/fingerauthbackend/media"
	"github.com/dilip-codes/fingerauthbackend/services"
	"github.com/dilip-codes/fingerauthbackend/utils"
	"github.com/dilip-codes/fingerauthbackend/workers"
)

const maxAuthenticationUploadBytes = 16 << 20

// AuthenticationHandler runs one authentication attempt per request. The
// capture comes from an uploaded file when one is present, otherwise from the
// configured live camera. Webcam is nil when no camera is configured.
type AuthenticationHandler struct {
	Auth      *services.AuthenticationService
	Extractor *biometric.Extractor
	Webcam    acquisition.ImageSource
	Archiver  *workers.CaptureArchiver
}

// Authenticate extracts features from the capture, decides the verdict, and
// returns it with 200 whether accepted or rejected. Pipeline failures map to
// error statuses via WriteBiometricError.
func (h *AuthenticationHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	data, takenAt, err := h.acquireCaptureBytes(r)
	if err != nil {
		WriteBiometricError(w, err)
		return
	}

	source := acquisition.NewFileSelection(data)
	img, err := source.Acquire()
	if err != nil {
		WriteBiometricError(w, err)
		return
	}

	descriptors, err := h.Extractor.Extract(img)
	img.Close()
	if err != nil {
		WriteBiometricError(w, err)
		return
	}

	result, err := h.Auth.Authenticate(descriptors)
	if err != nil {
		WriteBiometricError(w, err)
		return
	}

	// only accepted captures are worth keeping for the archive
	if result.Accepted && h.Archiver != nil {
		h.Archiver.Enqueue(workers.ArchiveJob{
			AssetType: media.AssetTypeAuthenticationCapture,
			Date:      time.Now().Format("2006-01-02"),
			TakenAt:   takenAt,
			Data:      data,
		})
	}

	writeJSON(w, http.StatusOK, result)
}

// acquireCaptureBytes resolves the capture for this attempt: an uploaded
// "capture" file wins, then the live camera. The returned bytes are always an
// encoded image the caller owns.
func (h *AuthenticationHandler) acquireCaptureBytes(r *http.Request) ([]byte, *int64, error) {
	if err := r.ParseMultipartForm(maxAuthenticationUploadBytes); err == nil {
		file, _, err := r.FormFile("capture")
		if err == nil {
			defer file.Close()
			data, err := io.ReadAll(file)
			if err != nil {
				return nil, nil, biometric.ErrAcquisitionFailed
			}
			meta := utils.GetCaptureMetadata(data)
			return data, meta.TakenAt, nil
		}
	}

	if h.Webcam == nil {
		return nil, nil, biometric.ErrAcquisitionFailed
	}

	img, err := h.Webcam.Acquire()
	if err != nil {
		return nil, nil, err
	}
	defer img.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		log.Printf("authentication handler: failed to encode camera frame: %v", err)
		return nil, nil, biometric.ErrAcquisitionFailed
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil, nil
}
