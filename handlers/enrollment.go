package handlers

import (
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dilip-codes/fingerauthbackend/acquisition"
	"github.com/dilip-codes/fingerauthbackend/biometric"
	"github.com/dilip-codes/fingerauthbackend/media"
	"github.com/dilip-codes/fingerauthbackend/repository"
	"github.com/dilip-codes/fingerauthbackend/services"
	"github.com/dilip-codes/fingerauthbackend/utils"
	"github.com/dilip-codes/fingerauthbackend/workers"
)

const maxEnrollmentUploadBytes = 32 << 20

// EnrollmentHandler accepts multipart enrollment requests: a subject id, a
// name, and one or more capture images. Extraction happens here at the edge;
// the service only ever sees descriptor sets.
type EnrollmentHandler struct {
	Enrollment  *services.EnrollmentService
	Extractor   *biometric.Extractor
	Gallery     repository.GalleryRepositoryInterface
	Archiver    *workers.CaptureArchiver
	MaxCaptures int
}

type enrollmentResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	CapturesUsed int    `json:"captures_used"`
	Strategy     string `json:"strategy"`
}

func (h *EnrollmentHandler) EnrollSubject(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxEnrollmentUploadBytes); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_form", "failed to parse multipart form: "+err.Error())
		return
	}

	idValue, err := strconv.ParseUint(r.FormValue("id"), 10, 32)
	if err != nil || idValue == 0 {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	id := uint(idValue)

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		WriteAPIError(w, http.StatusBadRequest, "invalid_name", "missing required field: name")
		return
	}

	// duplicate ids must fail before any capture work happens
	if err := h.Enrollment.CheckAvailable(id); err != nil {
		WriteBiometricError(w, err)
		return
	}

	files := r.MultipartForm.File["captures"]
	if len(files) == 0 {
		WriteAPIError(w, http.StatusBadRequest, "missing_captures", "at least one capture image is required")
		return
	}
	if len(files) > h.MaxCaptures {
		log.Printf("enrollment handler: %d captures uploaded for id %d, keeping the first %d", len(files), id, h.MaxCaptures)
		files = files[:h.MaxCaptures]
	}

	var captures []biometric.DescriptorSet
	var archiveJobs []workers.ArchiveJob
	today := time.Now().Format("2006-01-02")

	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			WriteAPIError(w, http.StatusBadRequest, "invalid_capture", "failed to open uploaded capture "+header.Filename)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			WriteAPIError(w, http.StatusBadRequest, "invalid_capture", "failed to read uploaded capture "+header.Filename)
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
		captures = append(captures, descriptors)

		meta := utils.GetCaptureMetadata(data)
		archiveJobs = append(archiveJobs, workers.ArchiveJob{
			AssetType: media.AssetTypeEnrollmentCapture,
			Date:      today,
			TakenAt:   meta.TakenAt,
			Data:      data,
		})
	}

	subject, err := h.Enrollment.Enroll(id, name, captures)
	if err != nil {
		WriteBiometricError(w, err)
		return
	}

	if h.Archiver != nil {
		for _, job := range archiveJobs {
			h.Archiver.Enqueue(job)
		}
	}

	writeJSON(w, http.StatusCreated, enrollmentResponse{
		ID:           subject.ID,
		Name:         subject.Name,
		CapturesUsed: len(captures),
		Strategy:     string(h.Extractor.Strategy()),
	})
}

// ListSubjects returns the enrolled subject directory in insertion order.
func (h *EnrollmentHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.Gallery.ListSubjects()
	if err != nil {
		log.Printf("enrollment handler: failed to list subjects: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "failed to list subjects")
		return
	}
	writeJSON(w, http.StatusOK, subjects)
}
