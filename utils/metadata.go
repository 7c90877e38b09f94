package utils

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// CaptureMetadata is the slice of EXIF data relevant to an acquisition event:
// when the frame was taken and what produced it. Everything is optional; most
// webcam frames carry no EXIF at all.
type CaptureMetadata struct {
	Width       *int    `json:"width,omitempty"`
	Height      *int    `json:"height,omitempty"`
	CameraMake  *string `json:"camera_make,omitempty"`
	CameraModel *string `json:"camera_model,omitempty"`
	TakenAt     *int64  `json:"taken_at,omitempty"`
}

// helper to safely get a string tag, trimming null terminators
func getString(exifData *exif.Exif, tagName exif.FieldName) *string {
	tag, err := exifData.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	// val string might have null chars at the end
	val := strings.TrimRight(strings.Trim(tag.String(), "\""), "\x00")
	if val == "" {
		return nil
	}
	return &val
}

// GetCaptureMetadata extracts capture metadata from encoded image bytes. A
// missing or unparsable EXIF block is not an error; whatever dimensions could
// be decoded are still returned.
func GetCaptureMetadata(data []byte) *CaptureMetadata {
	meta := &CaptureMetadata{}

	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil {
		w, h := config.Width, config.Height
		meta.Width = &w
		meta.Height = &h
	}

	exifData, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		// not necessarily a problem, the capture might just lack EXIF data
		return meta
	}

	meta.CameraMake = getString(exifData, exif.Make)
	meta.CameraModel = getString(exifData, exif.Model)

	if dt, err := exifData.DateTime(); err == nil {
		ts := dt.Unix()
		meta.TakenAt = &ts
	} else if tag, tagErr := exifData.Get(exif.DateTimeOriginal); tagErr == nil {
		if s, strErr := tag.StringVal(); strErr == nil {
			if dt, parseErr := time.ParseInLocation("2006:01:02 15:04:05", s, time.Local); parseErr == nil {
				ts := dt.Unix()
				meta.TakenAt = &ts
			}
		}
	}

	return meta
}
