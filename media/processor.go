package media

import (
	"bytes"
	"fmt"
	"log"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	SnapshotJpegQuality   = 85
	SnapshotFileExtension = ".jpg"
)

// Processor turns raw capture bytes into archived JPEG snapshots. it relies
// on a Store implementation for saving the results.
type Processor struct {
	store Store
}

func NewProcessor(store Store) *Processor {
	return &Processor{store: store}
}

// ArchiveSnapshot decodes a capture, bounds its longest side to maxSize (0
// keeps the original size), and saves it with a UUID filename inside the
// given date partition. returns the relative path of the saved snapshot.
func (p *Processor) ArchiveSnapshot(assetType AssetType, datePartition string, captureData []byte, maxSize int) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(captureData))
	if err != nil {
		return "", fmt.Errorf("failed to decode capture for archiving: %w", err)
	}

	bounds := img.Bounds()
	if maxSize > 0 && (bounds.Dx() > maxSize || bounds.Dy() > maxSize) {
		img = imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)
	}

	snapUUID, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID for snapshot filename: %w", err)
	}
	filename := snapUUID.String() + SnapshotFileExtension

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(SnapshotJpegQuality)); err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	relPath, err := p.store.Save(assetType, datePartition, filename, &buf)
	if err != nil {
		return "", err
	}

	log.Printf("media.processor: archived %s snapshot (UUID: %s) under %s", assetType, snapUUID.String(), datePartition)
	return relPath, nil
}
