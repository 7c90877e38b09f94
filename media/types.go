// media/types.go
package media

type AssetType string

const (
	AssetTypeEnrollmentCapture     AssetType = "enrollment_capture"
	AssetTypeAuthenticationCapture AssetType = "authentication_capture"
	AssetTypeUnknown               AssetType = "unknown"
)

// SnapshotOptions holds parameters for archived capture snapshots
type SnapshotOptions struct {
	MaxSize int // longest side in pixels, 0 keeps original size
	Quality int // JPEG quality, defaults to SnapshotJpegQuality
}
