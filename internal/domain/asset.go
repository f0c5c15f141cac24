package domain

import "time"

type AssetPurpose string

const (
	PurposeTicketDesign AssetPurpose = "ticket_design"
	PurposeOther        AssetPurpose = "other"
)

// FileAssetRecord is the provenance log entry written for every persisted
// upload. It is advisory: nothing reads it back to serve requests.
type FileAssetRecord struct {
	ID           uint
	StoredName   string
	OriginalName string
	StoredPath   string
	Size         int64
	MediaType    string
	Digest       string
	Purpose      AssetPurpose
	RelatedID    uint
	CreatedAt    time.Time
}
