package model

import "time"

// Upload kinds accepted by the upload endpoint.
const (
	UploadKindAvatar       = "avatar"
	UploadKindProfileImage = "profile-image"
	UploadKindHeroImage    = "hero-image"
	UploadKindProjectImage = "project-image"
	UploadKindResume       = "resume"
)

// Upload is a ledger row for a file pushed to remote storage. Rows whose key
// is never attached to an entity are collected by the orphan sweep.
type Upload struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Key       string    `db:"storage_key" json:"key"`
	URL       string    `db:"url" json:"url"`
	Kind      string    `db:"kind" json:"kind"`
	Size      int64     `db:"size" json:"size"`
	MimeType  string    `db:"mime_type" json:"mimeType"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
