package dto

import "github.com/google/uuid"

// MaxUploadBytes caps a single course asset.
const MaxUploadBytes = 20 << 20

type UploadAttachmentResponse struct {
	ID       uuid.UUID `json:"id"`
	FileURL  string    `json:"fileUrl"`
	FileType string    `json:"fileType"`
	FileName string    `json:"fileName,omitempty"`
	Bytes    int       `json:"bytes,omitempty"`
}
