package dto

// UploadResponse returns the hosted URL for an uploaded image.
type UploadResponse struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}
