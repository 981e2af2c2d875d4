package model

// ThumbnailJob is the payload handed to the thumbnail dispatcher after an
// image record is inserted. Generation itself runs outside this service.
type ThumbnailJob struct {
	FileID string `json:"fileId"`
	UserID string `json:"userId"`
}

// ThumbnailWidths are the derivative sizes the external worker produces.
// The content endpoint accepts them as the "size" query parameter.
var ThumbnailWidths = []int{100, 250, 500}
