package dto

import (
	"time"

	"secretboard/internal/domain/models"
	"secretboard/internal/services/tracking"
)

// Response
type (
	PostResponse struct {
		ID         int64     `json:"id"`
		Content    string    `json:"content"`
		PostedBy   string    `json:"posted_by"`
		TrackingID string    `json:"tracking_id"`
		CreatedAt  time.Time `json:"created_at"`
	}

	ErrorResponse struct {
		Error string `json:"error"`
	}
)

// Domain → Response
func PostResponseFromDomain(p models.Post) PostResponse {
	return PostResponse{
		ID:         p.ID,
		Content:    p.Content,
		PostedBy:   p.PostedBy,
		TrackingID: tracking.OriginalID(p.TrackingCookie),
		CreatedAt:  p.CreatedAt.UTC(),
	}
}

func PostsResponseFromDomain(posts []models.Post) []PostResponse {
	resp := make([]PostResponse, len(posts))
	for i, p := range posts {
		resp[i] = PostResponseFromDomain(p)
	}
	return resp
}
