package dto

import (
	"time"

	"reviewhub/internal/http-api/models"
)

// CommentResponse is the read shape for comments under a review
type CommentResponse struct {
	ID      int64     `json:"id"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	PubDate time.Time `json:"pub_date"`
}

// FromModelToCommentResponse converts a Comment model to CommentResponse DTO
func FromModelToCommentResponse(c *models.Comment) *CommentResponse {
	return &CommentResponse{
		ID:      c.ID,
		Author:  c.Author.Username,
		Text:    c.Text,
		PubDate: c.CreatedAt,
	}
}

// CreateCommentRequest: text under a review
type CreateCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// UpdateCommentRequest: partial update; text, when present, must be non-empty
type UpdateCommentRequest struct {
	Text *string `json:"text" binding:"omitempty,min=1"`
}
