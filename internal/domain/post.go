package domain

import (
	"time"
)

// Post moderation states.
const (
	PostStatusPending  = "PENDING"
	PostStatusApproved = "APPROVED"
	PostStatusRejected = "REJECTED"
)

// MaxPostTitleLength bounds Post.Title.
const MaxPostTitleLength = 200

// ValidPostStatuses returns every moderation state.
func ValidPostStatuses() []string {
	return []string{PostStatusPending, PostStatusApproved, PostStatusRejected}
}

// IsValidPostStatus checks whether status is a known moderation state.
func IsValidPostStatus(status string) bool {
	for _, s := range ValidPostStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// Post is a user submission awaiting or past moderation.
type Post struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Content         string       `json:"content"`
	Status          string       `json:"status"`
	RejectionReason *string      `json:"rejection_reason"`
	UserID          string       `json:"user_id"`
	Author          *UserSummary `json:"user,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// IsOwnedBy reports whether userID authored the post.
func (p *Post) IsOwnedBy(userID string) bool {
	return p.UserID == userID
}

// ApplyStatus moves the post to status. The rejection reason survives only
// when the post is rejected; any other status clears it.
func (p *Post) ApplyStatus(status string, reason *string) {
	p.Status = status
	if status == PostStatusRejected && reason != nil && *reason != "" {
		r := *reason
		p.RejectionReason = &r
		return
	}
	p.RejectionReason = nil
}
