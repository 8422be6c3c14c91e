package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestIsValidPostStatus(t *testing.T) {
	for _, s := range ValidPostStatuses() {
		assert.True(t, IsValidPostStatus(s))
	}
	assert.False(t, IsValidPostStatus("pending"))
	assert.False(t, IsValidPostStatus("ARCHIVED"))
}

func TestPost_ApplyStatus_RejectedKeepsReason(t *testing.T) {
	p := Post{Status: PostStatusPending}
	p.ApplyStatus(PostStatusRejected, strPtr("off topic"))

	assert.Equal(t, PostStatusRejected, p.Status)
	require.NotNil(t, p.RejectionReason)
	assert.Equal(t, "off topic", *p.RejectionReason)
}

func TestPost_ApplyStatus_OtherStatusClearsReason(t *testing.T) {
	p := Post{Status: PostStatusRejected, RejectionReason: strPtr("spam")}
	p.ApplyStatus(PostStatusApproved, strPtr("ignored"))

	assert.Equal(t, PostStatusApproved, p.Status)
	assert.Nil(t, p.RejectionReason)
}

func TestPost_ApplyStatus_RejectedWithoutReason(t *testing.T) {
	p := Post{}
	p.ApplyStatus(PostStatusRejected, nil)
	assert.Nil(t, p.RejectionReason)

	p.ApplyStatus(PostStatusRejected, strPtr(""))
	assert.Nil(t, p.RejectionReason)
}

func TestPost_IsOwnedBy(t *testing.T) {
	p := Post{UserID: "user-1"}
	assert.True(t, p.IsOwnedBy("user-1"))
	assert.False(t, p.IsOwnedBy("user-2"))
}
