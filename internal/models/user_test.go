package models_test

import (
	"testing"
	"time"

	"motomarket/backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// TestUserBeforeCreate_GeneratesUUID verifies that the BeforeCreate hook generates a valid UUID.
func TestUserBeforeCreate_GeneratesUUID(t *testing.T) {
	// Arrange
	user := &models.User{
		Email:       "seller@example.com",
		DisplayName: "Test Seller",
	}

	// Ensure ID is empty before hook
	assert.Empty(t, user.ID, "User ID should be empty before BeforeCreate")

	// Act - Call the hook directly (GORM would call this automatically)
	err := user.BeforeCreate(nil) // nil *gorm.DB is acceptable for this hook

	// Assert
	assert.NoError(t, err, "BeforeCreate should not return an error")
	assert.NotEmpty(t, user.ID, "User ID must be populated after BeforeCreate")

	// Verify it's a valid UUID
	parsedUUID, parseErr := uuid.Parse(user.ID)
	assert.NoError(t, parseErr, "User ID must be a valid UUID string")
	assert.NotEqual(t, uuid.Nil, parsedUUID, "Generated UUID should not be nil UUID")
}

// TestUserBeforeCreate_PreservesExistingID verifies that the hook doesn't overwrite an existing ID.
func TestUserBeforeCreate_PreservesExistingID(t *testing.T) {
	existingID := uuid.New().String()
	user := &models.User{
		ID:    existingID,
		Email: "other@example.com",
	}

	err := user.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.Equal(t, existingID, user.ID, "BeforeCreate should preserve existing ID")
}

func TestUserSuspended(t *testing.T) {
	user := &models.User{}
	assert.False(t, user.Suspended(), "user with no suspension must not be suspended")

	past := time.Now().Add(-time.Hour)
	user.SuspendedUntil = &past
	assert.False(t, user.Suspended(), "expired suspension must not count")

	future := time.Now().Add(time.Hour)
	user.SuspendedUntil = &future
	assert.True(t, user.Suspended())
}
