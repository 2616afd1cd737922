// internal/auth/session_test.go
package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	Init()

	playerID := uuid.New()
	token, err := CreateToken(playerID, "AB12")
	require.NoError(t, err)

	gotPlayer, gotRoom, err := VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, playerID, gotPlayer)
	assert.Equal(t, "AB12", gotRoom)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	Init()

	_, _, err := VerifyToken("not-a-token")
	assert.Error(t, err)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	Init()
	token, err := CreateToken(uuid.New(), "AB12")
	require.NoError(t, err)

	// Rotate the key pair; previously-minted tokens must die with it.
	Init()
	_, _, err = VerifyToken(token)
	assert.Error(t, err)
}
