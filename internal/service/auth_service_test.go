package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadreport/internal/model"
)

func TestLoginWithDefaultCredentials(t *testing.T) {
	svc := NewAuthService()

	resp, err := svc.Login("admin", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Contains(t, resp.OperatorID, "op_")

	claims, err := svc.ValidateOperatorToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.OperatorID, claims.OperatorID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewAuthService()

	_, err := svc.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := NewAuthService()

	token, err := svc.GenerateSessionToken("sess-42", model.ModeFeedback)
	require.NoError(t, err)

	claims, err := svc.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-42", claims.SessionID)
	assert.Equal(t, model.ModeFeedback, claims.Mode)
}

func TestValidateRejectsGarbageTokens(t *testing.T) {
	svc := NewAuthService()

	_, err := svc.ValidateSessionToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateOperatorToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
