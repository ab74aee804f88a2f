package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "patrolfund/pkg/domain"
	dErrors "patrolfund/pkg/domain-errors"
)

func TestJWTService(t *testing.T) {
	service := NewJWTService("test-signing-key")
	caller := id.Principal("wallet-caller-0000000000001")

	t.Run("issued tokens validate back to the caller", func(t *testing.T) {
		token, err := service.IssueToken(caller, time.Hour)
		require.NoError(t, err)

		parsed, err := service.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, caller, parsed)
	})

	t.Run("expired tokens are rejected", func(t *testing.T) {
		token, err := service.IssueToken(caller, -time.Minute)
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong signing key is rejected", func(t *testing.T) {
		token, err := NewJWTService("other-key").IssueToken(caller, time.Hour)
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("garbage input is rejected", func(t *testing.T) {
		_, err := service.ValidateToken("not-a-token")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
