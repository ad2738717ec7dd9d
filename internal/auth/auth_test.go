package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/marks/internal/model"
)

func TestUserIDFromContext(t *testing.T) {
	_, err := UserID(context.Background())
	assert.Assert(t, errors.Is(err, model.ErrAuth))

	id, err := UserID(WithUserID(context.Background(), "u1"))
	assert.NilError(t, err)
	assert.Equal(t, id, "u1")
}

func TestTokensRoundTrip(t *testing.T) {
	tokens, err := NewTokens("secret", time.Hour)
	assert.NilError(t, err)

	signed, err := tokens.Issue("u1")
	assert.NilError(t, err)

	id, err := tokens.Verify(signed)
	assert.NilError(t, err)
	assert.Equal(t, id, "u1")
}

func TestTokensRejectForeignSecret(t *testing.T) {
	a, _ := NewTokens("secret-a", time.Hour)
	b, _ := NewTokens("secret-b", time.Hour)

	signed, err := a.Issue("u1")
	assert.NilError(t, err)

	_, err = b.Verify(signed)
	assert.Assert(t, errors.Is(err, model.ErrAuth))
}

func TestTokensExpire(t *testing.T) {
	tokens, _ := NewTokens("secret", time.Minute)
	issued := time.Now()
	tokens.now = func() time.Time { return issued }

	signed, err := tokens.Issue("u1")
	assert.NilError(t, err)

	tokens.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = tokens.Verify(signed)
	assert.Assert(t, errors.Is(err, model.ErrAuth))
}

func TestNewTokensRequiresSecret(t *testing.T) {
	_, err := NewTokens("", time.Hour)
	assert.ErrorContains(t, err, "secret")
}
