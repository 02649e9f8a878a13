package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_ViewOmitsSecrets(t *testing.T) {
	a := &Account{
		ID:                uuid.New(),
		Username:          "alice",
		Email:             "alice@example.com",
		PasswordHash:      "$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$a2V5",
		VerificationToken: "Ab3dE6gH",
		CreatedAt:         time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	b, err := json.Marshal(a.View())
	require.NoError(t, err)

	s := string(b)
	assert.Contains(t, s, `"username":"alice"`)
	assert.Contains(t, s, `"verified":false`)
	assert.NotContains(t, s, "argon2id")
	assert.NotContains(t, s, "Ab3dE6gH")
}
