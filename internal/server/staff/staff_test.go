package staff

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/cms/internal/common"
	"github.com/dmitrijs2005/cms/internal/server/repositories/users"
)

func TestCreate(t *testing.T) {
	repo := users.NewMemoryRepository()

	u, err := Create(context.Background(), repo, Input{Email: " Admin@Example.COM ", Username: " admin ", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "Admin@example.com", u.Email)
	assert.Equal(t, "admin", u.Username)
	assert.True(t, u.IsStaff)
	assert.True(t, u.IsVerified)
	assert.NoError(t, bcrypt.CompareHashAndPassword(u.PasswordHash, []byte("pw")))

	_, err = Create(context.Background(), repo, Input{Email: "Admin@example.com", Username: "again", Password: "pw"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreate_Rejects(t *testing.T) {
	repo := users.NewMemoryRepository()

	_, err := Create(context.Background(), repo, Input{Email: "nope", Username: "a", Password: "pw"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = Create(context.Background(), repo, Input{Email: "a@example.com", Username: " ", Password: "pw"})
	assert.ErrorIs(t, err, ErrEmptyField)

	_, err = Create(context.Background(), repo, Input{Email: "a@example.com", Username: "a"})
	assert.ErrorIs(t, err, ErrEmptyField)
}

func TestPrompt(t *testing.T) {
	var out bytes.Buffer
	got, err := Prompt(bufio.NewReader(strings.NewReader("admin@example.com\n")), "Email", &out)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", got)
	assert.Equal(t, "Email: ", out.String())

	got, err = Prompt(bufio.NewReader(strings.NewReader("last")), "Username", &out)
	require.NoError(t, err)
	assert.Equal(t, "last", got)
}

func stubPasswords(t *testing.T, entries ...string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	i := 0
	readPassword = func(int) ([]byte, error) {
		if i >= len(entries) {
			return nil, errors.New("no more input")
		}
		i++
		return []byte(entries[i-1]), nil
	}
}

func TestPromptPassword(t *testing.T) {
	var out bytes.Buffer

	stubPasswords(t, "s3cret", "s3cret")
	pw, err := PromptPassword(&out)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)

	stubPasswords(t, "s3cret", "other")
	_, err = PromptPassword(&out)
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	stubPasswords(t)
	_, err = PromptPassword(&out)
	assert.Error(t, err)
}
