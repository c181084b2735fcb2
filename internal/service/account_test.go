package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aiContentStudio/internal/apperr"
	"aiContentStudio/internal/auth"
	"aiContentStudio/internal/testutil"
	"aiContentStudio/models"
)

func newAccountService(t *testing.T) *AccountService {
	t.Helper()
	s := testutil.OpenTestStore(t)
	return NewAccountService(s, auth.NewIssuer(testutil.TestSecret, time.Hour), DefaultStartingCredits)
}

func TestRegister_FirstUserIsAdmin(t *testing.T) {
	svc := newAccountService(t)
	ctx := context.Background()

	a, err := svc.Register(ctx, RegisterInput{Email: " Alice@Example.com ", Password: "secret1", Name: "Alice"})
	require.NoError(t, err)
	assert.NotEmpty(t, a.Token)
	assert.Equal(t, models.RoleAdmin, a.User.Role)
	assert.Equal(t, "alice@example.com", a.User.Email)
	assert.EqualValues(t, DefaultStartingCredits, a.User.Credits)

	b, err := svc.Register(ctx, RegisterInput{Email: "bob@example.com", Password: "secret2", Name: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, b.User.Role)

	id, err := auth.NewIssuer(testutil.TestSecret, time.Hour).Verify(b.Token)
	require.NoError(t, err)
	assert.Equal(t, b.User.ID, id)
}

func TestRegister_Validation(t *testing.T) {
	svc := newAccountService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	cases := []struct {
		name string
		in   RegisterInput
		kind apperr.Kind
		msg  string
	}{
		{"missing name", RegisterInput{Email: "x@example.com", Password: "secret1"}, apperr.KindValidation, "All fields are required"},
		{"short password", RegisterInput{Email: "x@example.com", Password: "12345", Name: "X"}, apperr.KindValidation, "Password must be at least 6 characters"},
		{"duplicate", RegisterInput{Email: "A@example.com", Password: "secret1", Name: "A2"}, apperr.KindConflict, "Email already registered"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.in)
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
			assert.Equal(t, tc.msg, apperr.PublicMessage(err))
		})
	}
}

func TestLogin(t *testing.T) {
	svc := newAccountService(t)
	ctx := context.Background()
	reg, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, "A@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)

	_, err = svc.Login(ctx, "a@example.com", "wrong-pw")
	assert.Equal(t, "Invalid credentials", apperr.PublicMessage(err))
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))

	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.Equal(t, "Invalid credentials", apperr.PublicMessage(err))

	_, err = svc.Login(ctx, "", "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestUpdateProfile(t *testing.T) {
	svc := newAccountService(t)
	ctx := context.Background()
	reg, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)
	id := reg.User.ID

	u, err := svc.UpdateProfile(ctx, id, ProfileInput{Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", u.Name)

	for _, in := range []ProfileInput{
		{Name: "Half", CurrentPassword: "secret1"},
		{Name: "Half", NewPassword: "another1"},
	} {
		_, err = svc.UpdateProfile(ctx, id, in)
		assert.Equal(t, "Current and new password are both required to change password", apperr.PublicMessage(err))
	}
	me, err := svc.UpdateProfile(ctx, id, ProfileInput{})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", me.Name, "a rejected request must not apply the name change")

	_, err = svc.UpdateProfile(ctx, id, ProfileInput{CurrentPassword: "nope", NewPassword: "another1"})
	assert.Equal(t, "Current password is incorrect", apperr.PublicMessage(err))

	_, err = svc.UpdateProfile(ctx, id, ProfileInput{CurrentPassword: "secret1", NewPassword: "123"})
	assert.Equal(t, "New password must be at least 6 characters", apperr.PublicMessage(err))

	_, err = svc.UpdateProfile(ctx, id, ProfileInput{CurrentPassword: "secret1", NewPassword: "another1"})
	require.NoError(t, err)
	_, err = svc.Login(ctx, "a@example.com", "secret1")
	assert.Error(t, err)
	_, err = svc.Login(ctx, "a@example.com", "another1")
	assert.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, 9999, ProfileInput{Name: "ghost"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
