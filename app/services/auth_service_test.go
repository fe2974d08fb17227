package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialfeed/app/apperror"
	"socialfeed/app/models"
	"socialfeed/app/validation"
)

func signup(t *testing.T, env *testEnv, email, name string) string {
	t.Helper()
	id, err := env.auth.Signup(context.Background(), models.SignupInput{Email: email, Password: "secret", Name: name})
	require.NoError(t, err)
	return id
}

func fieldErrors(t *testing.T, err error) []validation.FieldError {
	t.Helper()
	require.True(t, apperror.Is(err, apperror.ValidationError), "expected validation error, got %v", err)
	fields, ok := apperror.From(err).Data.([]validation.FieldError)
	require.True(t, ok)
	return fields
}

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	t.Run("success", func(t *testing.T) {
		id, err := env.auth.Signup(ctx, models.SignupInput{
			Email:    "  Alice@Example.com ",
			Password: " secret ",
			Name:     " Alice Liddell ",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		user, err := env.users.GetByID(id)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "Alice Liddell", user.Name)
		assert.Equal(t, models.DefaultStatus, user.Status)
		assert.NotEqual(t, "secret", user.Password)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := env.auth.Signup(ctx, models.SignupInput{Email: "alice@example.com", Password: "secret", Name: "Another"})
		fields := fieldErrors(t, err)
		require.Len(t, fields, 1)
		assert.Equal(t, "email", fields[0].Path)
		assert.Equal(t, "Email already exist", fields[0].Msg)
		assert.Equal(t, 422, apperror.From(err).StatusCode())
		assert.Equal(t, validation.FailedMessage, apperror.From(err).Message)
	})

	t.Run("invalid fields", func(t *testing.T) {
		_, err := env.auth.Signup(ctx, models.SignupInput{Email: "not-an-email", Password: "abc", Name: "  Bob "})
		fields := fieldErrors(t, err)

		paths := []string{}
		for _, f := range fields {
			paths = append(paths, f.Path)
			assert.Equal(t, "field", f.Type)
			assert.Equal(t, "body", f.Location)
		}
		assert.ElementsMatch(t, []string{"email", "password", "name"}, paths)
	})
}

func TestAuthService_ConcurrentSignup(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	const workers = 5
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.auth.Signup(ctx, models.SignupInput{Email: "race@example.com", Password: "secret", Name: "Racer"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperror.Is(err, apperror.ValidationError))
	}
	assert.Equal(t, 1, succeeded)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	id := signup(t, env, "bob@example.com", "Bobby Tables")

	t.Run("success", func(t *testing.T) {
		res, err := env.auth.Login(ctx, models.LoginInput{Email: " BOB@example.com", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, id, res.UserID)

		claims, err := env.tokens.Parse(res.Token)
		require.NoError(t, err)
		assert.Equal(t, id, claims.UserID)
		assert.Equal(t, "bob@example.com", claims.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.auth.Login(ctx, models.LoginInput{Email: "bob@example.com", Password: "wrong"})
		require.True(t, apperror.Is(err, apperror.UnauthenticatedError))
		assert.Equal(t, "Password incorrect", apperror.From(err).Message)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := env.auth.Login(ctx, models.LoginInput{Email: "nobody@example.com", Password: "secret"})
		assert.True(t, apperror.Is(err, apperror.NotFoundError))
	})
}

func TestAuthService_VerifyToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	id := signup(t, env, "carol@example.com", "Carol Danvers")

	res, err := env.auth.Login(ctx, models.LoginInput{Email: "carol@example.com", Password: "secret"})
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		got, err := env.auth.VerifyToken("Bearer " + res.Token)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"no scheme", res.Token},
		{"wrong scheme", "Basic " + res.Token},
		{"empty token", "Bearer "},
		{"garbage", "Bearer not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.VerifyToken(tt.header)
			require.True(t, apperror.Is(err, apperror.UnauthenticatedError), "got %v", err)
			assert.Equal(t, 401, apperror.From(err).StatusCode())
		})
	}

	t.Run("expired", func(t *testing.T) {
		issued := time.Now().Add(-2 * time.Hour)
		old, err := env.tokens.WithClock(func() time.Time { return issued }).Generate(id, "carol@example.com")
		require.NoError(t, err)

		_, err = env.auth.VerifyToken("Bearer " + old)
		assert.True(t, apperror.Is(err, apperror.UnauthenticatedError))
	})
}

func TestAuthService_Status(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	id := signup(t, env, "dave@example.com", "Dave Lister")

	status, err := env.auth.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultStatus, status)

	status, err = env.auth.SetStatus(ctx, id, "Red Dwarf")
	require.NoError(t, err)
	assert.Equal(t, "Red Dwarf", status)

	status, err = env.auth.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Red Dwarf", status)

	_, err = env.auth.GetStatus(ctx, "missing")
	assert.True(t, apperror.Is(err, apperror.NotFoundError))

	_, err = env.auth.SetStatus(ctx, "missing", "x")
	assert.True(t, apperror.Is(err, apperror.NotFoundError))
}

func TestAuthService_SetStatusKeepsPosts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	id := signup(t, env, "kryten@example.com", "Kryten")
	post := createPost(t, env, id, "Still mine")

	_, err := env.auth.SetStatus(ctx, id, "Cleaning")
	require.NoError(t, err)

	user, err := env.users.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Cleaning", user.Status)
	assert.Equal(t, []string{post.ID}, user.Posts)
}
