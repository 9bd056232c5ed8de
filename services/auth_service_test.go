package services

import (
	"context"
	"testing"

	"github.com/Dosada05/team-manager/models"
	"github.com/Dosada05/team-manager/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[string]*models.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if _, ok := r.users[user.Email]; ok {
		return repositories.ErrUserEmailConflict
	}
	user.ID = len(r.users) + 1
	cp := *user
	r.users[user.Email] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*models.User{}}
	svc := NewAuthService(repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{FirstName: "Anna", Email: " Coach@Club.org ", Password: "secret-pass", Role: models.RoleCoach})
	require.NoError(t, err)
	assert.Equal(t, "coach@club.org", user.Email)
	assert.Empty(t, user.PasswordHash)
	assert.NotEqual(t, "secret-pass", repo.users["coach@club.org"].PasswordHash)

	logged, err := svc.Login(ctx, LoginInput{Email: "coach@club.org", Password: "secret-pass"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCoach, logged.Role)
	assert.Empty(t, logged.PasswordHash)

	_, err = svc.Login(ctx, LoginInput{Email: "coach@club.org", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@club.org", Password: "secret-pass"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = svc.Register(ctx, RegisterInput{Email: "coach@club.org", Password: "another-pass"})
	assert.ErrorIs(t, err, ErrAuthEmailTaken)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := NewAuthService(&fakeUserRepo{users: map[string]*models.User{}})

	user, err := svc.Register(context.Background(), RegisterInput{Email: "viewer@club.org", Password: "long-enough"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, user.Role)

	for _, in := range []RegisterInput{
		{Email: "not-an-email", Password: "long-enough"},
		{Email: "a@club.org", Password: "short"},
		{Email: "b@club.org", Password: "long-enough", Role: "owner"},
	} {
		_, err := svc.Register(context.Background(), in)
		assert.ErrorIs(t, err, ErrValidationFailed, "input %+v", in)
	}
}
