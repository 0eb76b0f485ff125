package service

import (
	"context"
	"testing"

	"github.com/Adjelson/caixa-facil-Adjelson/internal/apperr"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/config"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/dto"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/model"
	"github.com/Adjelson/caixa-facil-Adjelson/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	u.ID = uuid.New()
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.Active {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) ListAll(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return apperr.ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if u, ok := r.users[id]; ok {
		u.Active = false
	}
	return nil
}

func (r *stubUserRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if u, ok := r.users[id]; ok {
		u.Active = true
	}
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func newAuthFixture(t *testing.T) (AuthService, *stubUserRepo) {
	t.Helper()
	repo := newStubUserRepo()
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
		JWTRefreshHours:    2,
	}
	return NewAuthService(repo, cfg), repo
}

func TestAuthLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "maria",
		Name:     "Maria Souza",
		Password: "caixa12345",
		Role:     model.RoleCashier,
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "maria",
		Password: "caixa12345",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, model.RoleCashier, resp.User.Role)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "maria",
		Name:     "Maria Souza",
		Password: "caixa12345",
		Role:     model.RoleCashier,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Username: "maria",
		Password: "wrong",
	})
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestAuthLoginUnknownUser(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "ghost",
		Password: "whatever",
	})
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestAuthLoginDeactivatedUser(t *testing.T) {
	svc, repo := newAuthFixture(t)

	created, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "joao",
		Name:     "Joao Lima",
		Password: "caixa12345",
		Role:     model.RoleCashier,
	})
	require.NoError(t, err)
	id, _ := uuid.Parse(created.ID)
	require.NoError(t, repo.SoftDelete(context.Background(), id))

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Username: "joao",
		Password: "caixa12345",
	})
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestAuthRefresh(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "maria",
		Name:     "Maria Souza",
		Password: "caixa12345",
		Role:     model.RoleCashier,
	})
	require.NoError(t, err)

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Username: "maria",
		Password: "caixa12345",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, login.User.ID, refreshed.User.ID)
}

func TestAuthRefreshGarbageToken(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestAuthUpdateUserPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	created, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Username: "maria",
		Name:     "Maria Souza",
		Password: "caixa12345",
		Role:     model.RoleCashier,
	})
	require.NoError(t, err)
	id, _ := uuid.Parse(created.ID)

	_, err = svc.UpdateUser(context.Background(), id, dto.UpdateUserRequest{Password: "newpass1234"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "caixa12345"})
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "newpass1234"})
	require.NoError(t, err)
}
