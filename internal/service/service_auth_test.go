// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/MKhiriev/go-account-keeper/internal/logger"
	"github.com/MKhiriev/go-account-keeper/internal/mock"
	"github.com/MKhiriev/go-account-keeper/internal/store"
	"github.com/MKhiriev/go-account-keeper/internal/utils"
	"github.com/MKhiriev/go-account-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// stubTokenService is a TokenService with overridable behaviour.
type stubTokenService struct {
	issueFn  func(ctx context.Context, userID int64) (models.TokenPair, error)
	revokeFn func(ctx context.Context, userID int64) error
}

func (s *stubTokenService) Issue(ctx context.Context, userID int64) (models.TokenPair, error) {
	if s.issueFn != nil {
		return s.issueFn(ctx, userID)
	}
	return models.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (s *stubTokenService) Rotate(context.Context, string) (models.TokenPair, error) {
	return models.TokenPair{}, nil
}

func (s *stubTokenService) Revoke(ctx context.Context, userID int64) error {
	if s.revokeFn != nil {
		return s.revokeFn(ctx, userID)
	}
	return nil
}

func (s *stubTokenService) ParseAccessToken(context.Context, string) (models.Token, error) {
	return models.Token{}, nil
}

func newTestUserSvc(t *testing.T, ctrl *gomock.Controller) (*userService, *mock.MockUserRepository, *stubTokenService) {
	t.Helper()
	repo := mock.NewMockUserRepository(ctrl)
	tokens := &stubTokenService{}
	svc := NewUserService(&store.Storages{UserRepository: repo}, tokens, testAppConfig, logger.Nop()).(*userService)
	return svc, repo, tokens
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := utils.HashPassword(password, testAppConfig.PasswordHashCost)
	require.NoError(t, err)
	return hash
}

// ── Register ────────────────────────────────────────────────────────────────

func TestUserService_Register_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repo, _ := newTestUserSvc(t, ctrl)
	ctx := context.Background()

	repo.EXPECT().CreateUser(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, u models.User) (models.User, error) {
			assert.Equal(t, "alice", u.Username)
			assert.Equal(t, "alice@x.com", u.Email)
			assert.Equal(t, "Alice Liddell", u.FullName)
			assert.NoError(t, utils.ComparePassword(u.PasswordHash, "wonderland"))
			u.UserID = 1
			return u, nil
		},
	)

	user, err := svc.Register(ctx, models.RegisterRequest{
		FullName: "  <b>Alice</b> Liddell ",
		Email:    " Alice@X.com",
		Username: "ALICE ",
		Password: "wonderland",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), user.UserID)
}

func TestUserService_Register_BlankFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _ := newTestUserSvc(t, ctrl)

	tests := []models.RegisterRequest{
		{FullName: "  ", Email: "a@x.com", Username: "alice", Password: "pw"},
		{FullName: "<script></script>", Email: "a@x.com", Username: "alice", Password: "pw"},
		{FullName: "Alice", Email: " ", Username: "alice", Password: "pw"},
		{FullName: "Alice", Email: "a@x.com", Username: "", Password: "pw"},
		{FullName: "Alice", Email: "a@x.com", Username: "alice", Password: "   "},
	}
	for _, req := range tests {
		_, err := svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, ErrAllFieldsRequired)
	}
}

func TestUserService_Sanitize(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _ := newTestUserSvc(t, ctrl)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: " Alice Liddell ", want: "Alice Liddell"},
		{name: "tags", input: "<b>Alice</b> Liddell", want: "Alice Liddell"},
		{name: "apostrophe and ampersand", input: "O'Brien & Sons", want: "O'Brien & Sons"},
		{name: "encoded tags", input: "&lt;b&gt;Alice&lt;/b&gt; Liddell", want: "Alice Liddell"},
		{name: "encoded script", input: "&lt;script&gt;alert(1)&lt;/script&gt;", want: ""},
		{name: "encoded img", input: "&lt;img src=x onerror=alert(1)&gt;", want: ""},
		{name: "double encoded", input: "&amp;lt;script&amp;gt;", want: "script"},
		{name: "stray bracket", input: "a < b", want: "a  b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.sanitize(tt.input)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "<")
			assert.NotContains(t, got, ">")
		})
	}
}

func TestUserService_Register_Duplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repo, _ := newTestUserSvc(t, ctrl)
	repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(models.User{}, store.ErrUserAlreadyExists)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		FullName: "Alice", Email: "alice@x.com", Username: "alice", Password: "wonderland",
	})

	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "user with email or username already exists", MessageOf(err))
}

// ── Authenticate / Login ────────────────────────────────────────────────────

func TestUserService_Authenticate_ByUsernameOrEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repo, _ := newTestUserSvc(t, ctrl)
	stored := models.User{UserID: 3, Username: "alice", PasswordHash: mustHash(t, "wonderland")}

	repo.EXPECT().FindUserByIdentifier(gomock.Any(), "alice", "").Return(stored, nil)
	repo.EXPECT().FindUserByIdentifier(gomock.Any(), "", "alice@x.com").Return(stored, nil)

	user, err := svc.Authenticate(context.Background(), models.LoginRequest{Username: " Alice", Password: "wonderland"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), user.UserID)

	user, err = svc.Authenticate(context.Background(), models.LoginRequest{Email: "ALICE@x.com", Password: "wonderland"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), user.UserID)
}

func TestUserService_Authenticate_NoIdentifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _ := newTestUserSvc(t, ctrl)

	_, err := svc.Authenticate(context.Background(), models.LoginRequest{Password: "pw"})

	assert.ErrorIs(t, err, ErrIdentifierRequired)
	assert.Equal(t, KindBadRequest, KindOf(err))
}

func TestUserService_Authenticate_BothIdentifiers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no repository call is expected
	svc, _, _ := newTestUserSvc(t, ctrl)

	_, err := svc.Authenticate(context.Background(), models.LoginRequest{
		Username: "alice", Email: "bob@x.com", Password: "wonderland",
	})

	assert.ErrorIs(t, err, ErrIdentifierAmbiguous)
	assert.Equal(t, KindBadRequest, KindOf(err))
}

func TestUserService_Authenticate_DoesNotRevealUnknownUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repo, _ := newTestUserSvc(t, ctrl)
	stored := models.User{UserID: 3, Username: "alice", PasswordHash: mustHash(t, "wonderland")}

	repo.EXPECT().FindUserByIdentifier(gomock.Any(), "alice", "").Return(stored, nil)
	repo.EXPECT().FindUserByIdentifier(gomock.Any(), "mallory", "").Return(models.User{}, store.ErrUserNotFound)

	_, wrongPassword := svc.Authenticate(context.Background(), models.LoginRequest{Username: "alice", Password: "guess"})
	_, unknownUser := svc.Authenticate(context.Background(), models.LoginRequest{Username: "mallory", Password: "guess"})

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, KindUnauthorized, KindOf(wrongPassword))
	assert.Equal(t, MessageOf(wrongPassword), MessageOf(unknownUser))
}

func TestUserService_Authenticate_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repo, _ := newTestUserSvc(t, ctrl)
	repo.EXPECT().FindUserByIdentifier(gomock.Any(), "alice", "").Return(models.User{}, errors.New("db down"))

	_, err := svc.Authenticate(context.Background(), models.LoginRequest{Username: "alice", Password: "pw"})
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestUserService_Login_IssuesTokens(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repo, tokens := newTestUserSvc(t, ctrl)
	stored := models.User{UserID: 3, Username: "alice", PasswordHash: mustHash(t, "wonderland")}
	repo.EXPECT().FindUserByIdentifier(gomock.Any(), "alice", "").Return(stored, nil)

	tokens.issueFn = func(_ context.Context, userID int64) (models.TokenPair, error) {
		assert.Equal(t, int64(3), userID)
		return models.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
	}

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "wonderland"})

	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.User.UserID)
	assert.Equal(t, "a", resp.AccessToken)
	assert.Equal(t, "r", resp.RefreshToken)
}

func TestUserService_Login_IssueError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repo, tokens := newTestUserSvc(t, ctrl)
	repo.EXPECT().FindUserByIdentifier(gomock.Any(), "alice", "").
		Return(models.User{UserID: 3, PasswordHash: mustHash(t, "wonderland")}, nil)
	tokens.issueFn = func(context.Context, int64) (models.TokenPair, error) {
		return models.TokenPair{}, ErrTokenCreationFailed
	}

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "wonderland"})
	assert.ErrorIs(t, err, ErrTokenCreationFailed)
}

// ── Logout / CurrentUser ────────────────────────────────────────────────────

func TestUserService_Logout_RevokesToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, tokens := newTestUserSvc(t, ctrl)
	var revoked int64
	tokens.revokeFn = func(_ context.Context, userID int64) error {
		revoked = userID
		return nil
	}

	require.NoError(t, svc.Logout(context.Background(), 8))
	assert.Equal(t, int64(8), revoked)
}

func TestUserService_CurrentUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repo, _ := newTestUserSvc(t, ctrl)
	repo.EXPECT().FindUserByID(gomock.Any(), int64(1)).Return(models.User{UserID: 1, Username: "alice"}, nil)
	repo.EXPECT().FindUserByID(gomock.Any(), int64(2)).Return(models.User{}, store.ErrUserNotFound)

	user, err := svc.CurrentUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.CurrentUser(context.Background(), 2)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))
}

// ── UpdateAccount ───────────────────────────────────────────────────────────

func TestUserService_UpdateAccount_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repo, _ := newTestUserSvc(t, ctrl)
	repo.EXPECT().UpdateUser(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u models.UserUpdate) (models.User, error) {
			assert.Equal(t, int64(1), u.UserID)
			require.NotNil(t, u.FullName)
			require.NotNil(t, u.Email)
			assert.Equal(t, "Alice L.", *u.FullName)
			assert.Equal(t, "new@x.com", *u.Email)
			assert.Nil(t, u.PasswordHash)
			assert.False(t, u.ClearRefreshToken)
			return models.User{UserID: 1, FullName: *u.FullName, Email: *u.Email}, nil
		},
	)

	user, err := svc.UpdateAccount(context.Background(), models.UpdateAccountRequest{
		UserID: 1, FullName: "<i>Alice L.</i>", Email: "NEW@x.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "new@x.com", user.Email)
}

func TestUserService_UpdateAccount_EmailTaken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repo, _ := newTestUserSvc(t, ctrl)
	repo.EXPECT().UpdateUser(gomock.Any(), gomock.Any()).Return(models.User{}, store.ErrUserAlreadyExists)

	_, err := svc.UpdateAccount(context.Background(), models.UpdateAccountRequest{UserID: 1, FullName: "A", Email: "b@x.com"})

	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestUserService_UpdateAccount_Blank(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, _ := newTestUserSvc(t, ctrl)

	_, err := svc.UpdateAccount(context.Background(), models.UpdateAccountRequest{UserID: 1, FullName: " ", Email: "b@x.com"})
	assert.ErrorIs(t, err, ErrAllFieldsRequired)
}

// ── ChangePassword ──────────────────────────────────────────────────────────

func TestUserService_ChangePassword_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repo, _ := newTestUserSvc(t, ctrl)
	ctx := context.Background()

	gomock.InOrder(
		repo.EXPECT().FindUserByID(ctx, int64(1)).Return(models.User{UserID: 1, PasswordHash: mustHash(t, "old-password")}, nil),
		repo.EXPECT().UpdateUser(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, u models.UserUpdate) (models.User, error) {
				require.NotNil(t, u.PasswordHash)
				assert.NoError(t, utils.ComparePassword(*u.PasswordHash, "new-password"))
				assert.True(t, u.ClearRefreshToken, "changing the password ends the session")
				assert.Nil(t, u.Email)
				return models.User{UserID: 1}, nil
			},
		),
	)

	err := svc.ChangePassword(ctx, models.ChangePasswordRequest{UserID: 1, OldPassword: "old-password", NewPassword: "new-password"})
	require.NoError(t, err)
}

func TestUserService_ChangePassword_WrongOldPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repo, _ := newTestUserSvc(t, ctrl)
	repo.EXPECT().FindUserByID(gomock.Any(), int64(1)).Return(models.User{UserID: 1, PasswordHash: mustHash(t, "old-password")}, nil)

	err := svc.ChangePassword(context.Background(), models.ChangePasswordRequest{UserID: 1, OldPassword: "nope", NewPassword: "new-password"})

	assert.ErrorIs(t, err, ErrInvalidOldPassword)
	assert.Equal(t, KindBadRequest, KindOf(err))
}

func TestUserService_ChangePassword_UserGone(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, repo, _ := newTestUserSvc(t, ctrl)
	repo.EXPECT().FindUserByID(gomock.Any(), int64(1)).Return(models.User{}, store.ErrUserNotFound)

	err := svc.ChangePassword(context.Background(), models.ChangePasswordRequest{UserID: 1, OldPassword: "a", NewPassword: "b"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangePassword_EndsSession(t *testing.T) {
	services, _, _ := newMemoryServices()
	ctx := context.Background()

	resp, err := registerAndLogin(t, services, "erin")
	require.NoError(t, err)

	err = services.UserService.ChangePassword(ctx, models.ChangePasswordRequest{
		UserID: resp.User.UserID, OldPassword: "password-erin", NewPassword: "brand-new-password",
	})
	require.NoError(t, err)

	_, err = services.TokenService.Rotate(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenReused)

	_, err = services.UserService.Login(ctx, models.LoginRequest{Username: "erin", Password: "password-erin"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = services.UserService.Login(ctx, models.LoginRequest{Email: "erin@x.com", Password: "brand-new-password"})
	assert.NoError(t, err)
}

// registerAndLogin creates user name with password "password-"+name.
func registerAndLogin(t *testing.T, services *Services, name string) (models.LoginResponse, error) {
	t.Helper()
	ctx := context.Background()

	_, err := services.UserService.Register(ctx, models.RegisterRequest{
		FullName: name,
		Email:    name + "@x.com",
		Username: name,
		Password: "password-" + name,
	})
	require.NoError(t, err)

	return services.UserService.Login(ctx, models.LoginRequest{Username: name, Password: "password-" + name})
}
