package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"woodlinks-backend/internal/logger"
	"woodlinks-backend/internal/mocks"
	"woodlinks-backend/internal/models"
	"woodlinks-backend/internal/services"
	"woodlinks-backend/internal/test/testutil"
)

func TestAuthService_SignInSyncsProfile(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthenticator(ctrl)
	store := testutil.NewMemoryStore()
	svc := services.NewAuthService(auth, store, logger.NewTestLogger(t))

	userID := uuid.New()
	auth.EXPECT().SignIn("taro@example.com", "secret123").Return(&models.AuthSession{
		UserID: userID, Email: "taro@example.com", AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 3600,
	}, nil)

	session, err := svc.SignIn(ctx, "  Taro@Example.com ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "access", session.AccessToken)

	profile, err := store.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "taro@example.com", profile.Email.String)
}

func TestAuthService_SignInFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthenticator(ctrl)
	svc := services.NewAuthService(auth, testutil.NewMemoryStore(), logger.NewTestLogger(t))

	denied := errors.New("invalid login credentials")
	auth.EXPECT().SignIn(gomock.Any(), gomock.Any()).Return(nil, denied)

	_, err := svc.SignIn(context.Background(), "a@b.c", "wrong")
	assert.ErrorIs(t, err, denied)
}

func TestAuthService_SignUpWithPendingConfirmation(t *testing.T) {
	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthenticator(ctrl)
	store := testutil.NewMemoryStore()
	svc := services.NewAuthService(auth, store, logger.NewTestLogger(t))

	// Email confirmation enabled: no user id yet, so no profile row.
	auth.EXPECT().SignUp("new@example.com", "secret123").Return(&models.AuthSession{Email: "new@example.com"}, nil)

	_, err := svc.SignUp(context.Background(), "new@example.com", "secret123")
	require.NoError(t, err)
	assert.Empty(t, store.Profiles)
}

func TestAuthService_Profile(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := testutil.NewMemoryStore()
	svc := services.NewAuthService(mocks.NewMockAuthenticator(ctrl), store, logger.NewTestLogger(t))
	caller := services.Caller{UserID: uuid.New(), Email: "taro@example.com"}

	profile, err := svc.GetProfile(ctx, caller)
	require.NoError(t, err)
	assert.Equal(t, caller.UserID, profile.ID)
	assert.False(t, profile.Organization.Valid)

	org := "Yamada Woodworks"
	_, err = svc.UpdateProfile(ctx, caller, nil, &org)
	require.NoError(t, err)

	name := "Taro"
	updated, err := svc.UpdateProfile(ctx, caller, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "Taro", updated.DisplayName.String)
	assert.Equal(t, org, updated.Organization.String)

	_, err = svc.GetProfile(ctx, services.Caller{})
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestAuthService_RefreshAndMagicLink(t *testing.T) {
	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthenticator(ctrl)
	svc := services.NewAuthService(auth, testutil.NewMemoryStore(), logger.NewTestLogger(t))

	auth.EXPECT().Refresh("refresh").Return(&models.AuthSession{AccessToken: "new"}, nil)
	auth.EXPECT().SendMagicLink("taro@example.com").Return(nil)

	session, err := svc.Refresh("refresh")
	require.NoError(t, err)
	assert.Equal(t, "new", session.AccessToken)
	assert.NoError(t, svc.SendMagicLink("TARO@example.com"))
}
