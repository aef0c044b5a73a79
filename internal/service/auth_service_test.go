package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet-console/internal/core/domain"
	"wallet-console/internal/core/ports"
	"wallet-console/internal/core/ports/mocks"
	"wallet-console/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupAuthService(t *testing.T) (
	*AuthServiceImpl,
	*mocks.MockAccountRepository,
	*mocks.MockHashService,
	*mocks.MockTokenService,
) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAccountRepository(ctrl)
	hashSvc := mocks.NewMockHashService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)

	return NewAuthService(repo, hashSvc, tokenSvc), repo, hashSvc, tokenSvc
}

func TestAuthService_SignUp_Success(t *testing.T) {
	svc, repo, hashSvc, _ := setupAuthService(t)
	ctx := context.Background()

	repo.EXPECT().GetByEmail(ctx, "alice@example.com").Return(nil, nil)
	hashSvc.EXPECT().Hash("StrongP@ss123").Return("$argon2id$hashed", nil)
	repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, rec *ports.UserRecord) error {
		assert.Equal(t, "$argon2id$hashed", rec.PasswordHash)
		assert.False(t, rec.Account.IsAdmin)
		rec.Account.ID = 7
		return nil
	})

	acct, err := svc.SignUp(ctx, ports.SignUpRequest{
		Username: " alice ",
		Email:    "alice@example.com",
		Password: "StrongP@ss123",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), acct.ID)
	assert.Equal(t, "alice", acct.Username)
}

func TestAuthService_SignUp_DuplicateEmail(t *testing.T) {
	svc, repo, _, _ := setupAuthService(t)
	ctx := context.Background()

	repo.EXPECT().GetByEmail(ctx, "alice@example.com").Return(&ports.UserRecord{}, nil)

	_, err := svc.SignUp(ctx, ports.SignUpRequest{Username: "alice", Email: "alice@example.com", Password: "pw"})
	assert.Equal(t, apperror.CodeAccountExists, apperror.CodeOf(err))
}

func TestAuthService_SignUp_MissingFields(t *testing.T) {
	svc, _, _, _ := setupAuthService(t)

	_, err := svc.SignUp(context.Background(), ports.SignUpRequest{Username: "alice", Email: "  "})
	assert.True(t, apperror.IsRejected(err))
}

func TestAuthService_SignUp_RepositoryFailure(t *testing.T) {
	svc, repo, hashSvc, _ := setupAuthService(t)
	ctx := context.Background()

	repo.EXPECT().GetByEmail(ctx, gomock.Any()).Return(nil, nil)
	hashSvc.EXPECT().Hash(gomock.Any()).Return("h", nil)
	repo.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("disk full"))

	_, err := svc.SignUp(ctx, ports.SignUpRequest{Username: "a", Email: "a@b.c", Password: "pw"})
	assert.Equal(t, apperror.CodeInternal, apperror.CodeOf(err))
}

func TestAuthService_Login(t *testing.T) {
	stored := &ports.UserRecord{
		Account:      domain.Account{ID: 3, Username: "root", IsAdmin: true},
		PasswordHash: "$argon2id$stored",
	}

	tests := []struct {
		name     string
		setup    func(repo *mocks.MockAccountRepository, hashSvc *mocks.MockHashService, tokenSvc *mocks.MockTokenService)
		wantRole domain.Role
		wantCode string
	}{
		{
			name: "admin success",
			setup: func(repo *mocks.MockAccountRepository, hashSvc *mocks.MockHashService, tokenSvc *mocks.MockTokenService) {
				repo.EXPECT().GetByEmail(gomock.Any(), "root@example.com").Return(stored, nil)
				hashSvc.EXPECT().Verify("pw", "$argon2id$stored").Return(true, nil)
				tokenSvc.EXPECT().Generate(int64(3), domain.RoleAdmin).Return("jwt", time.Now().Add(time.Hour), nil)
			},
			wantRole: domain.RoleAdmin,
		},
		{
			name: "unknown email",
			setup: func(repo *mocks.MockAccountRepository, _ *mocks.MockHashService, _ *mocks.MockTokenService) {
				repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			wantCode: apperror.CodeInvalidCredentials,
		},
		{
			name: "wrong password",
			setup: func(repo *mocks.MockAccountRepository, hashSvc *mocks.MockHashService, _ *mocks.MockTokenService) {
				repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(stored, nil)
				hashSvc.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: apperror.CodeInvalidCredentials,
		},
		{
			name: "token failure",
			setup: func(repo *mocks.MockAccountRepository, hashSvc *mocks.MockHashService, tokenSvc *mocks.MockTokenService) {
				repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(stored, nil)
				hashSvc.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(true, nil)
				tokenSvc.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", time.Time{}, errors.New("no key"))
			},
			wantCode: apperror.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, hashSvc, tokenSvc := setupAuthService(t)
			tt.setup(repo, hashSvc, tokenSvc)

			token, role, err := svc.Login(context.Background(), "root@example.com", "pw")
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, apperror.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "jwt", token)
			assert.Equal(t, tt.wantRole, role)
		})
	}
}

func TestSeedAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthService(ctrl)
	ctx := context.Background()

	auth.EXPECT().SignUp(ctx, ports.SignUpRequest{Username: "admin", Email: "admin@example.com", Password: "pw", IsAdmin: true}).
		Return(&domain.Account{ID: 1}, nil)
	created, err := SeedAdmin(ctx, auth, "admin", "admin@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, created)

	auth.EXPECT().SignUp(ctx, gomock.Any()).Return(nil, apperror.ErrAccountExists())
	created, err = SeedAdmin(ctx, auth, "admin", "admin@example.com", "pw")
	require.NoError(t, err)
	assert.False(t, created)

	auth.EXPECT().SignUp(ctx, gomock.Any()).Return(nil, apperror.Validation("bad"))
	_, err = SeedAdmin(ctx, auth, "admin", "", "pw")
	assert.Error(t, err)
}
