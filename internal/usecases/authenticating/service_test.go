package authenticating

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/pdv-api/infrastructure/localstore"
	"github.com/vfg2006/pdv-api/infrastructure/repository"
	"github.com/vfg2006/pdv-api/infrastructure/repository/mocks"
	"github.com/vfg2006/pdv-api/internal/config"
	"github.com/vfg2006/pdv-api/internal/domain"
	"github.com/vfg2006/pdv-api/pkg/apiErrors"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

func stringPtr(s string) *string {
	return &s
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey: "segredo-de-teste",
		Auth: config.Auth{
			SessionTTL:      time.Hour,
			RecoveryCodeTTL: 15 * time.Minute,
		},
		Plans: config.Plans{
			PixPrice: 59.90, PixDays: 60,
			CardPrice: 59.90, CardDays: 30,
			BoletoPrice: 59.90, BoletoDays: 30,
		},
	}
}

type fixture struct {
	service   *Service
	operators *mocks.MockOperatorRepository
	payments  *mocks.MockPaymentRepository
	store     *localstore.Store
	now       time.Time
	advanceBy time.Duration
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	store, err := localstore.Open(filepath.Join(t.TempDir(), "pdv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := &fixture{
		operators: mocks.NewMockOperatorRepository(ctrl),
		payments:  mocks.NewMockPaymentRepository(ctrl),
		store:     store,
		now:       time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
	}
	f.service = NewService(f.operators, f.payments, store, testConfig()).
		WithClock(func() time.Time { return f.now.Add(f.advanceBy) })

	return f
}

func (f *fixture) seedOperator(t *testing.T, email, password string) *domain.Operator {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	op := &domain.Operator{
		ID:            "op-1",
		Name:          "Maria",
		Email:         email,
		Password:      string(hashed),
		Active:        true,
		PaymentMethod: stringPtr(domain.PlanPix),
	}
	require.NoError(t, f.store.SaveOperator(op))
	return op
}

func TestService_SignUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.operators.EXPECT().GetByEmail(gomock.Any(), "maria@loja.com").Return(nil, nil)
	f.operators.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.payments.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *domain.Payment) error {
			assert.Equal(t, domain.PaymentStatusPending, p.Status)
			assert.Equal(t, 60, p.DaysPurchased)
			return nil
		})

	op, err := f.service.SignUp(ctx, &domain.SignUpRequest{
		Name:     "Maria",
		Email:    " Maria@Loja.com ",
		Password: "123456",
	})
	require.NoError(t, err)

	assert.Empty(t, op.Password)
	assert.Equal(t, "maria@loja.com", op.Email)
	assert.True(t, op.AwaitingPayment)
	assert.False(t, op.Active)
	assert.Equal(t, domain.PlanPix, *op.PaymentMethod)
	assert.Equal(t, 59.90, op.MonthlyValue)

	local, err := f.store.GetOperatorByEmail("maria@loja.com")
	require.NoError(t, err)
	require.NotNil(t, local)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(local.Password), []byte("123456")))

	payments, err := f.store.ListPaymentsByOperator(op.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestService_SignUp_Validation(t *testing.T) {
	tests := []struct {
		name     string
		req      domain.SignUpRequest
		wantErr  error
		wantCode string
	}{
		{
			name:     "Campos obrigatórios",
			req:      domain.SignUpRequest{Email: "a@b.com"},
			wantErr:  ErrMissingRequiredData,
			wantCode: apiErrors.ErrMissingRequiredData,
		},
		{
			name:     "Email sem domínio",
			req:      domain.SignUpRequest{Name: "A", Email: "maria@loja", Password: "123456"},
			wantErr:  ErrInvalidEmail,
			wantCode: apiErrors.ErrInvalidFormat,
		},
		{
			name:     "Senha curta",
			req:      domain.SignUpRequest{Name: "A", Email: "a@b.com", Password: "12345"},
			wantErr:  ErrWeakPassword,
			wantCode: apiErrors.ErrWeakPassword,
		},
		{
			name:     "Plano inexistente",
			req:      domain.SignUpRequest{Name: "A", Email: "a@b.com", Password: "123456", PaymentMethod: stringPtr("cheque")},
			wantErr:  ErrInvalidPlan,
			wantCode: apiErrors.ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.service.SignUp(context.Background(), &tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var authErr *AuthError
			require.True(t, errors.As(err, &authErr))
			assert.Equal(t, tt.wantCode, authErr.Code)
		})
	}
}

func TestService_SignUp_Duplicate(t *testing.T) {
	t.Run("Email já existe no banco remoto", func(t *testing.T) {
		f := newFixture(t)
		f.operators.EXPECT().GetByEmail(gomock.Any(), "a@b.com").Return(&domain.Operator{ID: "x"}, nil)

		_, err := f.service.SignUp(context.Background(), &domain.SignUpRequest{Name: "A", Email: "a@b.com", Password: "123456"})
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})

	t.Run("Conflito no insert remove a cópia local", func(t *testing.T) {
		f := newFixture(t)
		f.operators.EXPECT().GetByEmail(gomock.Any(), "a@b.com").Return(nil, nil)
		f.operators.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repository.ErrConflict)

		_, err := f.service.SignUp(context.Background(), &domain.SignUpRequest{Name: "A", Email: "a@b.com", Password: "123456"})
		assert.ErrorIs(t, err, ErrUserAlreadyExists)

		local, err := f.store.GetOperatorByEmail("a@b.com")
		require.NoError(t, err)
		assert.Nil(t, local)
	})
}

func TestService_SignUp_RemoteUnavailable(t *testing.T) {
	f := newFixture(t)

	f.operators.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, repository.ErrRemoteUnavailable)
	f.operators.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repository.ErrRemoteUnavailable)
	f.payments.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repository.ErrRemoteUnavailable)

	op, err := f.service.SignUp(context.Background(), &domain.SignUpRequest{
		Name:          "Loja",
		Email:         "loja@b.com",
		Password:      "123456",
		PaymentMethod: stringPtr(domain.PlanBoleto),
	})
	require.NoError(t, err)
	assert.Equal(t, 30, op.SubscriptionDays)

	local, err := f.store.GetOperator(op.ID)
	require.NoError(t, err)
	assert.NotNil(t, local)
}

func TestService_LoginLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	op := f.seedOperator(t, "maria@loja.com", "segredo1")

	f.operators.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, repository.ErrRemoteUnavailable).AnyTimes()

	_, err := f.service.Login(ctx, "maria@loja.com", "errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.service.Login(ctx, "ninguem@loja.com", "segredo1")
	assert.Error(t, err)

	served, err := f.store.ServedOperators()
	require.NoError(t, err)
	assert.Empty(t, served, "login recusado não registra o operador")

	resp, err := f.service.Login(ctx, "MARIA@loja.com", "segredo1")
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, op.ID, resp.Session.OperatorID)
	assert.False(t, resp.Session.NoSubscription)
	assert.Equal(t, f.now.Add(time.Hour).Unix(), resp.Session.ExpiresAt.Unix())

	served, err = f.store.ServedOperators()
	require.NoError(t, err)
	assert.Equal(t, []string{op.ID}, served)

	session, err := f.service.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, op.ID, session.OperatorID)
	assert.Equal(t, resp.Session.ID, session.ID)

	require.NoError(t, f.service.Logout(resp.Token))

	_, err = f.service.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, ErrRevokedToken)
	assert.True(t, IsAuthorizationError(err))
}

func TestService_ValidateToken(t *testing.T) {
	f := newFixture(t)
	f.seedOperator(t, "maria@loja.com", "segredo1")
	f.operators.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, repository.ErrRemoteUnavailable)

	resp, err := f.service.Login(context.Background(), "maria@loja.com", "segredo1")
	require.NoError(t, err)

	_, err = f.service.ValidateToken("abc.def.ghi")
	assert.ErrorIs(t, err, ErrInvalidToken)

	f.advanceBy = 2 * time.Hour
	_, err = f.service.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)

	assert.NoError(t, f.service.Logout(resp.Token))
}

func TestService_Recovery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedOperator(t, "maria@loja.com", "antiga1")

	f.operators.EXPECT().GetByEmail(gomock.Any(), "maria@loja.com").Return(nil, repository.ErrRemoteUnavailable).AnyTimes()
	f.operators.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	code, err := f.service.RequestRecoveryCode(ctx, "maria@loja.com")
	require.NoError(t, err)
	assert.Len(t, code.Code, 6)
	assert.Equal(t, f.now.Add(15*time.Minute), code.ExpiresAt)

	err = f.service.ResetPassword(ctx, &domain.ResetPasswordRequest{Email: "maria@loja.com", Code: "ZZZZZZ0", NewPassword: "nova123"})
	assert.ErrorIs(t, err, ErrInvalidRecovery)

	err = f.service.ResetPassword(ctx, &domain.ResetPasswordRequest{Email: "maria@loja.com", Code: code.Code, NewPassword: "nova123"})
	require.NoError(t, err)

	_, err = f.service.Login(ctx, "maria@loja.com", "nova123")
	require.NoError(t, err)

	err = f.service.ResetPassword(ctx, &domain.ResetPasswordRequest{Email: "maria@loja.com", Code: code.Code, NewPassword: "outra123"})
	assert.ErrorIs(t, err, ErrInvalidRecovery, "o código só vale uma vez")
}

func TestService_Recovery_Expired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedOperator(t, "maria@loja.com", "antiga1")
	f.operators.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, repository.ErrRemoteUnavailable).AnyTimes()

	code, err := f.service.RequestRecoveryCode(ctx, "maria@loja.com")
	require.NoError(t, err)

	f.advanceBy = 16 * time.Minute
	err = f.service.ResetPassword(ctx, &domain.ResetPasswordRequest{Email: "maria@loja.com", Code: code.Code, NewPassword: "nova123"})
	assert.ErrorIs(t, err, ErrInvalidRecovery)

	_, err = f.service.RequestRecoveryCode(ctx, "ninguem@loja.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("a@b.com"))
	assert.ErrorIs(t, ValidateEmail("Maria <a@b.com>"), ErrInvalidEmail)
	assert.ErrorIs(t, ValidateEmail("sem-arroba"), ErrInvalidEmail)
	assert.ErrorIs(t, ValidateEmail("a@b"), ErrInvalidEmail)
}
