package authenticating

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pdv-api/infrastructure/localstore"
	"github.com/vfg2006/pdv-api/infrastructure/repository"
	"github.com/vfg2006/pdv-api/internal/config"
	"github.com/vfg2006/pdv-api/internal/domain"
	"github.com/vfg2006/pdv-api/pkg/apiErrors"
	"github.com/vfg2006/pdv-api/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	signUpPurchase    = "assinatura"
)

type Authenticator interface {
	SignUp(ctx context.Context, req *domain.SignUpRequest) (*domain.Operator, error)
	Login(ctx context.Context, email, password string) (*domain.LoginResponse, error)
	Logout(tokenString string) error
	ValidateToken(tokenString string) (*domain.Session, error)
	RequestRecoveryCode(ctx context.Context, email string) (*domain.RecoveryCode, error)
	ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) error
}

type Service struct {
	operatorRepo repository.OperatorRepository
	paymentRepo  repository.PaymentRepository
	store        *localstore.Store
	cfg          *config.Config
	now          func() time.Time

	revokedMu sync.Mutex
	revoked   map[string]time.Time
}

func NewService(
	operatorRepo repository.OperatorRepository,
	paymentRepo repository.PaymentRepository,
	store *localstore.Store,
	cfg *config.Config,
) *Service {
	return &Service{
		operatorRepo: operatorRepo,
		paymentRepo:  paymentRepo,
		store:        store,
		cfg:          cfg,
		now:          time.Now,
		revoked:      make(map[string]time.Time),
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func handleEmail(s string) string {
	email := strings.ToLower(s)
	email = strings.TrimSpace(email)
	email = strings.ReplaceAll(email, " ", "")
	return email
}

// ValidateEmail aceita apenas um endereço simples, sem nome de exibição
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return ErrInvalidEmail
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// SignUp cria a conta aguardando pagamento, com o primeiro pagamento pendente do plano escolhido
func (s *Service) SignUp(ctx context.Context, req *domain.SignUpRequest) (*domain.Operator, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Nome, email e senha são obrigatórios")
	}

	email := handleEmail(req.Email)
	if err := ValidateEmail(email); err != nil {
		return nil, NewAuthError(err, apiErrors.ErrInvalidFormat, email)
	}
	if err := ValidatePassword(req.Password); err != nil {
		return nil, NewAuthError(err, apiErrors.ErrWeakPassword, "")
	}

	method := domain.PlanPix
	if req.PaymentMethod != nil && *req.PaymentMethod != "" {
		method = *req.PaymentMethod
	}
	plan, ok := s.cfg.Plans.Find(method)
	if !ok {
		return nil, NewAuthError(ErrInvalidPlan, apiErrors.ErrInvalidRequest, method)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	operator := &domain.Operator{
		ID:               utils.NewID(),
		Name:             strings.TrimSpace(req.Name),
		Email:            email,
		Password:         string(hashed),
		Active:           false,
		AwaitingPayment:  true,
		PaymentMethod:    &plan.Method,
		MonthlyValue:     plan.Price,
		SubscriptionDays: plan.Days,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.RegisterOperator(ctx, operator); err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		ID:            utils.NewID(),
		OperatorID:    operator.ID,
		Reference:     fmt.Sprintf("Assinatura %s", plan.Method),
		Amount:        plan.Price,
		DueDate:       utils.StartOfDay(now),
		Status:        domain.PaymentStatusPending,
		Method:        plan.Method,
		DaysPurchased: plan.Days,
		PurchaseType:  signUpPurchase,
		CreatedAt:     now,
	}

	if err := s.store.SavePayment(payment); err != nil {
		logrus.WithError(err).WithField("operador_id", operator.ID).Error("Erro ao gravar pagamento inicial")
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		logrus.WithError(err).WithField("operador_id", operator.ID).Warn("Pagamento inicial não enviado ao banco remoto")
	}

	logrus.WithFields(logrus.Fields{
		"operador_id":     operator.ID,
		"forma_pagamento": plan.Method,
	}).Info("Conta criada aguardando pagamento")

	return operator.Sanitized(), nil
}

// RegisterOperator grava o operador localmente e depois no banco remoto.
// Sem banco remoto a conta fica só no armazenamento local.
func (s *Service) RegisterOperator(ctx context.Context, operator *domain.Operator) error {
	existing, err := s.operatorRepo.GetByEmail(ctx, operator.Email)
	if err != nil && !errors.Is(err, repository.ErrRemoteUnavailable) {
		return NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao consultar operador")
	}
	if existing != nil {
		return NewAuthError(ErrUserAlreadyExists, apiErrors.ErrUserAlreadyExists, operator.Email)
	}

	if err := s.store.SaveOperator(operator); err != nil {
		if errors.Is(err, localstore.ErrDuplicateEmail) {
			return NewAuthError(ErrUserAlreadyExists, apiErrors.ErrUserAlreadyExists, operator.Email)
		}
		return NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao gravar operador")
	}

	err = s.operatorRepo.Create(ctx, operator)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrRemoteUnavailable):
		logrus.WithField("operador_id", operator.ID).Warn("Banco remoto indisponível, operador gravado apenas localmente")
		return nil
	case errors.Is(err, repository.ErrConflict):
		_ = s.store.DeleteOperator(operator.ID)
		return NewAuthError(ErrUserAlreadyExists, apiErrors.ErrUserAlreadyExists, operator.Email)
	default:
		_ = s.store.DeleteOperator(operator.ID)
		return NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao criar operador")
	}
}

// findByEmail consulta o banco remoto e recorre ao espelho local quando ele falha
func (s *Service) findByEmail(ctx context.Context, email string) (*domain.Operator, error) {
	operator, err := s.operatorRepo.GetByEmail(ctx, email)
	if err == nil {
		if operator != nil {
			if err := s.store.SaveOperator(operator); err != nil {
				logrus.WithError(err).WithField("operador_id", operator.ID).Warn("Erro ao espelhar operador")
			}
		}
		return operator, nil
	}

	if !errors.Is(err, repository.ErrRemoteUnavailable) {
		logrus.WithError(err).Warn("Erro ao consultar operador no banco remoto, usando cópia local")
	}

	return s.store.GetOperatorByEmail(email)
}

func (s *Service) Login(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
	if email == "" || password == "" {
		return nil, NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Email e senha são obrigatórios")
	}

	email = handleEmail(email)

	operator, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao consultar operador")
	}

	if operator == nil {
		return nil, NewAuthError(ErrUserNotFound, apiErrors.ErrUserNotFound, "Operador não encontrado")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.Password), []byte(password)); err != nil {
		return nil, NewOperatorAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, operator.ID, "Senha incorreta")
	}

	token, session, err := s.generateJWT(operator)
	if err != nil {
		return nil, NewAuthError(err, apiErrors.ErrInternalServer, "Erro ao gerar token de autenticação")
	}

	// a sincronização passa a trazer os dados deste operador
	if err := s.store.AddServedOperator(operator.ID); err != nil {
		logrus.WithError(err).WithField("operador_id", operator.ID).Warn("Erro ao registrar operador atendido")
	}

	logrus.WithFields(logrus.Fields{
		"operador_id": operator.ID,
		"admin":       operator.IsAdmin,
	}).Info("Login realizado")

	return &domain.LoginResponse{Token: token, Session: session}, nil
}

func (s *Service) generateJWT(operator *domain.Operator) (string, *domain.Session, error) {
	now := s.now()
	ttl := s.cfg.Auth.SessionTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	claims := domain.Claims{
		OperatorID:     operator.ID,
		OperatorName:   operator.Name,
		Email:          operator.Email,
		IsAdmin:        operator.IsAdmin,
		NoSubscription: !operator.HasPlan(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        utils.NewID(),
			Subject:   operator.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", nil, err
	}

	return signed, claims.Session(), nil
}

func (s *Service) parse(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", token.Header["alg"])
		}
		return []byte(s.cfg.SecretKey), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *Service) ValidateToken(tokenString string) (*domain.Session, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}

	s.revokedMu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.revokedMu.Unlock()

	if revoked {
		return nil, ErrRevokedToken
	}

	return claims.Session(), nil
}

// Logout revoga o token até o seu vencimento
func (s *Service) Logout(tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil
		}
		return err
	}

	now := s.now()

	s.revokedMu.Lock()
	defer s.revokedMu.Unlock()

	for id, expiresAt := range s.revoked {
		if now.After(expiresAt) {
			delete(s.revoked, id)
		}
	}
	s.revoked[claims.ID] = claims.ExpiresAt.Time

	logrus.WithField("operador_id", claims.OperatorID).Info("Sessão encerrada")

	return nil
}

// RequestRecoveryCode gera um código de 6 caracteres válido pelo tempo configurado
func (s *Service) RequestRecoveryCode(ctx context.Context, email string) (*domain.RecoveryCode, error) {
	email = handleEmail(email)
	if email == "" {
		return nil, NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Email é obrigatório")
	}

	operator, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao consultar operador")
	}
	if operator == nil {
		return nil, NewAuthError(ErrUserNotFound, apiErrors.ErrUserNotFound, email)
	}

	code, err := utils.GenerateCode()
	if err != nil {
		return nil, NewAuthError(err, apiErrors.ErrInternalServer, "Erro ao gerar código")
	}

	ttl := s.cfg.Auth.RecoveryCodeTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	recovery := &domain.RecoveryCode{
		Email:     email,
		Code:      code,
		ExpiresAt: s.now().Add(ttl),
	}

	if err := s.store.SaveRecoveryCode(recovery); err != nil {
		return nil, NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao gravar código")
	}

	logrus.WithField("operador_id", operator.ID).Info("Código de recuperação gerado")

	return recovery, nil
}

func (s *Service) ResetPassword(ctx context.Context, req *domain.ResetPasswordRequest) error {
	email := handleEmail(req.Email)
	if email == "" || req.Code == "" {
		return NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Email e código são obrigatórios")
	}
	if err := ValidatePassword(req.NewPassword); err != nil {
		return NewAuthError(err, apiErrors.ErrWeakPassword, "")
	}

	recovery, err := s.store.GetRecoveryCode(email)
	if err != nil {
		return NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao ler código")
	}
	if recovery == nil || !recovery.IsValid(strings.ToUpper(strings.TrimSpace(req.Code)), s.now()) {
		return NewAuthError(ErrInvalidRecovery, apiErrors.ErrInvalidRecoveryCode, "")
	}

	operator, err := s.findByEmail(ctx, email)
	if err != nil {
		return NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao consultar operador")
	}
	if operator == nil {
		return NewAuthError(ErrUserNotFound, apiErrors.ErrUserNotFound, email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	operator.Password = string(hashed)
	operator.UpdatedAt = s.now()

	if err := s.operatorRepo.Update(ctx, operator); err != nil && !errors.Is(err, repository.ErrRemoteUnavailable) {
		return NewOperatorAuthError(err, apiErrors.ErrDatabaseOperation, operator.ID, "Erro ao atualizar senha")
	}

	if err := s.store.SaveOperator(operator); err != nil {
		return NewOperatorAuthError(err, apiErrors.ErrDatabaseOperation, operator.ID, "Erro ao atualizar senha local")
	}

	if err := s.store.DeleteRecoveryCode(email); err != nil {
		logrus.WithError(err).Warn("Erro ao remover código de recuperação usado")
	}

	logrus.WithField("operador_id", operator.ID).Info("Senha redefinida")

	return nil
}
