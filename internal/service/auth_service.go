package service

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"board/internal/errors"
	"board/internal/model"
	"board/internal/repository"
)

// CodeIssuer delivers a fresh verification code and returns it.
type CodeIssuer interface {
	Issue(ctx context.Context, email string) (string, error)
}

// AuthService handles the email code login flow.
type AuthService interface {
	// RequestCode finds or creates the user for email and sends them a code.
	RequestCode(ctx context.Context, email string) (*model.User, error)
	// VerifyCode checks a code and returns the user it belongs to.
	VerifyCode(ctx context.Context, userID uint, code string) (*model.User, error)
}

type authService struct {
	users    repository.UserRepository
	codes    repository.CodeRepository
	issuer   CodeIssuer
	validate *validator.Validate
	codeTTL  time.Duration
	now      func() time.Time
	log      *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	users repository.UserRepository,
	codes repository.CodeRepository,
	issuer CodeIssuer,
	codeTTL time.Duration,
	log *zap.Logger,
) AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		users:    users,
		codes:    codes,
		issuer:   issuer,
		validate: validator.New(),
		codeTTL:  codeTTL,
		now:      time.Now,
		log:      log,
	}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// placeholderUsername returns a random user_xxxxxxxx name for new accounts.
func placeholderUsername() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "user_" + id[:8]
}

func (s *authService) RequestCode(ctx context.Context, email string) (*model.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, errors.Validation("email cannot be empty")
	}
	if err := s.validate.Var(email, "email,max=255"); err != nil {
		return nil, errors.Validation("email address is not valid")
	}

	username := placeholderUsername()
	user, err := s.users.FindByEmailOrCreate(ctx, &model.User{Email: email, Username: &username})
	if err != nil {
		return nil, err
	}

	code, err := s.issuer.Issue(ctx, email)
	if err != nil {
		return nil, err
	}

	s.sweep(ctx)
	now := s.now()
	if err := s.codes.Create(ctx, &model.VerificationCode{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: now.Add(s.codeTTL),
	}); err != nil {
		return nil, err
	}

	s.log.Info("verification code issued", zap.Uint("user_id", user.ID))
	return user, nil
}

func (s *authService) VerifyCode(ctx context.Context, userID uint, code string) (*model.User, error) {
	code = strings.TrimSpace(code)
	if userID == 0 || code == "" {
		return nil, errors.ErrInvalidCode
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrInvalidCode
		}
		return nil, err
	}

	s.sweep(ctx)
	ok, err := s.codes.Consume(ctx, userID, code, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Info("verification code rejected", zap.Uint("user_id", userID))
		return nil, errors.ErrInvalidCode
	}

	if err := s.codes.DeleteByUser(ctx, userID); err != nil {
		s.log.Warn("failed to drop remaining verification codes", zap.Uint("user_id", userID), zap.Error(err))
	}
	return user, nil
}

// sweep drops expired codes. Failures are logged and ignored.
func (s *authService) sweep(ctx context.Context) {
	n, err := s.codes.DeleteExpired(ctx, s.now())
	if err != nil {
		s.log.Warn("expired code sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Debug("expired codes swept", zap.Int64("deleted", n))
	}
}
