package services

import (
	"context"
	"errors"
	"time"

	"ecowaste/internal/models"
	"ecowaste/internal/repositories/interfaces"
	"ecowaste/internal/utils"
	"ecowaste/internal/validators"
	"ecowaste/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, request *validators.UserRegistrationRequest) (*AuthResponse, error)
	Login(ctx context.Context, request *validators.UserLoginRequest) (*AuthResponse, error)
	Me(ctx context.Context, userID primitive.ObjectID) (*models.User, error)

	// Authenticate verifies a bearer token and loads its account from the
	// store. Every failure is reported as Unauthorized.
	Authenticate(ctx context.Context, token string) (*models.User, error)

	// EnsureAdmin creates the given admin account, or promotes it when an
	// account with that email already exists.
	EnsureAdmin(ctx context.Context, admin *AdminAccount) error
}

// AuthResponse is the account plus a freshly issued bearer token.
type AuthResponse struct {
	*models.User
	Token string `json:"token"`
}

type AdminAccount struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

type authService struct {
	userRepo   interfaces.UserRepository
	jwtSecret  string
	tokenTTL   time.Duration
	bcryptCost int
	logger     *logger.Logger
}

func NewAuthService(
	userRepo interfaces.UserRepository,
	jwtSecret string,
	tokenTTL time.Duration,
	logger *logger.Logger,
) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = utils.JWTAccessTokenTTL
	}

	return &authService{
		userRepo:   userRepo,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger,
	}
}

func (s *authService) Register(ctx context.Context, request *validators.UserRegistrationRequest) (*AuthResponse, error) {
	if err := validators.ValidateUserRegistration(request); err != nil {
		return nil, err
	}

	// Check if user already exists
	if existing, err := s.userRepo.GetByEmail(ctx, request.Email); err == nil && existing != nil {
		return nil, utils.NewAppError(utils.ErrConflict, utils.ErrMsgUserExists)
	} else if err != nil && !errors.Is(err, utils.ErrNotFound) {
		return nil, err
	}

	if existing, err := s.userRepo.GetByPhone(ctx, request.Phone); err == nil && existing != nil {
		return nil, utils.NewAppError(utils.ErrConflict, utils.ErrMsgUserExists)
	} else if err != nil && !errors.Is(err, utils.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := s.hashPassword(request.Password)
	if err != nil {
		return nil, utils.WrapAppError(utils.ErrInternal, "", err)
	}

	user := &models.User{
		Name:     request.Name,
		Email:    request.Email,
		Phone:    request.Phone,
		Password: hashedPassword,
		Role:     models.UserRoleUser,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.WithError(err).Error("Failed to create user")
		return nil, err
	}

	s.logger.LogUserAction(user.ID, utils.EventUserRegistered, nil)

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, request *validators.UserLoginRequest) (*AuthResponse, error) {
	if err := validators.ValidateUserLogin(request); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, request.Email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			s.logFailedLogin(request.Email, "unknown_email")
			return nil, utils.NewAppError(utils.ErrUnauthorized, utils.ErrMsgInvalidCredentials)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(request.Password)); err != nil {
		s.logFailedLogin(request.Email, "bad_password")
		return nil, utils.NewAppError(utils.ErrUnauthorized, utils.ErrMsgInvalidCredentials)
	}

	s.logger.LogUserAction(user.ID, utils.EventUserLogin, nil)

	return s.issue(user)
}

func (s *authService) Me(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := utils.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return nil, utils.WrapAppError(utils.ErrUnauthorized, utils.ErrMsgInvalidToken, err)
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.WrapAppError(utils.ErrUnauthorized, utils.ErrMsgInvalidToken, err)
		}
		return nil, err
	}

	return user, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, admin *AdminAccount) error {
	user, err := s.userRepo.GetByEmail(ctx, admin.Email)
	switch {
	case err == nil:
		if user.IsAdmin() {
			return nil
		}
		if err := s.userRepo.SetRole(ctx, user.ID, models.UserRoleAdmin); err != nil {
			return err
		}
		s.logger.WithUserID(user.ID).Info("Promoted existing account to admin")
		return nil
	case !errors.Is(err, utils.ErrNotFound):
		return err
	}

	hashedPassword, err := s.hashPassword(admin.Password)
	if err != nil {
		return err
	}

	user = &models.User{
		Name:     admin.Name,
		Email:    admin.Email,
		Phone:    admin.Phone,
		Password: hashedPassword,
		Role:     models.UserRoleAdmin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	s.logger.WithUserID(user.ID).Info("Created admin account")
	return nil
}

func (s *authService) issue(user *models.User) (*AuthResponse, error) {
	token, err := utils.GenerateToken(user.ID, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, utils.WrapAppError(utils.ErrInternal, "", err)
	}

	return &AuthResponse{User: user, Token: token}, nil
}

func (s *authService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *authService) logFailedLogin(email, reason string) {
	s.logger.LogSecurityEvent("login_failed", "low", map[string]interface{}{
		"email":  email,
		"reason": reason,
	})
}
