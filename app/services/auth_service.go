package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"socialfeed/app/apperror"
	"socialfeed/app/logger"
	"socialfeed/app/models"
	"socialfeed/app/repositories"
	"socialfeed/app/token"
	"socialfeed/app/validation"
)

const (
	emailTakenMessage     = "Email already exist"
	userNotFoundMessage   = "User not found"
	wrongPasswordMessage  = "Password incorrect"
	notAuthenticatedError = "Not Authenticated"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// AuthService handles signup, login, token verification and user status.
type AuthService struct {
	userRepo   repositories.UserRepository
	tokens     *token.Manager
	validator  *validation.Validator
	bcryptCost int
	logger     *logger.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.UserRepository,
	tokens *token.Manager,
	validator *validation.Validator,
	bcryptCost int,
	logger *logger.Logger,
) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:   userRepo,
		tokens:     tokens,
		validator:  validator,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Signup validates the input, rejects taken emails and stores the user with a
// hashed password. It returns the new user's ID.
func (s *AuthService) Signup(ctx context.Context, in models.SignupInput) (string, error) {
	in.Normalize()
	s.logger.Debug("Auth service: signing up user", "email", in.Email)

	fields, err := s.validator.Check(in)
	if err != nil {
		return "", err
	}
	if !hasField(fields, "email") {
		_, err := s.userRepo.GetByEmail(in.Email)
		switch {
		case err == nil:
			fields = append(fields, validation.Field("email", in.Email, emailTakenMessage))
		case !errors.Is(err, repositories.ErrNotFound):
			s.logger.Error("Auth service: failed to get user by email",
				"email", in.Email,
				"error", err.Error())
			return "", fmt.Errorf("failed to get user by email: %w", err)
		}
	}
	if len(fields) > 0 {
		return "", validation.Failed(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Email: in.Email, Password: string(hash), Name: in.Name}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			s.logger.Info("Auth service: email taken concurrently", "email", in.Email)
			return "", validation.Failed([]validation.FieldError{
				validation.Field("email", in.Email, emailTakenMessage),
			})
		}
		s.logger.Error("Auth service: failed to create user",
			"email", in.Email,
			"error", err.Error())
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("Auth service: user created", "user_id", user.ID)
	return user.ID, nil
}

// Login checks the credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, in models.LoginInput) (*LoginResult, error) {
	in.Normalize()

	user, err := s.userRepo.GetByEmail(in.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NewNotFound(userNotFoundMessage, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		s.logger.Info("Auth service: wrong password", "user_id", user.ID)
		return nil, apperror.NewUnauthenticated(wrongPasswordMessage, err)
	}

	tok, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("Auth service: user logged in", "user_id", user.ID)
	return &LoginResult{Token: tok, UserID: user.ID}, nil
}

// VerifyToken extracts the user ID from an "Authorization: Bearer <jwt>"
// header value. Every failure is a 401.
func (s *AuthService) VerifyToken(header string) (string, error) {
	if header == "" {
		return "", apperror.NewUnauthenticated(notAuthenticatedError, nil)
	}
	scheme, raw, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
		return "", apperror.NewUnauthenticated(notAuthenticatedError, errors.New("malformed authorization header"))
	}

	claims, err := s.tokens.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", apperror.NewUnauthenticated(notAuthenticatedError, err)
	}
	return claims.UserID, nil
}

// GetStatus returns the user's status.
func (s *AuthService) GetStatus(ctx context.Context, userID string) (string, error) {
	user, err := s.getUser(userID)
	if err != nil {
		return "", err
	}
	return user.Status, nil
}

// SetStatus replaces the user's status and returns the stored value.
func (s *AuthService) SetStatus(ctx context.Context, userID, status string) (string, error) {
	user, err := s.getUser(userID)
	if err != nil {
		return "", err
	}

	user.Status = status
	if err := s.userRepo.Update(user); err != nil {
		s.logger.Error("Auth service: failed to update status",
			"user_id", userID,
			"error", err.Error())
		return "", fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Debug("Auth service: status updated", "user_id", userID)
	return user.Status, nil
}

func (s *AuthService) getUser(userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.NewNotFound(userNotFoundMessage, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func hasField(fields []validation.FieldError, path string) bool {
	for _, f := range fields {
		if f.Path == path {
			return true
		}
	}
	return false
}
