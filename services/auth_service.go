package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"content-review-cms/config"
	"content-review-cms/models"
	"content-review-cms/repositories"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

type authService struct {
	userRepo     repositories.UserRepository
	staffService StaffService
	jwt          config.JWTConfig
	logger       *slog.Logger
}

func NewAuthService(userRepo repositories.UserRepository, staffService StaffService, jwtConfig config.JWTConfig, logger *slog.Logger) AuthService {
	return &authService{
		userRepo:     userRepo,
		staffService: staffService,
		jwt:          jwtConfig,
		logger:       logger,
	}
}

func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	// Check if user already exists
	existingUser, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err == nil && existingUser != nil {
		return nil, &models.ErrorBadRequest{Code: models.CodeInvalidArgument, Message: "user already exists"}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// Set default role if not provided
	role := req.Role
	if role == "" {
		role = models.RoleWriter
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, &models.ErrorBadRequest{Code: models.CodeInvalidArgument, Message: "user already exists"}
		}
		return nil, err
	}

	// Editors review content from day one
	if staffType, ok := staffTypeForRole(role); ok {
		if _, err := s.staffService.AddStaff(ctx, int64(user.ID), staffType); err != nil {
			return nil, err
		}
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		"event", "user_registered",
		"module", "services",
		"user_id", user.ID,
		"role", role,
	)
	return &models.AuthResponse{
		Token: token,
		User:  *user,
	}, nil
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.ErrorUnauthorized{Message: "invalid credentials"}
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, &models.ErrorUnauthorized{Message: "invalid credentials"}
	}
	if user.Disabled {
		return nil, &models.ErrorUnauthorized{Message: "account disabled"}
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token: token,
		User:  *user,
	}, nil
}

func (s *authService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) generateToken(user *models.User) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      now.Add(s.jwt.Expiration).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(s.jwt.Secret)
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

func staffTypeForRole(role models.UserRole) (models.StaffType, bool) {
	switch role {
	case models.RoleEditor:
		return models.StaffReviewer, true
	case models.RoleAdmin:
		return models.StaffAdmin, true
	}
	return "", false
}
