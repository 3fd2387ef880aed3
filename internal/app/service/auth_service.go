package service

import (
	"errors"
	"time"

	"github.com/MauroRinelli/Solship/internal/app/model"
	"github.com/MauroRinelli/Solship/internal/app/repository"
	"github.com/MauroRinelli/Solship/pkg/logger"
	"github.com/MauroRinelli/Solship/pkg/util"
	"github.com/MauroRinelli/Solship/pkg/validator"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService interface {
	Register(email, password, name string) (*model.User, string, error)
	Login(email, password string) (*model.User, string, error)
	GetUserByID(id string) (*model.User, error)
}

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret string
	expiry    time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, expiry time.Duration) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		expiry:    expiry,
	}
}

func (s *authService) Register(email, password, name string) (*model.User, string, error) {
	logger.Info("Attempting user registration", map[string]interface{}{
		"email": email,
	})

	if !validator.Required(email) || !validator.Email(email) {
		return nil, "", &ValidationError{Fields: map[string]string{"email": "invalid email"}}
	}
	if !validator.MinLength(password, 6) {
		return nil, "", &ValidationError{Fields: map[string]string{"password": "password must be at least 6 characters"}}
	}

	existing, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}
	if existing != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, "", ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", err
	}

	token, err := util.GenerateToken(user.ID, user.Email, s.jwtSecret, s.expiry)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})
	return user, token, nil
}

func (s *authService) Login(email, password string) (*model.User, string, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, "", ErrInvalidCredentials
		}
		logger.Error("Failed to fetch user for login", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: wrong password", map[string]interface{}{
			"email": email,
		})
		return nil, "", ErrInvalidCredentials
	}

	token, err := util.GenerateToken(user.ID, user.Email, s.jwtSecret, s.expiry)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, token, nil
}

func (s *authService) GetUserByID(id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
