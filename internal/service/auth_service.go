package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/trafikk-api/internal/domain/entity"
	"github.com/yourusername/trafikk-api/internal/domain/repository"
	apperrors "github.com/yourusername/trafikk-api/internal/pkg/errors"
	"github.com/yourusername/trafikk-api/pkg/auth"
)

// AuthService предоставляет методы для регистрации и аутентификации
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Register регистрирует нового пользователя и сразу выдает токен.
// Занятые email или username — ErrConflict.
func (s *AuthService) Register(username, email, password, language string) (*entity.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	user := &entity.User{
		Username: username,
		Email:    email,
		Password: password, // Хешируется в BeforeSave-хуке
		Role:     "user",
		Language: language,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, "", fmt.Errorf("%w: username or email already taken", apperrors.ErrConflict)
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}

	log.Printf("[AuthService] Зарегистрирован пользователь %s (#%d)", user.Username, user.ID)
	return user, token, nil
}

// Login проверяет учетные данные и выдает токен.
// Несуществующий email и неверный пароль неразличимы для клиента.
func (s *AuthService) Login(email, password string) (*entity.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
		}
		return nil, "", err
	}

	if !user.CheckPassword(password) {
		return nil, "", fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
