package service

import (
	"log"
	"time"

	"github.com/yourusername/trafikk-api/internal/domain/entity"
	"github.com/yourusername/trafikk-api/internal/domain/repository"
	"github.com/yourusername/trafikk-api/internal/handler/dto"
)

// TTL кеша лидерборда. Кеш дополнительно инвалидируется при каждом
// завершении игры, так что TTL — только страховка от залипания.
const leaderboardCacheTTL = 5 * time.Minute

// UserService предоставляет методы для работы с пользователями
type UserService struct {
	userRepo  repository.UserRepository
	cacheRepo repository.CacheRepository
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository, cacheRepo repository.CacheRepository) *UserService {
	return &UserService{
		userRepo:  userRepo,
		cacheRepo: cacheRepo,
	}
}

// GetUserByID возвращает пользователя по ID
func (s *UserService) GetUserByID(id uint) (*entity.User, error) {
	return s.userRepo.GetByID(id)
}

// UpdateProfile обновляет изменяемые поля профиля
func (s *UserService) UpdateProfile(userID uint, username, profilePicture, language string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if username != "" {
		user.Username = username
	}
	if profilePicture != "" {
		user.ProfilePicture = profilePicture
	}
	if language != "" {
		user.Language = language
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetLeaderboard возвращает пагинированный лидерборд по total_xp.
// Первая страница кешируется в Redis: ее запрашивают чаще всего.
func (s *UserService) GetLeaderboard(page, pageSize int) (*dto.PaginatedLeaderboardResponse, error) {
	// Валидация параметров пагинации
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	} else if pageSize > 100 {
		pageSize = 100
	}

	useCache := page == 1 && pageSize == 10
	if useCache {
		var cached dto.PaginatedLeaderboardResponse
		if err := s.cacheRepo.GetJSON(leaderboardCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	offset := (page - 1) * pageSize
	users, total, err := s.userRepo.GetLeaderboard(pageSize, offset)
	if err != nil {
		log.Printf("[UserService] Ошибка при получении лидерборда из репозитория: %v", err)
		return nil, err
	}

	userDTOs := make([]*dto.LeaderboardUserDTO, len(users))
	for i, user := range users {
		userDTOs[i] = &dto.LeaderboardUserDTO{
			Rank:           offset + i + 1,
			UserID:         user.ID,
			Username:       user.Username,
			ProfilePicture: user.ProfilePicture,
			TotalXP:        user.TotalXP,
			GamesPlayed:    user.GamesPlayed,
			HighestScore:   user.HighestScore,
		}
	}

	response := &dto.PaginatedLeaderboardResponse{
		Users:    userDTOs,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}

	if useCache {
		if err := s.cacheRepo.SetJSON(leaderboardCacheKey, response, leaderboardCacheTTL); err != nil {
			log.Printf("[UserService] Не удалось записать лидерборд в кеш: %v", err)
		}
	}
	return response, nil
}
