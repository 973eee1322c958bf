package repository

import (
	"github.com/yourusername/trafikk-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	Update(user *entity.User) error

	// AddXP атомарно начисляет пользователю опыт (gorm.Expr, без read-modify-write)
	AddXP(userID uint, amount int) error

	// RecordGamePlayed атомарно инкрементирует счетчик сыгранных игр
	// и поднимает highest_score, если score выше текущего рекорда.
	RecordGamePlayed(userID uint, score int) error

	// GetLeaderboard возвращает топ пользователей по total_xp
	GetLeaderboard(limit, offset int) ([]entity.User, int64, error)
}
