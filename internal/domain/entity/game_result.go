package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JSONMap - пользовательский тип для произвольных JSONB-данных (performance_data)
type JSONMap map[string]interface{}

// Scan реализует интерфейс sql.Scanner для JSONMap
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}
	if len(bytes) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// Value реализует интерфейс driver.Valuer для JSONMap
func (m JSONMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// GameResult представляет итоговый результат игровой сессии.
// Запись создается один раз при завершении сессии и далее не изменяется.
type GameResult struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	SessionID string `gorm:"size:36;not null;uniqueIndex" json:"session_id"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	GameID    string `gorm:"size:50;not null;index" json:"game_id"`

	Score             int     `gorm:"not null;default:0" json:"score"`
	MaxScore          int     `gorm:"not null;default:0" json:"max_score"`
	CompletionTimeSec float64 `gorm:"not null;default:0" json:"completion_time_sec"`
	CorrectAnswers    int     `gorm:"not null;default:0" json:"correct_answers"`
	TotalQuestions    int     `gorm:"not null;default:0" json:"total_questions"`
	XPEarned          int     `gorm:"not null;default:0" json:"xp_earned"`

	// Achievements хранится как множество: порядок не важен, дубликаты невозможны
	Achievements    StringArray `gorm:"type:jsonb;not null" json:"achievements"`
	PerformanceData JSONMap     `gorm:"type:jsonb;not null" json:"performance_data"`

	CompletedAt time.Time `gorm:"not null" json:"completed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (GameResult) TableName() string {
	return "game_results"
}

// Accuracy возвращает процент правильных ответов [0, 100].
// При нулевом знаменателе возвращает 0, а не NaN.
func (r *GameResult) Accuracy() float64 {
	if r.TotalQuestions == 0 {
		return 0
	}
	return float64(r.CorrectAnswers) / float64(r.TotalQuestions) * 100
}

// CompletionPercentage возвращает процент от максимального счета [0, 100].
// При нулевом знаменателе возвращает 0.
func (r *GameResult) CompletionPercentage() float64 {
	if r.MaxScore == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.MaxScore) * 100
}

// HasAchievement проверяет наличие достижения в результате
func (r *GameResult) HasAchievement(id string) bool {
	for _, a := range r.Achievements {
		if a == id {
			return true
		}
	}
	return false
}
