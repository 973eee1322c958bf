package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Типы сценариев головоломки. Неизвестный тип не является ошибкой:
// генератор подставляет для него обобщенную двухполосную улицу.
const (
	ScenarioIntersection = "intersection_priority"
	ScenarioRoundabout   = "roundabout_navigation"
	ScenarioPedestrian   = "pedestrian_crossing"
	ScenarioEmergency    = "emergency_vehicle"
	ScenarioMerge        = "highway_merge"
	ScenarioSchoolZone   = "school_zone"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// ScenarioTemplate представляет шаблон сценария в каталоге.
// Каталог хранится в PostgreSQL и внутри движка доступен только на чтение.
type ScenarioTemplate struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	GameID       string      `gorm:"size:50;not null;index" json:"game_id"`
	ScenarioType string      `gorm:"size:50;not null;index" json:"scenario_type"`
	Title        string      `gorm:"size:200;not null" json:"title"`
	Description  string      `gorm:"size:500;not null;default:''" json:"description"`
	LayoutType   string      `gorm:"size:50;not null" json:"layout_type"`
	VehicleIDs   StringArray `gorm:"type:jsonb;not null" json:"vehicle_ids"` // Допустимое подмножество каталога
	Rules        StringArray `gorm:"type:jsonb;not null" json:"rules"`       // Тексты правил для подсказок/обоснований
	PointValue   int         `gorm:"not null;default:100" json:"point_value"`
	IsActive     bool        `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (ScenarioTemplate) TableName() string {
	return "scenario_templates"
}
