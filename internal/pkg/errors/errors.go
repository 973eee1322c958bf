package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (например, дубликат результата игры).
	ErrConflict = errors.New("resource state conflict")
)

// Ошибки игрового движка. Сервисы оборачивают их через fmt.Errorf("...: %w"),
// обработчики сопоставляют с HTTP-кодами через errors.Is.
var (
	// ErrSessionNotFound возвращается для операций над завершенной,
	// истекшей или неизвестной игровой сессией.
	ErrSessionNotFound = errors.New("game session not found")

	// ErrUnknownAction возвращается для неподдерживаемого типа действия.
	// Состояние сессии при этом не меняется.
	ErrUnknownAction = errors.New("unknown action type")

	// ErrNoScenariosAvailable возвращается, когда источник шаблонов сценариев
	// не вернул ни одного активного шаблона. Повтор без смены данных бессмыслен.
	ErrNoScenariosAvailable = errors.New("no scenarios available")

	// ErrUnknownGame возвращается, когда game_id не зарегистрирован в реестре игр.
	ErrUnknownGame = errors.New("unknown game")
)
