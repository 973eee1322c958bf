package dto

// RegisterRequest — запрос на регистрацию пользователя
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Language string `json:"language" binding:"omitempty,oneof=nb nn en"`
}

// LoginRequest — запрос на вход
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse — публичное представление пользователя
type UserResponse struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	Language       string `json:"language"`
	GamesPlayed    int64  `json:"games_played"`
	TotalXP        int64  `json:"total_xp"`
	HighestScore   int64  `json:"highest_score"`
}

// AuthResponse — ответ на успешную регистрацию или вход
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UpdateProfileRequest — запрос на обновление профиля
type UpdateProfileRequest struct {
	Username       string `json:"username" binding:"omitempty,min=3,max=30"`
	ProfilePicture string `json:"profile_picture" binding:"omitempty,max=255"`
	Language       string `json:"language" binding:"omitempty,oneof=nb nn en"`
}

// LeaderboardUserDTO — строка лидерборда
type LeaderboardUserDTO struct {
	Rank           int    `json:"rank"`
	UserID         uint   `json:"user_id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	TotalXP        int64  `json:"total_xp"`
	GamesPlayed    int64  `json:"games_played"`
	HighestScore   int64  `json:"highest_score"`
}

// PaginatedLeaderboardResponse — пагинированный лидерборд
type PaginatedLeaderboardResponse struct {
	Users    []*LeaderboardUserDTO `json:"users"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}
