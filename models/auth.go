package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quiz_app_backend/quiz"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,quizrole"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type Claims struct {
	UserID int    `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type UserProfile struct {
	ID       int            `json:"id"`
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Role     string         `json:"role"`
	Progress *quiz.Progress `json:"progress,omitempty"`
}

type AuthResponse struct {
	TokenPair
	User UserProfile `json:"user"`
}

func (u User) Profile() UserProfile {
	return UserProfile{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
