package models

import (
	"time"

	"github.com/akunpubgmatin-arch/e-voting-v1/storage"
)

type UserCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

type UserResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"fullName"`
	Role         string    `json:"role"`
	HasVotedOsis bool      `json:"hasVotedOsis"`
	HasVotedMpk  bool      `json:"hasVotedMpk"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

type ImportUserEntry struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type ImportUsersRequest struct {
	Users []ImportUserEntry `json:"users"`
}

type ImportUsersResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
	Skipped int    `json:"skipped"`
}

func TransformUserFromStorage(u *storage.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		FullName:     u.FullName,
		Role:         u.Role,
		HasVotedOsis: u.HasVotedOsis,
		HasVotedMpk:  u.HasVotedMpk,
		CreatedAt:    u.CreatedAt,
	}
}
