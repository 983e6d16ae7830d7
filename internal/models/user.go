package models

import "time"

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required" msg:"Name is required"`
	Email    string `json:"email" validate:"required,email" msg:"Please enter a valid email address"`
	Password string `json:"password" validate:"min=6" msg:"Password must be at least 6 characters"`
}

// UpdateProfileRequest is a partial profile update. Absent fields are left
// unchanged.
type UpdateProfileRequest struct {
	Name        *string `json:"name" validate:"omitnil,min=1" msg:"Name cannot be empty"`
	Email       *string `json:"email" validate:"omitnil,email" msg:"Please enter a valid email address"`
	ProfileImg  *string `json:"profile_img" validate:"omitzero,url" msg:"Profile image must be a valid URL"`
	Password    *string `json:"password" validate:"omitnil,min=6" msg:"Password must be at least 6 characters"`
	OldPassword *string `json:"oldPassword"`
}

// Profile is the public part of a user account
type Profile struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	ProfileImg *string `json:"profile_img"`
}

// UserView is a user account without credentials
type UserView struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	ProfileImg *string   `json:"profile_img"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ProfileUpdated is returned after a profile update
type ProfileUpdated struct {
	Message string   `json:"message"`
	User    UserView `json:"user"`
}

// UserCreated is returned after sign-up
type UserCreated struct {
	User        UserView `json:"user"`
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresAt   int64    `json:"expires_at"`
}

// View strips credentials from a user row
func (u User) View() UserView {
	return UserView{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		ProfileImg: u.ProfileImg,
		CreatedAt:  u.CreatedAt,
	}
}
