package api

import (
	"net/http"

	"github.com/SigNoz/storefront-go-app/internal/models"
)

// CreateUserHandler handles POST /api/v1/users and returns an access token
// for the new account
func (a *App) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := a.services.Users.CreateUser(r.Context(), &req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	token, expiresAt, err := a.tokens.Generate(user.ID, user.Email)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.UserCreated{
		User:        user.View(),
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.Unix(),
	})
}

// GetProfileHandler handles GET /api/v1/user/profile
func (a *App) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := a.services.Users.GetProfile(r.Context(), userID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfileHandler handles PUT /api/v1/user/profile
func (a *App) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := a.services.Users.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ProfileUpdated{
		Message: "Profile updated successfully",
		User:    *user,
	})
}
