package controllers

import (
	"net/http"
	"time"

	"bootcamp-api/middleware"
	"bootcamp-api/services"
	"bootcamp-api/utils"
)

// UserController handles user-related requests
type UserController struct {
	Service *services.UserService
	Timeout time.Duration
}

func NewUserController(service *services.UserService, timeout time.Duration) *UserController {
	return &UserController{Service: service, Timeout: timeout}
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := decodeJSON(w, r, &input); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r, uc.Timeout)
	defer cancel()

	user, token, err := uc.Service.Register(ctx, input)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.Envelope{Success: true, Token: token, Data: user})
}

// GetMe returns the user identified by the bearer token
func (uc *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		utils.WriteError(w, r, utils.Unauthorized())
		return
	}

	ctx, cancel := requestContext(r, uc.Timeout)
	defer cancel()

	user, err := uc.Service.Get(ctx, claims.UserID)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Respond(w, http.StatusOK, user)
}
