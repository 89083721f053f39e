package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Maxiflexy/MonieBank/internal/config"
	"github.com/Maxiflexy/MonieBank/internal/dtos"
	"github.com/Maxiflexy/MonieBank/internal/services"
	"github.com/Maxiflexy/MonieBank/internal/utils"
)

type UserController struct {
	authService services.AuthService
	cfg         *config.Config
}

func NewUserController(authService services.AuthService, cfg *config.Config) *UserController {
	return &UserController{authService: authService, cfg: cfg}
}

func (c *UserController) Me(w http.ResponseWriter, r *http.Request) {
	codec := utils.NewFieldCodec(c.cfg.FieldEncryptionKey, w, r)

	accessToken, err := extractAccessToken(r, c.cfg.TokenCarrier)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No valid authentication found", nil, err,
		)
		return
	}

	user, err := c.authService.CurrentUser(r.Context(), accessToken)
	if err != nil {
		respondTokenError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, toUserResponse(user, codec))
}

// GetUserByID returns a minimal identity for internal services.
func (c *UserController) GetUserByID(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["userId"]
	id, err := uuid.Parse(idStr)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid user id", nil, err,
		)
		return
	}

	user, err := c.authService.GetUserByID(r.Context(), id)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to load user", nil, err,
		)
		return
	}
	if user == nil {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound, "User not found", nil,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.MinimalUserResponse{
		UserID: user.ID.String(),
		Name:   user.Name,
		Email:  user.Email,
	})
}

func (c *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	codec := utils.NewFieldCodec(c.cfg.FieldEncryptionKey, w, r)

	accessToken, err := extractAccessToken(r, c.cfg.TokenCarrier)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No valid authentication found", nil, err,
		)
		return
	}

	var req dtos.ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	req.Name = codec.Decode(req.Name)
	req.ContactAddress = codec.Decode(req.ContactAddress)

	if err := authValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid profile payload", nil, err,
		)
		return
	}

	user, err := c.authService.UpdateProfile(r.Context(), accessToken, req.Name, req.ContactAddress)
	if err != nil {
		respondTokenError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, toUserResponse(user, codec))
}

// respondTokenError maps validation failures of the presented access
// token onto the standard error codes.
func respondTokenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, utils.ErrTokenExpired):
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeTokenExpired, "Token expired", nil, err,
		)
	case errors.Is(err, utils.ErrTokenRevoked):
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeTokenRevoked, "Token has been revoked", nil, err,
		)
	case errors.Is(err, utils.ErrTokenMalformed), errors.Is(err, utils.ErrTokenWrongType):
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid token", nil, err,
		)
	case errors.Is(err, utils.ErrUserNotFound):
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound, "User not found", nil, err,
		)
	default:
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Request failed", nil, err,
		)
	}
}
