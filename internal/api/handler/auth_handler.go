package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/yamdb-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type signupRequest struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
}

type signupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type tokenRequest struct {
	Username         string `json:"username" validate:"required,max=150,username"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

type tokenResponse struct {
	Access string `json:"access"`
}

// Signup registers a user, or re-sends the code to an existing one.
//
// @Summary      Sign up
// @Description  Creates the user when needed and mails a confirmation code. Repeating the call with the same username and email re-sends a code.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Username and email"
// @Success      200   {object}  signupResponse
// @Failure      400   {object}  map[string][]string
// @Router       /auth/signup/ [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Signup(c.Request().Context(), req.Username, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, signupResponse{Username: res.Username, Email: res.Email})
}

// Token exchanges a confirmation code for an access token.
//
// @Summary      Obtain an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      tokenRequest  true  "Username and confirmation code"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /auth/token/ [post]
func (h *AuthHandler) Token(c echo.Context) error {
	var req tokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.authService.CreateToken(c.Request().Context(), req.Username, req.ConfirmationCode)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenResponse{Access: token})
}
