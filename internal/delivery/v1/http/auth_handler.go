package http

import (
	"net/http"

	"github.com/DRSN-tech/cashier-backend/internal/usecase"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
)

type AuthHandler struct {
	authUsecase usecase.AuthUC
	logger      logger.Logger
}

func NewAuthHandler(authUsecase usecase.AuthUC, logger logger.Logger) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase, logger: logger}
}

// login
//
//	@Summary		Вход кассира
//	@Description	Проверяет логин и пароль, возвращает Bearer-токен на 6 часов
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		usecase.LoginReq							true	"Логин и пароль"
//	@Success		200		{object}	SuccessResponse{data=LoginResponse}	"Успешный вход"
//	@Failure		401		{object}	ErrorResponse								"Неверные учётные данные"
//	@Failure		422		{object}	ErrorResponse								"Ошибка валидации"
//	@Router			/login [post]
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.login"

	var req usecase.LoginReq
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, h.logger, op, err)
		return
	}

	res, err := h.authUsecase.Login(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, msgLoginSuccess, toLoginResponse(res))
}
