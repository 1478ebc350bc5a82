package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const maxBodySize = 1 << 20

const (
	msgOK            = "OK!"
	msgCreated       = "Success create!"
	msgUpdated       = "Success update!"
	msgDeleted       = "Success delete!"
	msgLoginSuccess  = "Login success!"
	msgInvalidID     = "ID must be a positive integer!"
	msgInvalidBody   = "Request body must be valid JSON!"
	msgUnauthorized  = "Unauthorized!"
	msgOrderCreated  = "Transaction created successfully"
	msgOrderDeleted  = "Success delete transaction"
	msgOrdersFetched = "Success get transaction"
)

// SuccessResponse: конверт успешного ответа.
type SuccessResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorItem: ошибка одного поля запроса.
type ErrorItem struct {
	ItemName string `json:"item_name"`
	Message  string `json:"message"`
}

// ErrorResponse: конверт ответа с ошибками.
type ErrorResponse struct {
	Errors []ErrorItem `json:"errors"`
}

func NewErrorResponse(items ...ErrorItem) *ErrorResponse {
	return &ErrorResponse{Errors: items}
}

// ToHTTPResponse классифицирует ошибку usecase-слоя. Внутренние ошибки не раскрываются клиенту.
func ToHTTPResponse(err error) (int, []ErrorItem) {
	code := statusFor(err)

	var verr *e.ValidationError
	if errors.As(err, &verr) && code != http.StatusInternalServerError && len(verr.Fields) > 0 {
		items := make([]ErrorItem, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			items = append(items, ErrorItem{ItemName: f.Field, Message: f.Message})
		}
		return code, items
	}

	switch code {
	case http.StatusUnauthorized:
		return code, []ErrorItem{{ItemName: "error", Message: msgUnauthorized}}
	case http.StatusInternalServerError:
		return code, []ErrorItem{{ItemName: "error", Message: e.ErrInternalServerError.Error()}}
	default:
		return code, []ErrorItem{{ItemName: "error", Message: http.StatusText(code)}}
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, e.ErrValidation),
		errors.Is(err, e.ErrInsufficientStock),
		errors.Is(err, e.ErrConflict):
		return http.StatusUnprocessableEntity
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, e.ErrUnauthorized), errors.Is(err, e.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, items := ToHTTPResponse(err)
	writeJSON(w, code, NewErrorResponse(items...))
}

func WriteSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, SuccessResponse{Status: status, Message: message, Data: data})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON читает тело запроса; любая ошибка разбора: ошибка валидации поля body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return e.NewFieldError(e.ErrValidation, "body", msgInvalidBody)
	}

	return nil
}

// parseID разбирает {id} из пути. Некорректный id: ошибка валидации, а не 404.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, e.NewFieldError(e.ErrValidation, "id", msgInvalidID)
	}

	return id, nil
}

// handleError пишет ответ с ошибкой; 500 логируется с причиной, остальное: на уровне debug.
func handleError(w http.ResponseWriter, log logger.Logger, op string, err error) {
	if statusFor(err) == http.StatusInternalServerError {
		log.Errorf(err, "%s", op)
	} else {
		log.Debugf("%s: %v", op, err)
	}
	WriteError(w, err)
}
