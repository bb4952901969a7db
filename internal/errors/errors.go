// errors стандартизирует ответы об ошибках HTTP-слоя.
// На вход он принимает ошибку доменного слоя (service/signer),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Редиректы на fallback (токен не найден/истёк) сюда не попадают —
// их хендлер погашения оформляет сам; здесь только «настоящие» ошибки.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-single-use-links/internal/service"
	"github.com/pribylovaa/go-single-use-links/internal/signer"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// APIError — единый формат ошибки для клиента.
// Code — короткий стабильный код для машиночитаемой обработки.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку доменного слоя в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil — это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг;
//   - ошибки валидации входа -> 400 с указанием, какой параметр плох;
//   - битая подпись ссылки -> 403;
//   - таймаут/отмена запроса -> 504/499;
//   - прочее (в т.ч. сбои хранилища и подписанта) -> 500/internal без деталей.
//     Сбой хранилища при погашении обязан попадать сюда, а не в редирект:
//     временная недоступность не должна выглядеть как «уже использовано».
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, response("internal", "internal error")
	}

	switch {
	case errors.Is(err, service.ErrEmptyResource):
		return http.StatusBadRequest, response("invalid_argument", "file parameter is required")
	case errors.Is(err, service.ErrInvalidLifetime):
		return http.StatusBadRequest, response("invalid_argument", "timeout parameter must be a positive integer")
	case errors.Is(err, service.ErrEmptyTokenID):
		return http.StatusBadRequest, response("invalid_argument", "id parameter is required")
	case errors.Is(err, service.ErrInvalidTokenID):
		return http.StatusBadRequest, response("invalid_argument", "id parameter is malformed")
	case errors.Is(err, signer.ErrBadSignature):
		return http.StatusForbidden, response("forbidden", "invalid signature")
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, response("deadline_exceeded", "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, response("canceled", "canceled")
	default:
		return http.StatusInternalServerError, response("internal", "internal error")
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	// Прокидываем request_id, чтобы клиент мог репортить проблемы с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func response(code, msg string) ErrorResponse {
	return ErrorResponse{Error: APIError{Code: code, Message: msg}}
}
