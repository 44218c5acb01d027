package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JoeShih716/go-bank-core/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-core/internal/app/bank/usecase"
)

// writeJSON 統一輸出成功回應
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeMessage 輸出 {"message": "..."} 形式的回應 (沿用既有 API 形狀)
func writeMessage(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"message": message})
}

// writeDomainError 把 domain 錯誤對應到 HTTP 狀態碼。
// 業務失敗 (Soft Failure) 走 400/403/404；儲存層失敗走 500。
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case usecase.IsNotFound(err):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAuthRequired), errors.Is(err, domain.ErrAuthCodeMismatch):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrAccountAlreadyExists):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, err.Error())
	}
}
