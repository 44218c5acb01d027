// Package http 是對外的 REST/JSON driving adapter。
// 每個 handler 只負責解析請求、呼叫 usecase、輸出 JSON，
// 不碰任何帳本狀態。
package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-bank-core/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-core/internal/app/bank/usecase"
)

type Server struct {
	transfers *usecase.TransferUseCase
	queries   *usecase.QueryUseCase
	users     *usecase.UserUseCase
}

func NewServer(transfers *usecase.TransferUseCase, queries *usecase.QueryUseCase, users *usecase.UserUseCase) *Server {
	return &Server{
		transfers: transfers,
		queries:   queries,
		users:     users,
	}
}

// Router 明確註冊所有路由 (非反射式)。路徑沿用既有 API。
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/register", s.register)
	mux.HandleFunc("POST /api/login", s.login)
	mux.HandleFunc("POST /api/change-password", s.changePassword)
	mux.HandleFunc("GET /api/user/{userId}", s.getUser)
	mux.HandleFunc("PUT /api/user/{userId}", s.updateUser)

	mux.HandleFunc("GET /api/accounts/{userId}", s.listAccounts)
	mux.HandleFunc("GET /api/verify-account/{accountNumber}", s.verifyAccount)

	mux.HandleFunc("POST /api/transactions", s.createTransaction)
	mux.HandleFunc("GET /api/transactions/{userId}", s.listTransactions)

	mux.HandleFunc("GET /api/notifications/{userId}", s.listNotifications)
	mux.HandleFunc("GET /api/notifications/{userId}/unread-count", s.unreadCount)
	mux.HandleFunc("PUT /api/notifications/{notificationId}/read", s.markNotificationRead)

	mux.HandleFunc("GET /api/admin/users", s.adminListUsers)
	mux.HandleFunc("PUT /api/admin/user/{userId}", s.adminUpdateUser)
	mux.HandleFunc("POST /api/admin/fund-account", s.adminFund)
	mux.HandleFunc("POST /api/admin/debit-account", s.adminDebit)
	mux.HandleFunc("GET /api/admin/accounts-summary", s.adminSummary)

	return mux
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
		Password  string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Phone == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	result, err := s.users.Register(r.Context(), usecase.RegisterParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Registration successful",
		"token":   result.Token,
		"userId":  result.UserID,
		"user": map[string]string{
			"firstName": result.User.FirstName,
			"lastName":  result.User.LastName,
			"email":     result.User.Email,
		},
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password required")
		return
	}

	result, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := map[string]any{
		"message": "Login successful",
		"token":   result.Token,
		"userId":  result.UserID,
		"user": map[string]string{
			"firstName": result.User.FirstName,
			"lastName":  result.User.LastName,
			"email":     result.User.Email,
			"status":    result.User.Status,
		},
	}
	if result.IsAdmin {
		resp["message"] = "Admin login successful"
		resp["isAdmin"] = true
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID          string `json:"userId"`
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" || req.CurrentPassword == "" || req.NewPassword == "" {
		writeMessage(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	if err := s.users.ChangePassword(r.Context(), req.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password changed successfully")
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetUser(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	// 不洩漏 PasswordHash
	writeJSON(w, http.StatusOK, map[string]any{
		"userId":           user.UserID,
		"firstName":        user.FirstName,
		"lastName":         user.LastName,
		"email":            user.Email,
		"phone":            user.Phone,
		"status":           user.Status,
		"profilePhoto":     user.ProfilePhoto,
		"adminNote":        user.AdminNote,
		"createdAt":        user.CreatedAt,
		"authVerification": user.AuthVerification,
	})
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Phone     string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), r.PathValue("userId"), req.FirstName, req.LastName, req.Phone)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "User updated", "user": user})
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.queries.ListAccountsForUser(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if accounts == nil {
		accounts = []*domain.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) verifyAccount(w http.ResponseWriter, r *http.Request) {
	result, err := s.queries.VerifyAccount(r.Context(), r.PathValue("accountNumber"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FromAccountID   string          `json:"fromAccountId"`
		ToAccountNumber string          `json:"toAccountNumber"`
		Amount          decimal.Decimal `json:"amount"`
		Type            string          `json:"type"`
		Description     string          `json:"description"`
		AuthCode        *string         `json:"authCode"`
		RefID           string          `json:"refId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid transaction data")
		return
	}

	refID := uuid.Nil
	if req.RefID != "" {
		parsed, err := uuid.Parse(req.RefID)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid refId: "+err.Error())
			return
		}
		refID = parsed
	}

	tran, err := s.transfers.CreateTransfer(r.Context(), usecase.TransferRequest{
		FromAccountID:   req.FromAccountID,
		ToAccountNumber: req.ToAccountNumber,
		Amount:          req.Amount,
		Type:            domain.TransactionType(req.Type),
		Description:     req.Description,
		AuthCode:        req.AuthCode,
		RefID:           refID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "Transaction successful",
		"transaction": tran,
	})
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	trans, err := s.queries.ListTransactionsForUser(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if trans == nil {
		trans = []*domain.EnrichedTransaction{}
	}
	writeJSON(w, http.StatusOK, trans)
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	notes, err := s.queries.ListNotifications(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if notes == nil {
		notes = []*domain.Notification{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (s *Server) unreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.queries.UnreadCount(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unreadCount": count})
}

func (s *Server) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := s.queries.MarkNotificationRead(r.Context(), r.PathValue("notificationId")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Notification marked as read")
}

func (s *Server) adminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListUsers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(users))
	for _, u := range users {
		out = append(out, map[string]any{
			"userId":           u.UserID,
			"firstName":        u.FirstName,
			"lastName":         u.LastName,
			"email":            u.Email,
			"phone":            u.Phone,
			"status":           u.Status,
			"createdAt":        u.CreatedAt,
			"adminNote":        u.AdminNote,
			"authVerification": u.AuthVerification,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) adminUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status           *string                  `json:"status"`
		AdminNote        *string                  `json:"adminNote"`
		AuthVerification *domain.AuthVerification `json:"authVerification"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.AdminUpdateUser(r.Context(), r.PathValue("userId"), usecase.AdminUpdateParams{
		Status:           req.Status,
		AdminNote:        req.AdminNote,
		AuthVerification: req.AuthVerification,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "User updated", "user": user})
}

func (s *Server) adminFund(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountNumber string          `json:"accountNumber"`
		Amount        decimal.Decimal `json:"amount"`
		Description   string          `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid funding data")
		return
	}

	account, err := s.transfers.AdminFund(r.Context(), req.AccountNumber, req.Amount, req.Description)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Account funded successfully",
		"account": account,
	})
}

func (s *Server) adminDebit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountNumber string          `json:"accountNumber"`
		Amount        decimal.Decimal `json:"amount"`
		Note          string          `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid debit data")
		return
	}

	account, err := s.transfers.AdminDebit(r.Context(), req.AccountNumber, req.Amount, req.Note)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Account debited successfully",
		"account": account,
	})
}

func (s *Server) adminSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.queries.Summary(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
