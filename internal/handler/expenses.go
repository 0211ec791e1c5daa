package handler

import (
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pennywise/internal/domain"
)

// API serves the thin CRUD surface over stored expenses plus the admin
// premium toggle. It is guarded by a static bearer token; with no token
// configured the whole surface is disabled.
type API struct {
	token    string
	users    domain.UserStore
	expenses domain.ExpenseStore
}

func NewAPI(token string, users domain.UserStore, expenses domain.ExpenseStore) *API {
	return &API{token: token, users: users, expenses: expenses}
}

func (a *API) authorized(r *http.Request) bool {
	if a.token == "" {
		return false
	}
	header := r.Header.Get("Authorization")
	provided := strings.TrimPrefix(header, "Bearer ")
	return subtle.ConstantTimeCompare([]byte(provided), []byte(a.token)) == 1
}

func (a *API) guard(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	if !a.authorized(r) {
		httpError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	waID := r.URL.Query().Get("wa_id")
	if waID == "" {
		httpError(w, http.StatusBadRequest, "missing wa_id")
		return nil, false
	}
	user, err := a.users.GetByWaID(r.Context(), waID)
	if errors.Is(err, sql.ErrNoRows) {
		httpError(w, http.StatusNotFound, "unknown wa_id")
		return nil, false
	}
	if err != nil {
		log.Printf("load user %s: %v", waID, err)
		httpError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	return user, true
}

// List handles GET /api/expenses?wa_id=...&limit=&offset=&category=
func (a *API) List(w http.ResponseWriter, r *http.Request) {
	user, ok := a.guard(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := domain.ExpenseFilter{
		Category: q.Get("category"),
		Limit:    intParam(q.Get("limit"), 50),
		Offset:   intParam(q.Get("offset"), 0),
	}

	expenses, err := a.expenses.ListByUser(r.Context(), user.ID, filter)
	if err != nil {
		log.Printf("list expenses for %s: %v", user.WaID, err)
		httpError(w, http.StatusInternalServerError, "internal error")
		return
	}

	items := make([]expenseJSON, 0, len(expenses))
	for _, e := range expenses {
		items = append(items, toExpenseJSON(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type expenseUpdate struct {
	Amount      *float64 `json:"amount"`
	Currency    *string  `json:"currency"`
	Category    *string  `json:"category"`
	Merchant    *string  `json:"merchant"`
	Notes       *string  `json:"notes"`
	ExpenseDate *string  `json:"expense_date"`
}

// Update handles PATCH /api/expenses/{id}?wa_id=...
func (a *API) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := a.guard(w, r)
	if !ok {
		return
	}

	expense, ok := a.ownedExpense(w, r, user)
	if !ok {
		return
	}

	var body expenseUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if body.Amount != nil {
		amount := decimal.NewFromFloat(*body.Amount)
		if !amount.IsPositive() {
			httpError(w, http.StatusBadRequest, "amount must be positive")
			return
		}
		expense.Amount = amount
	}
	if body.Currency != nil {
		expense.Currency = strings.ToUpper(strings.TrimSpace(*body.Currency))
		if expense.Currency == "" {
			httpError(w, http.StatusBadRequest, "currency must not be empty")
			return
		}
	}
	if body.Category != nil {
		expense.Category = *body.Category
	}
	if body.Merchant != nil {
		expense.Merchant = *body.Merchant
	}
	if body.Notes != nil {
		expense.Notes = *body.Notes
	}
	if body.ExpenseDate != nil {
		day, err := time.Parse("2006-01-02", *body.ExpenseDate)
		if err != nil {
			httpError(w, http.StatusBadRequest, "expense_date must be YYYY-MM-DD")
			return
		}
		expense.ExpenseDate = day
	}

	if err := a.expenses.Update(r.Context(), expense); err != nil {
		log.Printf("update expense %s: %v", expense.ID, err)
		httpError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(*expense))
}

// Delete handles DELETE /api/expenses/{id}?wa_id=...
func (a *API) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := a.guard(w, r)
	if !ok {
		return
	}

	expense, ok := a.ownedExpense(w, r, user)
	if !ok {
		return
	}

	if err := a.expenses.Delete(r.Context(), user.ID, expense.ID); err != nil {
		log.Printf("delete expense %s: %v", expense.ID, err)
		httpError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type premiumToggle struct {
	WaID      string `json:"wa_id"`
	IsPremium bool   `json:"is_premium"`
}

// SetPremium handles POST /api/admin/premium.
func (a *API) SetPremium(w http.ResponseWriter, r *http.Request) {
	if !a.authorized(r) {
		httpError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body premiumToggle
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.WaID == "" {
		httpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err := a.users.SetPremium(r.Context(), body.WaID, body.IsPremium)
	if errors.Is(err, sql.ErrNoRows) {
		httpError(w, http.StatusNotFound, "unknown wa_id")
		return
	}
	if err != nil {
		log.Printf("set premium for %s: %v", body.WaID, err)
		httpError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"wa_id": body.WaID, "is_premium": body.IsPremium})
}

func (a *API) ownedExpense(w http.ResponseWriter, r *http.Request, user *domain.User) (*domain.Expense, bool) {
	id := r.PathValue("id")
	expense, err := a.expenses.GetByID(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && expense.UserID != user.ID) {
		httpError(w, http.StatusNotFound, "expense not found")
		return nil, false
	}
	if err != nil {
		log.Printf("load expense %s: %v", id, err)
		httpError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	return expense, true
}

type expenseJSON struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	Merchant    string  `json:"merchant,omitempty"`
	Notes       string  `json:"notes,omitempty"`
	ExpenseDate string  `json:"expense_date"`
	CreatedAt   string  `json:"created_at"`
}

func toExpenseJSON(e domain.Expense) expenseJSON {
	return expenseJSON{
		ID:          e.ID,
		UserID:      e.UserID,
		Amount:      e.Amount.InexactFloat64(),
		Currency:    e.Currency,
		Category:    e.Category,
		Merchant:    e.Merchant,
		Notes:       e.Notes,
		ExpenseDate: e.ExpenseDate.Format("2006-01-02"),
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
