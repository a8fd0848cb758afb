package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kislikjeka/finpanel/internal/module/transactions"
	"github.com/kislikjeka/finpanel/internal/platform/flash"
	"github.com/kislikjeka/finpanel/internal/platform/transaction"
	apperrors "github.com/kislikjeka/finpanel/internal/shared/errors"
	"github.com/kislikjeka/finpanel/internal/transport/web/middleware"
	"github.com/kislikjeka/finpanel/pkg/logger"
)

// NewTransactionPath is where the "new transaction" links point
const NewTransactionPath = "/transactions/new"

// TransactionsHandler serves the transactions page and its actions. Every
// request drives the controller of the caller's session.
type TransactionsHandler struct {
	flashes flash.Store
	render  *Renderer
	logger  *logger.Logger
	now     func() time.Time
}

// NewTransactionsHandler creates a new transactions handler
func NewTransactionsHandler(flashes flash.Store, render *Renderer, log *logger.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		flashes: flashes,
		render:  render,
		logger:  log.WithField("component", "transactions_handler"),
		now:     time.Now,
	}
}

// MonthOption is one entry of the month selector
type MonthOption struct {
	Value    int
	Name     string
	Selected bool
}

// TransactionsPage is the data of transactions.html
type TransactionsPage struct {
	Title         string
	Email         string
	State         transactions.StateResponse
	Months        []MonthOption
	Years         []int
	Flashes       []flash.Message
	NewPath       string
	PeriodError   string
	IncomeTotal   string
	ExpenseTotal  string
	FilteredCount int
	SearchApplied bool
}

func (h *TransactionsHandler) session(w http.ResponseWriter, r *http.Request) (*middleware.Session, *transactions.Controller, bool) {
	sess, ok := middleware.SessionFromContext(r.Context())
	var ctrl *transactions.Controller
	if ok {
		ctrl = sess.Controller()
	}
	if ctrl == nil {
		if wantsJSON(r) {
			respondError(w, "sign in required", http.StatusUnauthorized)
		} else {
			redirect(w, r, "/login")
		}
		return nil, nil, false
	}
	return sess, ctrl, true
}

// actionContext keeps the request's values without its cancellation.
// Controller calls are bounded by the API client timeout instead.
func actionContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// parsePeriod reads year and month query parameters. Missing values keep
// the current period.
func parsePeriod(r *http.Request, current transaction.Period) (transaction.Period, bool, error) {
	q := r.URL.Query()
	if !q.Has("year") && !q.Has("month") {
		return current, false, nil
	}

	p := current
	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return current, false, apperrors.Validation("year must be a number")
		}
		p.Year = year
	}
	if v := q.Get("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil {
			return current, false, apperrors.Validation("month must be a number")
		}
		p.Month = month
	}
	if err := p.Validate(); err != nil {
		return current, false, apperrors.Validation(err.Error())
	}
	return p, p != current, nil
}

// sync applies the query to the controller: a period change refetches, a
// q parameter updates the search, and the first visit loads
func (h *TransactionsHandler) sync(r *http.Request, sess *middleware.Session, ctrl *transactions.Controller) error {
	period, changed, err := parsePeriod(r, ctrl.Period())
	if err != nil {
		return err
	}

	if r.URL.Query().Has("q") {
		ctrl.SetSearchText(r.URL.Query().Get("q"))
	}

	if changed {
		sess.MarkLoaded()
		return ctrl.SetPeriod(actionContext(r), period)
	}
	if !sess.MarkLoaded() {
		ctrl.Load(actionContext(r))
	}
	return nil
}

// GetPage handles GET /transactions
func (h *TransactionsHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	sess, ctrl, ok := h.session(w, r)
	if !ok {
		return
	}

	status := http.StatusOK
	periodErr := ""
	if err := h.sync(r, sess, ctrl); err != nil {
		status = apperrors.HTTPStatus(err)
		if appErr := apperrors.GetAppError(err); appErr != nil {
			periodErr = appErr.Message
		}
	}

	flashes, err := h.flashes.Pop(r.Context(), sess.ID())
	if err != nil {
		h.logger.WithContext(r.Context()).WithError(err).Warn("failed to read flash messages")
	}

	h.render.Render(w, r, status, "transactions.html", h.page(sess, ctrl.State(), flashes, periodErr))
}

func (h *TransactionsHandler) page(sess *middleware.Session, state transactions.ListState, flashes []flash.Message, periodErr string) TransactionsPage {
	resp := state.Response()
	income, expense := transactions.Totals(state.FilteredItems)

	months := make([]MonthOption, 0, 12)
	for m := 1; m <= 12; m++ {
		months = append(months, MonthOption{
			Value:    m,
			Name:     time.Month(m).String(),
			Selected: m == state.Period.Month,
		})
	}

	thisYear := h.now().Year()
	years := make([]int, 0, 6)
	for y := thisYear - 4; y <= thisYear+1; y++ {
		years = append(years, y)
	}
	if state.Period.Year < thisYear-4 || state.Period.Year > thisYear+1 {
		years = append([]int{state.Period.Year}, years...)
	}

	return TransactionsPage{
		Title:         "Transactions",
		Email:         sess.Email(),
		State:         resp,
		Months:        months,
		Years:         years,
		Flashes:       flashes,
		NewPath:       NewTransactionPath,
		PeriodError:   periodErr,
		IncomeTotal:   income,
		ExpenseTotal:  expense,
		FilteredCount: len(resp.Rows),
		SearchApplied: state.SearchText != "",
	}
}

// PostRetry handles POST /transactions/retry
func (h *TransactionsHandler) PostRetry(w http.ResponseWriter, r *http.Request) {
	sess, ctrl, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.MarkLoaded()
	ctrl.Retry(actionContext(r))

	if wantsJSON(r) {
		respondJSON(w, ctrl.State().Response(), http.StatusOK)
		return
	}
	redirect(w, r, "/transactions")
}

// PostDelete handles POST /transactions/{id}/delete
func (h *TransactionsHandler) PostDelete(w http.ResponseWriter, r *http.Request) {
	_, ctrl, ok := h.session(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		respondAppError(w, apperrors.Validation("transaction id is required"))
		return
	}

	deleted := ctrl.Delete(actionContext(r), id)

	if wantsJSON(r) {
		status := http.StatusOK
		if !deleted {
			status = http.StatusBadGateway
		}
		respondJSON(w, ctrl.State().Response(), status)
		return
	}
	redirect(w, r, "/transactions")
}

// GetState handles GET /transactions/state
func (h *TransactionsHandler) GetState(w http.ResponseWriter, r *http.Request) {
	sess, ctrl, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.sync(r, sess, ctrl); err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, ctrl.State().Response(), http.StatusOK)
}
