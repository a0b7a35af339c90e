package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/betzone-api/internal/api/httpx"
	"github.com/baharkarakas/betzone-api/internal/api/paging"
	"github.com/baharkarakas/betzone-api/internal/middleware"
	"github.com/baharkarakas/betzone-api/internal/models"
	"github.com/baharkarakas/betzone-api/internal/services"
)

const (
	transactionsPageSize = 15
	requestsPageSize     = 10
)

type WalletHandler struct {
	svc *services.WalletService
}

func NewWalletHandler(svc *services.WalletService) *WalletHandler {
	return &WalletHandler{svc: svc}
}

type depositReq struct {
	Amount    decimal.Decimal `json:"amount" validate:"required,min=10,max=100000"`
	Method    string          `json:"method" validate:"required,max=50"`
	Reference string          `json:"reference" validate:"required,max=100"`
}

type withdrawReq struct {
	Amount         decimal.Decimal `json:"amount" validate:"required,gt=0,max=100000"`
	Method         string          `json:"method" validate:"required,max=50"`
	AccountDetails string          `json:"accountDetails" validate:"required,max=500"`
}

func (h *WalletHandler) Summary(w http.ResponseWriter, r *http.Request) error {
	sum, err := h.svc.Summary(r.Context(), middleware.Caller(r).Profile.ID)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, sum)
	return nil
}

func (h *WalletHandler) Transactions(w http.ResponseWriter, r *http.Request) error {
	p, err := paging.Parse(r, transactionsPageSize)
	if err != nil {
		return err
	}
	var f models.TransactionFilter
	if f.Type, err = enumQuery(r, "type",
		string(models.TxnDeposit), string(models.TxnWithdrawal), string(models.TxnBet), string(models.TxnPayout),
		string(models.TxnRefund), string(models.TxnReferralBonus), string(models.TxnAdjustment)); err != nil {
		return err
	}
	if f.From, f.To, err = dateRange(r); err != nil {
		return err
	}
	page, err := h.svc.Transactions(r.Context(), middleware.Caller(r).Profile.ID, f, p)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, page)
	return nil
}

func (h *WalletHandler) Requests(w http.ResponseWriter, r *http.Request) error {
	p, err := paging.Parse(r, requestsPageSize)
	if err != nil {
		return err
	}
	f, err := paymentFilter(r)
	if err != nil {
		return err
	}
	f.UserID = middleware.Caller(r).Profile.ID
	page, err := h.svc.Requests(r.Context(), f.UserID, f, p)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, http.StatusOK, page)
	return nil
}

func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) error {
	var req depositReq
	if err := httpx.Bind(r, &req); err != nil {
		return err
	}
	pr, err := h.svc.Deposit(r.Context(), middleware.Caller(r).Profile.ID, services.DepositInput{
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
	})
	if err != nil {
		return err
	}
	httpx.OK(w, http.StatusCreated, map[string]any{"request": pr})
	return nil
}

func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) error {
	var req withdrawReq
	if err := httpx.Bind(r, &req); err != nil {
		return err
	}
	pr, err := h.svc.Withdraw(r.Context(), middleware.Caller(r).Profile.ID, services.WithdrawInput{
		Amount:         req.Amount,
		Method:         req.Method,
		AccountDetails: req.AccountDetails,
	})
	if err != nil {
		return err
	}
	httpx.OK(w, http.StatusCreated, map[string]any{"request": pr})
	return nil
}

func paymentFilter(r *http.Request) (models.PaymentFilter, error) {
	var (
		f   models.PaymentFilter
		err error
	)
	if f.Kind, err = enumQuery(r, "kind", string(models.PaymentDeposit), string(models.PaymentWithdrawal)); err != nil {
		return f, err
	}
	f.Status, err = enumQuery(r, "status", string(models.PaymentPending), string(models.PaymentApproved), string(models.PaymentRejected))
	return f, err
}
