package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/baharkarakas/betzone-api/internal/api/paging"
	"github.com/baharkarakas/betzone-api/internal/apperr"
	"github.com/baharkarakas/betzone-api/internal/metrics"
	"github.com/baharkarakas/betzone-api/internal/models"
	repo "github.com/baharkarakas/betzone-api/internal/repository"
)

type WalletService struct {
	profiles repo.Profiles
	payments repo.Payments
	txns     repo.Transactions
	notify   Notifier
	log      *zap.Logger
}

func NewWalletService(r repo.Repositories, n Notifier, log *zap.Logger) *WalletService {
	return &WalletService{profiles: r.Profiles, payments: r.Payments, txns: r.Transactions, notify: n, log: log}
}

func (s *WalletService) Summary(ctx context.Context, userID string) (models.WalletSummary, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return models.WalletSummary{}, err
	}
	pending, err := s.payments.PendingTotal(ctx, userID, models.PaymentWithdrawal)
	if err != nil {
		return models.WalletSummary{}, err
	}
	return models.WalletSummary{Balance: p.Balance, Currency: Currency, PendingWithdrawals: pending}, nil
}

func (s *WalletService) Transactions(ctx context.Context, userID string, f models.TransactionFilter, p paging.Params) (paging.Page[models.Transaction], error) {
	rows, total, err := s.txns.List(ctx, userID, f, p.PageSize, p.Offset())
	if err != nil {
		return paging.Page[models.Transaction]{}, err
	}
	return paging.NewPage(rows, total, p), nil
}

func (s *WalletService) Requests(ctx context.Context, userID string, f models.PaymentFilter, p paging.Params) (paging.Page[models.PaymentRequest], error) {
	f.UserID = userID
	rows, total, err := s.payments.List(ctx, f, p.PageSize, p.Offset())
	if err != nil {
		return paging.Page[models.PaymentRequest]{}, err
	}
	return paging.NewPage(rows, total, p), nil
}

type DepositInput struct {
	Amount    decimal.Decimal
	Method    string
	Reference string
}

// Deposit files a pending deposit request; money moves on admin approval.
func (s *WalletService) Deposit(ctx context.Context, userID string, in DepositInput) (models.PaymentRequest, error) {
	req := models.NewPaymentRequest{
		ID:     uuid.NewString(),
		UserID: userID,
		Kind:   models.PaymentDeposit,
		Amount: in.Amount,
		Method: in.Method,
		Status: models.PaymentPending,
	}
	if in.Reference != "" {
		req.Reference = &in.Reference
	}
	return s.create(ctx, req)
}

type WithdrawInput struct {
	Amount         decimal.Decimal
	Method         string
	AccountDetails string
}

// Withdraw files a pending withdrawal. The amount must be covered by the
// balance minus withdrawals already waiting for approval.
func (s *WalletService) Withdraw(ctx context.Context, userID string, in WithdrawInput) (models.PaymentRequest, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return models.PaymentRequest{}, err
	}
	pending, err := s.payments.PendingTotal(ctx, userID, models.PaymentWithdrawal)
	if err != nil {
		return models.PaymentRequest{}, err
	}
	if in.Amount.GreaterThan(p.Balance.Sub(pending)) {
		return models.PaymentRequest{}, apperr.Validation("Insufficient balance")
	}

	details := in.AccountDetails
	return s.create(ctx, models.NewPaymentRequest{
		ID:             uuid.NewString(),
		UserID:         userID,
		Kind:           models.PaymentWithdrawal,
		Amount:         in.Amount,
		Method:         in.Method,
		AccountDetails: &details,
		Status:         models.PaymentPending,
	})
}

func (s *WalletService) create(ctx context.Context, req models.NewPaymentRequest) (models.PaymentRequest, error) {
	out, err := s.payments.Create(ctx, req)
	if err != nil {
		return models.PaymentRequest{}, err
	}
	metrics.PaymentRequestsTotal.WithLabelValues(string(req.Kind)).Inc()
	s.log.Info("payment request created",
		zap.String("id", out.ID),
		zap.String("user_id", req.UserID),
		zap.String("kind", string(req.Kind)),
		zap.String("amount", req.Amount.StringFixed(2)),
	)
	s.notify.AlertAdmins(
		fmt.Sprintf("New %s request", req.Kind),
		fmt.Sprintf("%s %s via %s (request %s)", req.Amount.StringFixed(2), Currency, req.Method, out.ID),
	)
	return out, nil
}
