// AngelaMos | 2026
// service.go

package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/notification"
	"github.com/carterperez-dev/classifieds/internal/realtime"
	"github.com/carterperez-dev/classifieds/internal/settings"
)

const DefaultSubscriptionPeriod = 30 * 24 * time.Hour

type PlanSource interface {
	Plan(ctx context.Context, tier string) (settings.Plan, error)
	BankAccount(ctx context.Context) (settings.BankAccount, error)
}

type Deps struct {
	DB       core.TxRunner
	Repo     Repository
	RepoFor  func(core.DBTX) Repository
	Plans    PlanSource
	Notifier notification.Notifier
	Broker   realtime.Broker
	Meter    metric.Meter
	Logger   *slog.Logger
	Period   time.Duration
}

type Service struct {
	db       core.TxRunner
	repo     Repository
	repoFor  func(core.DBTX) Repository
	plans    PlanSource
	notifier notification.Notifier
	broker   realtime.Broker
	metrics  *metrics
	logger   *slog.Logger
	period   time.Duration
	now      func() time.Time
}

func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Period <= 0 {
		d.Period = DefaultSubscriptionPeriod
	}
	if d.RepoFor == nil {
		d.RepoFor = NewRepository
	}

	return &Service{
		db:       d.DB,
		repo:     d.Repo,
		repoFor:  d.RepoFor,
		plans:    d.Plans,
		notifier: d.Notifier,
		broker:   d.Broker,
		metrics:  newMetrics(d.Meter),
		logger:   d.Logger,
		period:   d.Period,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RequestDeposit records a pending bank-transfer deposit. There is no
// idempotency key: repeating the call creates another pending record.
func (s *Service) RequestDeposit(
	ctx context.Context,
	userID string,
	amount int64,
	method, reference string,
) (*Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("deposit amount must be positive: %w", core.ErrInvalidInput)
	}
	if method == "" {
		method = MethodBankTransfer
	}

	t := &Transaction{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      TypeDeposit,
		Amount:    amount,
		Method:    method,
		Reference: reference,
		Status:    StatusPending,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.metrics.recordRequested(ctx, TypeDeposit)
	s.logger.Info("deposit requested",
		"transaction_id", t.ID,
		"user_id", userID,
		"amount", amount,
	)

	return t, nil
}

// RequestSubscriptionTransfer records a pending bank transfer that buys
// tier once approved. The price is stored as declared for the admin to
// match against the incoming transfer.
func (s *Service) RequestSubscriptionTransfer(
	ctx context.Context,
	userID, tier string,
	price int64,
	reference string,
) (*Transaction, error) {
	if !core.IsPaidTier(tier) {
		return nil, fmt.Errorf("tier %q is not purchasable: %w", tier, core.ErrInvalidInput)
	}
	if price <= 0 {
		return nil, fmt.Errorf("price must be positive: %w", core.ErrInvalidInput)
	}

	t := &Transaction{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      TypeSubscription,
		Amount:    price,
		Method:    MethodBankTransfer,
		Tier:      tier,
		Reference: reference,
		Status:    StatusPending,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.metrics.recordRequested(ctx, TypeSubscription)
	s.logger.Info("subscription transfer requested",
		"transaction_id", t.ID,
		"user_id", userID,
		"tier", tier,
		"price", price,
	)

	return t, nil
}

// ApproveTransaction applies a pending transaction's effect exactly once.
// The transaction and user rows are locked for the duration, so a second
// approval, concurrent or not, observes the terminal status and fails with
// ErrAlreadyProcessed.
func (s *Service) ApproveTransaction(
	ctx context.Context,
	txID, adminID string,
) (*Transaction, error) {
	ctx, span := core.StartSpan(ctx, "wallet.ApproveTransaction",
		attribute.String("transaction.id", txID),
	)
	defer span.End()

	var approved *Transaction
	err := s.db.InTx(ctx, func(dbtx core.DBTX) error {
		repo := s.repoFor(dbtx)

		t, err := repo.GetForUpdate(ctx, txID)
		if err != nil {
			return err
		}
		if !t.IsPending() {
			return ErrAlreadyProcessed
		}

		account, err := repo.AccountForUpdate(ctx, t.UserID)
		if err != nil {
			return err
		}

		now := s.now()

		switch t.Type {
		case TypeDeposit:
			if err := repo.Credit(ctx, account.UserID, t.Amount); err != nil {
				return err
			}
		case TypeSubscription:
			expires := now.Add(s.period)
			if err := repo.SetSubscription(ctx, account.UserID, t.Tier, &expires); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %s", ErrNotApprovable, t.Type)
		}

		if err := repo.MarkProcessed(ctx, t.ID, StatusSuccess, adminID, "", now); err != nil {
			return err
		}

		t.Status = StatusSuccess
		t.ProcessedBy = &adminID
		t.ProcessedAt = &now
		t.UpdatedAt = now
		approved = t

		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("transaction.type", approved.Type),
		attribute.String("user.id", approved.UserID),
	)

	s.metrics.recordProcessed(ctx, approved.Type, StatusSuccess)
	if approved.Type == TypeDeposit {
		s.metrics.credited.Add(ctx, approved.Amount)
	}

	s.logger.Info("transaction approved",
		"transaction_id", approved.ID,
		"type", approved.Type,
		"user_id", approved.UserID,
		"admin_id", adminID,
	)

	s.announce(ctx, approved)

	return approved, nil
}

// RejectTransaction fails a pending transaction. Only pending rows are
// touched: rejecting a settled transaction returns ErrAlreadyProcessed
// and cannot undo or race an approval.
func (s *Service) RejectTransaction(
	ctx context.Context,
	txID, adminID, note string,
) (*Transaction, error) {
	ctx, span := core.StartSpan(ctx, "wallet.RejectTransaction",
		attribute.String("transaction.id", txID),
	)
	defer span.End()

	var rejected *Transaction
	err := s.db.InTx(ctx, func(dbtx core.DBTX) error {
		repo := s.repoFor(dbtx)

		t, err := repo.GetForUpdate(ctx, txID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := repo.MarkProcessed(ctx, t.ID, StatusFailed, adminID, note, now); err != nil {
			return err
		}

		t.Status = StatusFailed
		t.Note = note
		t.ProcessedBy = &adminID
		t.ProcessedAt = &now
		t.UpdatedAt = now
		rejected = t

		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.metrics.recordProcessed(ctx, rejected.Type, StatusFailed)
	s.logger.Info("transaction rejected",
		"transaction_id", rejected.ID,
		"type", rejected.Type,
		"user_id", rejected.UserID,
		"admin_id", adminID,
	)

	s.announce(ctx, rejected)

	return rejected, nil
}

// PurchaseSubscription pays for a tier from the wallet balance. Buying the
// tier already held extends from the current expiry.
func (s *Service) PurchaseSubscription(
	ctx context.Context,
	userID, tier string,
) (*Transaction, error) {
	if !core.IsPaidTier(tier) {
		return nil, fmt.Errorf("tier %q is not purchasable: %w", tier, core.ErrInvalidInput)
	}

	plan, err := s.plans.Plan(ctx, tier)
	if err != nil {
		return nil, err
	}

	var purchase *Transaction
	err = s.db.InTx(ctx, func(dbtx core.DBTX) error {
		repo := s.repoFor(dbtx)

		account, err := repo.AccountForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if account.Balance < plan.Price {
			return fmt.Errorf("purchase %s: %w", tier, core.ErrInsufficientFunds)
		}

		now := s.now()
		start := now
		if account.Tier == tier &&
			account.SubscriptionExpiresAt != nil &&
			account.SubscriptionExpiresAt.After(now) {
			start = *account.SubscriptionExpiresAt
		}
		expires := start.Add(s.period)

		if plan.Price > 0 {
			if err := repo.Debit(ctx, userID, plan.Price); err != nil {
				return err
			}
		}
		if err := repo.SetSubscription(ctx, userID, tier, &expires); err != nil {
			return err
		}

		purchase, err = s.settled(ctx, repo, userID, TypePurchase, plan.Price, tier, "", now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.recordRequested(ctx, TypePurchase)
	s.metrics.debited.Add(ctx, plan.Price)
	s.logger.Info("subscription purchased from wallet",
		"user_id", userID,
		"tier", tier,
		"price", plan.Price,
	)

	return purchase, nil
}

// ChargeInTx debits amount inside the caller's transaction and records a
// settled wallet movement. Used by features paid from the balance.
func (s *Service) ChargeInTx(
	ctx context.Context,
	dbtx core.DBTX,
	userID, txType string,
	amount int64,
	reference string,
) (*Transaction, error) {
	if amount < 0 {
		return nil, fmt.Errorf("charge amount must not be negative: %w", core.ErrInvalidInput)
	}

	repo := s.repoFor(dbtx)

	if _, err := repo.AccountForUpdate(ctx, userID); err != nil {
		return nil, err
	}
	if amount > 0 {
		if err := repo.Debit(ctx, userID, amount); err != nil {
			return nil, err
		}
	}

	t, err := s.settled(ctx, repo, userID, txType, amount, "", reference, s.now())
	if err != nil {
		return nil, err
	}

	s.metrics.recordRequested(ctx, txType)
	s.metrics.debited.Add(ctx, amount)

	return t, nil
}

func (s *Service) settled(
	ctx context.Context,
	repo Repository,
	userID, txType string,
	amount int64,
	tier, reference string,
	at time.Time,
) (*Transaction, error) {
	t := &Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Method:      MethodWallet,
		Tier:        tier,
		Reference:   reference,
		Status:      StatusSuccess,
		ProcessedAt: &at,
	}
	if err := repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Get(
	ctx context.Context,
	id, requesterID string,
	admin bool,
) (*Transaction, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin && t.UserID != requesterID {
		// Do not reveal other users' transaction ids.
		return nil, ErrTransactionNotFound
	}
	return t, nil
}

func (s *Service) History(
	ctx context.Context,
	userID string,
	page core.PageParams,
) ([]Transaction, int, error) {
	return s.repo.List(ctx, ListParams{UserID: userID, PageParams: page})
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Transaction, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) CountPending(ctx context.Context) (int, error) {
	return s.repo.CountPending(ctx)
}

func (s *Service) BankInstructions(ctx context.Context) (settings.BankAccount, error) {
	return s.plans.BankAccount(ctx)
}

// announce runs after commit; failures here never undo the decision.
func (s *Service) announce(ctx context.Context, t *Transaction) {
	if s.broker != nil {
		err := realtime.PublishJSON(ctx, s.broker,
			realtime.UserTopic(t.UserID),
			realtime.EventTransactionUpdated,
			t,
		)
		if err != nil {
			s.logger.Warn("publish transaction update",
				"transaction_id", t.ID,
				"error", err,
			)
		}
	}

	if s.notifier == nil {
		return
	}

	in := notification.Input{
		UserID: t.UserID,
		Link:   "/wallet/transactions/" + t.ID,
	}
	switch t.Status {
	case StatusSuccess:
		in.Type = notification.TypeTransactionApproved
		in.Title = "Payment confirmed"
		in.Body = describe(t) + " has been approved."
	case StatusFailed:
		in.Type = notification.TypeTransactionRejected
		in.Title = "Payment rejected"
		in.Body = describe(t) + " was rejected."
		if t.Note != "" {
			in.Body += " " + t.Note
		}
	default:
		return
	}

	if err := s.notifier.Notify(ctx, in); err != nil {
		s.logger.Error("notify transaction decision",
			"transaction_id", t.ID,
			"error", err,
		)
	}
}

func describe(t *Transaction) string {
	switch t.Type {
	case TypeDeposit:
		return fmt.Sprintf("Your deposit of %d", t.Amount)
	case TypeSubscription:
		return fmt.Sprintf("Your %s subscription payment", t.Tier)
	default:
		return "Your transaction"
	}
}

// IsDecisionError reports errors an admin can act on without a retry.
func IsDecisionError(err error) bool {
	return errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrAlreadyProcessed)
}

func (s *Service) Balance(ctx context.Context, userID string) (BalanceResponse, error) {
	a, err := s.repo.Account(ctx, userID)
	if err != nil {
		return BalanceResponse{}, err
	}
	return ToBalanceResponse(a, s.now()), nil
}
