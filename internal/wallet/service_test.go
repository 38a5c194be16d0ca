// AngelaMos | 2026
// service_test.go

package wallet

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/notification"
)

func TestApproveDepositOnlyOnce(t *testing.T) {
	store := newMemStore()
	store.addAccount("u1", 100_000)
	notifier := &recordingNotifier{}
	svc := newTestService(store, notifier)
	ctx := context.Background()

	dep, err := svc.RequestDeposit(ctx, "u1", 50_000, "", "ref-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, dep.Status)
	assert.Equal(t, MethodBankTransfer, dep.Method)

	approved, err := svc.ApproveTransaction(ctx, dep.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, approved.Status)
	assert.Equal(t, int64(150_000), store.account("u1").Balance)

	_, err = svc.ApproveTransaction(ctx, dep.ID, "admin")
	require.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.Equal(t, "Transaction already processed", err.Error())
	assert.Equal(t, int64(150_000), store.account("u1").Balance)

	assert.Equal(t, 1, notifier.count())
	assert.Equal(t, notification.TypeTransactionApproved, notifier.sent[0].Type)
}

func TestApproveSubscriptionSetsTierAndExpiry(t *testing.T) {
	store := newMemStore()
	store.addAccount("u1", 0)
	svc := newTestService(store, nil)
	ctx := context.Background()

	sub, err := svc.RequestSubscriptionTransfer(ctx, "u1", core.TierPro, 150_000, "")
	require.NoError(t, err)

	_, err = svc.ApproveTransaction(ctx, sub.ID, "admin")
	require.NoError(t, err)

	acct := store.account("u1")
	assert.Equal(t, core.TierPro, acct.Tier)
	require.NotNil(t, acct.SubscriptionExpiresAt)
	assert.True(t, acct.SubscriptionExpiresAt.Equal(fixedNow.Add(DefaultSubscriptionPeriod)))
	assert.Equal(t, int64(0), acct.Balance)
}

func TestRejectedTransactionCannotBeApproved(t *testing.T) {
	store := newMemStore()
	store.addAccount("u1", 10)
	notifier := &recordingNotifier{}
	svc := newTestService(store, notifier)
	ctx := context.Background()

	dep, err := svc.RequestDeposit(ctx, "u1", 500, "", "")
	require.NoError(t, err)

	rejected, err := svc.RejectTransaction(ctx, dep.ID, "admin", "no matching transfer")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, rejected.Status)
	assert.Equal(t, "no matching transfer", store.tx(dep.ID).Note)

	_, err = svc.ApproveTransaction(ctx, dep.ID, "admin")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.Equal(t, int64(10), store.account("u1").Balance)

	assert.Equal(t, notification.TypeTransactionRejected, notifier.sent[0].Type)
	assert.Contains(t, notifier.sent[0].Body, "no matching transfer")
}

func TestRejectAfterApproveFails(t *testing.T) {
	store := newMemStore()
	store.addAccount("u1", 0)
	svc := newTestService(store, nil)
	ctx := context.Background()

	dep, err := svc.RequestDeposit(ctx, "u1", 700, "", "")
	require.NoError(t, err)
	_, err = svc.ApproveTransaction(ctx, dep.ID, "admin")
	require.NoError(t, err)

	_, err = svc.RejectTransaction(ctx, dep.ID, "admin", "")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.Equal(t, StatusSuccess, store.tx(dep.ID).Status)
	assert.Equal(t, int64(700), store.account("u1").Balance)
}

func TestApproveUnknownTransaction(t *testing.T) {
	svc := newTestService(newMemStore(), nil)

	_, err := svc.ApproveTransaction(context.Background(), "missing", "admin")
	require.ErrorIs(t, err, ErrTransactionNotFound)
	assert.Equal(t, "Transaction not found", err.Error())
}

func TestApproveForVanishedUser(t *testing.T) {
	store := newMemStore()
	store.addAccount("u1", 0)
	svc := newTestService(store, nil)
	ctx := context.Background()

	dep, err := svc.RequestDeposit(ctx, "u1", 100, "", "")
	require.NoError(t, err)

	store.mu.Lock()
	delete(store.accounts, "u1")
	store.mu.Unlock()

	_, err = svc.ApproveTransaction(ctx, dep.ID, "admin")
	require.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, StatusPending, store.tx(dep.ID).Status)
}

func TestConcurrentApprovalsCreditOnce(t *testing.T) {
	store := newMemStore()
	store.addAccount("u1", 0)
	svc := newTestService(store, nil)
	ctx := context.Background()

	dep, err := svc.RequestDeposit(ctx, "u1", 1_000, "", "")
	require.NoError(t, err)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ApproveTransaction(ctx, dep.ID, "admin")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrAlreadyProcessed):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)
	assert.Equal(t, int64(1_000), store.account("u1").Balance)
}

func TestRequestValidation(t *testing.T) {
	store := newMemStore()
	store.addAccount("u1", 0)
	svc := newTestService(store, nil)
	ctx := context.Background()

	_, err := svc.RequestDeposit(ctx, "u1", 0, "", "")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.RequestDeposit(ctx, "u1", -5, "", "")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.RequestSubscriptionTransfer(ctx, "u1", core.TierFree, 10, "")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.RequestDeposit(ctx, "ghost", 10, "", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPurchaseSubscriptionFromWallet(t *testing.T) {
	store := newMemStore()
	store.addAccount("u1", 60_000)
	store.addAccount("poor", 1_000)
	svc := newTestService(store, nil)
	ctx := context.Background()

	purchase, err := svc.PurchaseSubscription(ctx, "u1", core.TierBasic)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, purchase.Status)
	assert.Equal(t, MethodWallet, purchase.Method)
	assert.Equal(t, int64(50_000), purchase.Amount)

	acct := store.account("u1")
	assert.Equal(t, int64(10_000), acct.Balance)
	assert.Equal(t, core.TierBasic, acct.Tier)
	require.NotNil(t, acct.SubscriptionExpiresAt)
	assert.True(t, acct.SubscriptionExpiresAt.Equal(fixedNow.Add(DefaultSubscriptionPeriod)))

	_, err = svc.PurchaseSubscription(ctx, "poor", core.TierPro)
	require.ErrorIs(t, err, core.ErrInsufficientFunds)
	poor := store.account("poor")
	assert.Equal(t, int64(1_000), poor.Balance)
	assert.Equal(t, core.TierFree, poor.Tier)
}

func TestRenewingSameTierExtendsExpiry(t *testing.T) {
	store := newMemStore()
	store.addAccount("u1", 100_000)
	svc := newTestService(store, nil)
	ctx := context.Background()

	_, err := svc.PurchaseSubscription(ctx, "u1", core.TierBasic)
	require.NoError(t, err)
	_, err = svc.PurchaseSubscription(ctx, "u1", core.TierBasic)
	require.NoError(t, err)

	acct := store.account("u1")
	assert.Equal(t, int64(0), acct.Balance)
	assert.True(t, acct.SubscriptionExpiresAt.Equal(fixedNow.Add(2*DefaultSubscriptionPeriod)))
}

func TestGetHidesOtherUsersTransactions(t *testing.T) {
	store := newMemStore()
	store.addAccount("u1", 0)
	svc := newTestService(store, nil)
	ctx := context.Background()

	dep, err := svc.RequestDeposit(ctx, "u1", 10, "", "")
	require.NoError(t, err)

	_, err = svc.Get(ctx, dep.ID, "u2", false)
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	got, err := svc.Get(ctx, dep.ID, "u2", true)
	require.NoError(t, err)
	assert.Equal(t, dep.ID, got.ID)
}

func TestToAppErrorKeepsSentinelMessage(t *testing.T) {
	appErr := toAppError(errors.Join(errors.New("approve"), ErrAlreadyProcessed))
	assert.Equal(t, http.StatusConflict, appErr.StatusCode)
	assert.Equal(t, "Transaction already processed", appErr.Message)

	appErr = toAppError(ErrTransactionNotFound)
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)

	appErr = toAppError(core.ErrInsufficientFunds)
	assert.Equal(t, http.StatusPaymentRequired, appErr.StatusCode)
}

func TestDepositArithmeticProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("balance equals initial plus approved deposits, whatever the retries", prop.ForAll(
		func(initial int64, amounts []int64, retries int) bool {
			store := newMemStore()
			store.addAccount("u", initial)
			svc := newTestService(store, nil)
			ctx := context.Background()

			want := initial
			for i, amount := range amounts {
				dep, err := svc.RequestDeposit(ctx, "u", amount, "", "")
				if err != nil {
					return false
				}
				// Reject every third deposit; it must never count.
				if i%3 == 2 {
					if _, err := svc.RejectTransaction(ctx, dep.ID, "a", ""); err != nil {
						return false
					}
				} else {
					want += amount
				}
				for range retries {
					_, err := svc.ApproveTransaction(ctx, dep.ID, "a")
					if i%3 == 2 || err != nil {
						if !errors.Is(err, ErrAlreadyProcessed) {
							return false
						}
					}
				}
			}

			return store.account("u").Balance == want
		},
		gen.Int64Range(0, 1_000_000),
		gen.SliceOf(gen.Int64Range(1, 500_000)),
		gen.IntRange(1, 3),
	))

	properties.TestingRun(t)
}
