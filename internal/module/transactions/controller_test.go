package transactions_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/finpanel/internal/module/transactions"
	"github.com/kislikjeka/finpanel/internal/platform/transaction"
	"github.com/kislikjeka/finpanel/pkg/logger"
)

func newController(svc transactions.TransactionService, n transactions.Notifier, p transaction.Period) *transactions.Controller {
	return transactions.NewController(svc, n, logger.Discard(), p)
}

// =============================================================================
// Period change / mount
// =============================================================================

func TestController_Load_EmptySearchShowsEverything(t *testing.T) {
	ctx := context.Background()
	items := []transaction.Transaction{
		tx("1", "Rent", 1200, transaction.TypeExpense),
		tx("2", "Salary", 5000, transaction.TypeIncome),
	}
	svc := new(MockTransactionService)
	svc.On("ListTransactions", ctx, may2024).Return(items, nil)

	c := newController(svc, &recordingNotifier{}, may2024)
	c.Load(ctx)

	state := c.State()
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
	assert.Equal(t, items, state.Items)
	assert.Equal(t, state.Items, state.FilteredItems)
	assert.Equal(t, transactions.ViewList, state.View())
	svc.AssertExpectations(t)
}

func TestController_Refetch_AppliesCurrentSearch(t *testing.T) {
	ctx := context.Background()
	svc := new(MockTransactionService)
	svc.On("ListTransactions", ctx, may2024).Return([]transaction.Transaction{}, nil)
	svc.On("ListTransactions", ctx, june2024).Return([]transaction.Transaction{
		tx("1", "Rent", 1200, transaction.TypeExpense),
		tx("2", "Salary", 5000, transaction.TypeIncome),
	}, nil)

	c := newController(svc, &recordingNotifier{}, may2024)
	c.Load(ctx)
	c.SetSearchText("sal")
	require.NoError(t, c.SetPeriod(ctx, june2024))

	state := c.State()
	assert.Equal(t, []string{"1", "2"}, ids(state.Items))
	assert.Equal(t, []string{"2"}, ids(state.FilteredItems))
	assert.Equal(t, "sal", state.SearchText)
	assert.Equal(t, june2024, state.Period)
}

func TestController_LoadFailure_KeepsItems(t *testing.T) {
	ctx := context.Background()
	items := []transaction.Transaction{tx("1", "Rent", 1200, transaction.TypeExpense)}
	svc := new(MockTransactionService)
	svc.On("ListTransactions", ctx, may2024).Return(items, nil)
	svc.On("ListTransactions", ctx, june2024).Return(nil, errors.New("connection refused"))

	c := newController(svc, &recordingNotifier{}, may2024)
	c.Load(ctx)
	require.NoError(t, c.SetPeriod(ctx, june2024))

	state := c.State()
	assert.False(t, state.Loading)
	assert.Equal(t, transactions.LoadErrorMessage, state.Error)
	assert.Equal(t, items, state.Items)
	assert.Equal(t, transactions.ViewError, state.View())
}

func TestController_Retry_RecoversFromError(t *testing.T) {
	ctx := context.Background()
	items := []transaction.Transaction{tx("1", "Rent", 1200, transaction.TypeExpense)}
	svc := new(MockTransactionService)
	svc.On("ListTransactions", ctx, may2024).Return(nil, errors.New("timeout")).Once()
	svc.On("ListTransactions", ctx, may2024).Return(items, nil).Once()

	c := newController(svc, &recordingNotifier{}, may2024)
	c.Load(ctx)
	require.Equal(t, transactions.ViewError, c.State().View())

	c.Retry(ctx)

	state := c.State()
	assert.Empty(t, state.Error)
	assert.Equal(t, items, state.Items)
	svc.AssertNumberOfCalls(t, "ListTransactions", 2)
}

func TestController_EmptyListIsNotAnError(t *testing.T) {
	ctx := context.Background()
	svc := new(MockTransactionService)
	svc.On("ListTransactions", ctx, may2024).Return([]transaction.Transaction{}, nil)

	c := newController(svc, &recordingNotifier{}, may2024)
	c.Load(ctx)

	state := c.State()
	assert.Empty(t, state.Items)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
	assert.Equal(t, transactions.ViewEmpty, state.View())
}

func TestController_SetPeriod_Invalid(t *testing.T) {
	svc := new(MockTransactionService)
	c := newController(svc, &recordingNotifier{}, may2024)

	err := c.SetPeriod(context.Background(), transaction.Period{Year: 2024, Month: 13})
	assert.ErrorIs(t, err, transaction.ErrInvalidPeriod)
	assert.Equal(t, may2024, c.Period())
	svc.AssertNotCalled(t, "ListTransactions", mock.Anything, mock.Anything)
}

func TestController_LoadingWhileFetching(t *testing.T) {
	ctx := context.Background()
	svc := newGatedService()
	c := newController(svc, &recordingNotifier{}, may2024)

	done := make(chan struct{})
	go func() {
		c.Load(ctx)
		close(done)
	}()
	waitStarted(t, svc, "list:2024-05")
	svc.releaseList(may2024, []transaction.Transaction{tx("m", "May rent", 1, transaction.TypeExpense)}, nil)
	<-done

	done2 := make(chan struct{})
	go func() {
		_ = c.SetPeriod(ctx, june2024)
		close(done2)
	}()
	waitStarted(t, svc, "list:2024-06")

	mid := c.State()
	assert.True(t, mid.Loading, "loading is set before the response arrives")
	assert.Equal(t, transactions.ViewLoading, mid.View())
	assert.Equal(t, june2024, mid.Period)

	c.SetSearchText("rent")
	assert.True(t, c.State().Loading, "typing while a fetch is outstanding does not block")

	svc.releaseList(june2024, []transaction.Transaction{tx("j", "June rent", 2, transaction.TypeExpense)}, nil)
	<-done2

	final := c.State()
	assert.False(t, final.Loading)
	assert.Equal(t, []string{"j"}, ids(final.Items))
	assert.Equal(t, []string{"j"}, ids(final.FilteredItems))
}

func TestController_StaleResponseIsDiscarded(t *testing.T) {
	ctx := context.Background()
	svc := newGatedService()
	c := newController(svc, &recordingNotifier{}, may2024)

	mayDone := make(chan struct{})
	go func() {
		c.Load(ctx)
		close(mayDone)
	}()
	waitStarted(t, svc, "list:2024-05")

	juneDone := make(chan struct{})
	go func() {
		_ = c.SetPeriod(ctx, june2024)
		close(juneDone)
	}()
	waitStarted(t, svc, "list:2024-06")

	svc.releaseList(june2024, []transaction.Transaction{tx("j", "June", 2, transaction.TypeExpense)}, nil)
	<-juneDone
	svc.releaseList(may2024, []transaction.Transaction{tx("m", "May", 1, transaction.TypeExpense)}, nil)
	<-mayDone

	state := c.State()
	assert.Equal(t, june2024, state.Period)
	assert.Equal(t, []string{"j"}, ids(state.Items))
	assert.False(t, state.Loading)
}

func TestController_StaleFailureDoesNotClobberFresherState(t *testing.T) {
	ctx := context.Background()
	svc := newGatedService()
	c := newController(svc, &recordingNotifier{}, may2024)

	mayDone := make(chan struct{})
	go func() {
		c.Load(ctx)
		close(mayDone)
	}()
	waitStarted(t, svc, "list:2024-05")

	juneDone := make(chan struct{})
	go func() {
		_ = c.SetPeriod(ctx, june2024)
		close(juneDone)
	}()
	waitStarted(t, svc, "list:2024-06")

	svc.releaseList(may2024, nil, errors.New("old request failed"))
	<-mayDone
	assert.True(t, c.State().Loading, "stale failure leaves the newer fetch pending")
	assert.Empty(t, c.State().Error)

	svc.releaseList(june2024, []transaction.Transaction{}, nil)
	<-juneDone
	assert.Equal(t, transactions.ViewEmpty, c.State().View())
}

// =============================================================================
// Search
// =============================================================================

func TestController_SetSearchText(t *testing.T) {
	ctx := context.Background()
	svc := new(MockTransactionService)
	svc.On("ListTransactions", ctx, may2024).Return([]transaction.Transaction{
		tx("1", "Rent", 1200, transaction.TypeExpense),
		tx("2", "Salary", 5000, transaction.TypeIncome),
	}, nil).Once()

	c := newController(svc, &recordingNotifier{}, may2024)
	c.Load(ctx)

	c.SetSearchText("ren")
	assert.Equal(t, []string{"1"}, ids(c.State().FilteredItems))

	c.SetSearchText("")
	assert.Equal(t, []string{"1", "2"}, ids(c.State().FilteredItems))

	svc.AssertNumberOfCalls(t, "ListTransactions", 1)
}

// =============================================================================
// Delete
// =============================================================================

func loadedController(t *testing.T, svc *MockTransactionService, n transactions.Notifier) *transactions.Controller {
	t.Helper()
	svc.On("ListTransactions", mock.Anything, may2024).Return([]transaction.Transaction{
		tx("1", "Rent", 1200, transaction.TypeExpense),
		tx("2", "Rental car", 300, transaction.TypeExpense),
		tx("3", "Salary", 5000, transaction.TypeIncome),
	}, nil)
	c := newController(svc, n, may2024)
	c.Load(context.Background())
	return c
}

func TestController_Delete_Success(t *testing.T) {
	ctx := context.Background()
	svc := new(MockTransactionService)
	notifier := &recordingNotifier{}
	c := loadedController(t, svc, notifier)
	c.SetSearchText("rent")
	svc.On("DeleteTransaction", ctx, "1").Return(nil)

	ok := c.Delete(ctx, "1")
	require.True(t, ok)

	state := c.State()
	assert.Equal(t, []string{"2", "3"}, ids(state.Items))
	assert.Equal(t, []string{"2"}, ids(state.FilteredItems))
	assert.Empty(t, state.DeletingID)
	assert.Empty(t, state.DeletingIDs)
	assert.Equal(t, []notification{{Level: "success", Message: transactions.DeleteSuccessMessage}}, notifier.all())
}

func TestController_Delete_Failure(t *testing.T) {
	ctx := context.Background()
	svc := new(MockTransactionService)
	notifier := &recordingNotifier{}
	c := loadedController(t, svc, notifier)
	before := c.State()
	svc.On("DeleteTransaction", ctx, "1").Return(errors.New("500"))

	ok := c.Delete(ctx, "1")
	require.False(t, ok)

	state := c.State()
	assert.Equal(t, before.Items, state.Items)
	assert.Equal(t, before.FilteredItems, state.FilteredItems)
	assert.Empty(t, state.DeletingID)
	assert.Empty(t, state.DeletingIDs)
	assert.Equal(t, []notification{{Level: "error", Message: transactions.DeleteErrorMessage}}, notifier.all())
}

func TestController_ConcurrentDeletesAreTrackedIndependently(t *testing.T) {
	ctx := context.Background()
	svc := newGatedService()
	notifier := &recordingNotifier{}
	c := newController(svc, notifier, may2024)

	loadDone := make(chan struct{})
	go func() {
		c.Load(ctx)
		close(loadDone)
	}()
	waitStarted(t, svc, "list:2024-05")
	svc.releaseList(may2024, []transaction.Transaction{
		tx("1", "Rent", 1200, transaction.TypeExpense),
		tx("2", "Salary", 5000, transaction.TypeIncome),
	}, nil)
	<-loadDone

	firstDone := make(chan bool, 1)
	go func() { firstDone <- c.Delete(ctx, "1") }()
	waitStarted(t, svc, "delete:1")

	secondDone := make(chan bool, 1)
	go func() { secondDone <- c.Delete(ctx, "2") }()
	waitStarted(t, svc, "delete:2")

	mid := c.State()
	assert.Equal(t, []string{"1", "2"}, mid.DeletingIDs)
	assert.Equal(t, "2", mid.DeletingID, "most recently started deletion")
	assert.True(t, mid.IsDeleting("1"))

	svc.releaseDelete("1", nil)
	select {
	case ok := <-firstDone:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("first delete did not finish")
	}

	mid = c.State()
	assert.Equal(t, []string{"2"}, mid.DeletingIDs)
	assert.Equal(t, "2", mid.DeletingID)
	assert.Equal(t, []string{"2"}, ids(mid.Items))

	svc.releaseDelete("2", errors.New("server rejected"))
	assert.False(t, <-secondDone)

	final := c.State()
	assert.Empty(t, final.DeletingIDs)
	assert.Empty(t, final.DeletingID)
	assert.Equal(t, []string{"2"}, ids(final.Items))
	assert.Len(t, notifier.all(), 2)
}
