package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhartley/tally/internal/model"
	"github.com/mhartley/tally/internal/session"
)

type memStore struct {
	mu   sync.Mutex
	cred *session.Credential
}

func (m *memStore) Load() (*session.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return nil, assert.AnError
	}
	c := *m.cred
	return &c, nil
}

func (m *memStore) Save(c *session.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = c
	return nil
}

func (m *memStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = nil
	return nil
}

func newTestClient(t *testing.T, handler http.Handler, loggedIn bool, onLogout func()) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := &memStore{}
	if loggedIn {
		store.cred = &session.Credential{Token: "test-token", UserID: "42"}
	}
	sess := session.New(store, onLogout)
	return New(srv.URL, sess), srv
}

func TestSearchTransactionsEncodesFilterAndDecodesPage(t *testing.T) {
	var gotQuery map[string]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transactions/search", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"transactions": [
				{"id": 9, "type": "EXPENSE", "amount": 50.00, "currencyCode": "PKR",
				 "transactionDate": "2025-01-10", "status": "CLEARED",
				 "accountId": 1, "accountName": "Wallet", "categoryId": 3, "categoryName": "Groceries"}
			],
			"totalElements": 37
		}`))
	})
	client, _ := newTestClient(t, handler, true, nil)

	page, err := client.SearchTransactions(context.Background(), SearchParams{
		UserID:    "42",
		Page:      2,
		Size:      10,
		AccountID: "1",
		Keyword:   "grocer",
	})
	require.NoError(t, err)

	assert.Equal(t, "42", gotQuery["userId"])
	assert.Equal(t, "2", gotQuery["page"])
	assert.Equal(t, "10", gotQuery["size"])
	assert.Equal(t, "1", gotQuery["accountId"])
	assert.Equal(t, "grocer", gotQuery["keyword"])
	_, hasCategory := gotQuery["categoryId"]
	assert.False(t, hasCategory, "empty filter fields must be omitted")

	assert.Equal(t, int64(37), page.TotalElements)
	require.Len(t, page.Transactions, 1)
	tx := page.Transactions[0]
	assert.Equal(t, "9", tx.ID, "numeric ids are normalized to strings")
	assert.Equal(t, model.ModeExpense, tx.Type)
	assert.Equal(t, "50.00", tx.Amount.String())
	assert.Equal(t, "Wallet", tx.AccountName)
}

func TestCreatePostingSendsAllowNegativeFlag(t *testing.T) {
	var gotAllowNegative string
	var gotBody PostingRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transactions", r.URL.Path)
		gotAllowNegative = r.URL.Query().Get("allowNegative")
		require.NoError(t, jsonDecode(r, &gotBody))
		w.WriteHeader(http.StatusCreated)
	})
	client, _ := newTestClient(t, handler, true, nil)

	amount, err := model.ParseAmount("50.00")
	require.NoError(t, err)
	err = client.CreatePosting(context.Background(), PostingRequest{
		UserID:          "42",
		AccountID:       "A1",
		CategoryID:      "C1",
		Type:            model.ModeExpense,
		Amount:          amount,
		CurrencyCode:    "PKR",
		TransactionDate: "2025-01-10",
		Status:          model.StatusCleared,
	}, true)
	require.NoError(t, err)

	assert.Equal(t, "true", gotAllowNegative)
	assert.Equal(t, model.ModeExpense, gotBody.Type)
	assert.Equal(t, "50.00", gotBody.Amount.String())
}

func TestConflictCarriesServerMessage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "Insufficient balance in account Wallet"}`))
	})
	client, _ := newTestClient(t, handler, true, nil)

	err := client.CreateTransfer(context.Background(), TransferRequest{}, false)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindConflict))

	var le *Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "Insufficient balance in account Wallet", le.Message)
}

func TestAuthorizationDeniedForcesSingleLogout(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	var logouts atomic.Int32
	client, _ := newTestClient(t, handler, true, func() { logouts.Add(1) })

	// Several concurrent calls all hit the expired credential.
	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.ListAccounts(context.Background(), "42", false)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.Error(t, err)
		assert.True(t, IsKind(err, KindAuthorization))
	}
	assert.Equal(t, int32(1), logouts.Load(), "forced logout must fire exactly once")
}

func TestLoginFailureDoesNotTripGuard(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "Invalid credentials"}`))
	})
	var logouts atomic.Int32
	client, _ := newTestClient(t, handler, false, func() { logouts.Add(1) })

	_, err := client.Login(context.Background(), "user@example.com", "nope")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindAuthorization))
	assert.Equal(t, int32(0), logouts.Load())
}

func TestRefEntitiesUnwrapPageEnvelope(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/categories", r.URL.Path)
		require.Equal(t, "EXPENSE", r.URL.Query().Get("type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content": [
			{"categoryId": 3, "name": "Groceries", "type": "EXPENSE"},
			{"categoryId": "4", "name": "Rent", "type": "EXPENSE"}
		]}`))
	})
	client, _ := newTestClient(t, handler, true, nil)

	entities, err := client.ListRefEntities(context.Background(), model.KindCategory, "42", "EXPENSE")
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "3", entities[0].ID)
	assert.Equal(t, "Groceries", entities[0].Name)
	assert.Equal(t, "4", entities[1].ID)
}

func TestRefEntitiesAcceptBareArray(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"merchantId": 8, "name": "Metro"}]`))
	})
	client, _ := newTestClient(t, handler, true, nil)

	entities, err := client.ListRefEntities(context.Background(), model.KindMerchant, "42", "")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "8", entities[0].ID)
	assert.Equal(t, "Metro", entities[0].Name)
}

func TestNetworkErrorKind(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // nothing listening anymore

	store := &memStore{cred: &session.Credential{Token: "t", UserID: "42"}}
	client := New(srv.URL, session.New(store, nil))

	_, err := client.ListBudgets(context.Background(), "42")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNetwork))
}

func jsonDecode(r *http.Request, out any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(out)
}
