package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/gobank/internal/bank/event"
	"github.com/shandysiswandi/gobank/internal/bank/store"
	"github.com/shandysiswandi/gobank/internal/bank/usecase"
	"github.com/shandysiswandi/gobank/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gobank/internal/pkg/pkguid"
	"github.com/shopspring/decimal"
)

type envelope[T any] struct {
	Data T              `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	txID, err := pkguid.NewSnowflake()
	if err != nil {
		t.Fatalf("new snowflake: %v", err)
	}

	uc := usecase.New(usecase.Dependency{
		Store:     store.NewInMemoryStore(),
		Events:    event.NewBus(10),
		AccountID: pkguid.NewUUID(),
		TxID:      txID,
		RootCtx:   context.Background(),
	})

	router := pkgrouter.NewRouter(pkguid.NewUUID())
	RegisterHTTPEndpoint(router, uc)

	return router
}

func TestAccountTransferHistoryFlow(t *testing.T) {
	router := newTestRouter(t)

	source := createAccount(t, router, "Source User", "1000.00", http.StatusCreated)
	destination := createAccount(t, router, "Dest User", "500.00", http.StatusCreated)

	tx := doTransfer(t, router, source.AccountNumber, destination.AccountNumber, "100.00", http.StatusOK)
	if !tx.Amount.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("transfer amount = %s, want 100.00", tx.Amount)
	}

	gotSource := getAccount(t, router, source.AccountNumber)
	gotDest := getAccount(t, router, destination.AccountNumber)
	if !gotSource.Balance.Equal(decimal.RequireFromString("900.00")) {
		t.Fatalf("source balance = %s, want 900.00", gotSource.Balance)
	}
	if !gotDest.Balance.Equal(decimal.RequireFromString("600.00")) {
		t.Fatalf("destination balance = %s, want 600.00", gotDest.Balance)
	}

	doTransfer(t, router, source.AccountNumber, destination.AccountNumber, "1000.00", http.StatusUnprocessableEntity)

	gotSource = getAccount(t, router, source.AccountNumber)
	gotDest = getAccount(t, router, destination.AccountNumber)
	if !gotSource.Balance.Equal(decimal.RequireFromString("900.00")) || !gotDest.Balance.Equal(decimal.RequireFromString("600.00")) {
		t.Fatalf("balances after rejected transfer = %s/%s, want 900.00/600.00", gotSource.Balance, gotDest.Balance)
	}

	history := getTransactions(t, router, source.AccountNumber)
	if len(history.Transactions) != 1 {
		t.Fatalf("history len = %d, want 1", len(history.Transactions))
	}
	got := history.Transactions[0]
	if !got.Amount.Equal(decimal.RequireFromString("100.00")) ||
		got.SourceAccountNumber != source.AccountNumber ||
		got.DestinationAccountNumber != destination.AccountNumber {
		t.Fatalf("history tx = %+v, want 100.00 from source to destination", got)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	router := newTestRouter(t)

	createAccount(t, router, "Negative User", "-100.00", http.StatusUnprocessableEntity)

	rec := postJSON(t, router, "/api/accounts", `{"account_holder_name":"","initial_balance":"10.00"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank name status = %d, want 422", rec.Code)
	}

	rec = postJSON(t, router, "/api/accounts", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d, want 400", rec.Code)
	}
}

func TestGetAccountNotFound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/accounts/non-existent", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSelfTransferRejected(t *testing.T) {
	router := newTestRouter(t)

	account := createAccount(t, router, "Loop User", "100.00", http.StatusCreated)
	doTransfer(t, router, account.AccountNumber, account.AccountNumber, "10.00", http.StatusUnprocessableEntity)
}

func TestDepositWithdrawFlow(t *testing.T) {
	router := newTestRouter(t)

	account := createAccount(t, router, "Cash User", "10.00", http.StatusCreated)

	rec := postJSON(t, router, "/api/accounts/"+account.AccountNumber+"/deposit", `{"amount":"15.50"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("deposit status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, router, "/api/accounts/"+account.AccountNumber+"/withdraw", `{"amount":"5.50"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("withdraw status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	got := getAccount(t, router, account.AccountNumber)
	if !got.Balance.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("balance = %s, want 20.00", got.Balance)
	}

	rec = postJSON(t, router, "/api/accounts/"+account.AccountNumber+"/withdraw", `{"amount":"1000.00"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("overdraw status = %d, want 422", rec.Code)
	}
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func createAccount(t *testing.T, router http.Handler, holder, balance string, wantStatus int) AccountResponse {
	t.Helper()

	body := `{"account_holder_name":"` + holder + `","initial_balance":"` + balance + `"}`
	rec := postJSON(t, router, "/api/accounts", body)
	if rec.Code != wantStatus {
		t.Fatalf("create account status = %d, want %d: %s", rec.Code, wantStatus, rec.Body.String())
	}
	if wantStatus != http.StatusCreated {
		return AccountResponse{}
	}

	var env envelope[AccountResponse]
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if env.Data.AccountNumber == "" {
		t.Fatal("account number is empty")
	}

	return env.Data
}

func getAccount(t *testing.T, router http.Handler, number string) AccountResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/accounts/"+number, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("get account status = %d: %s", rec.Code, rec.Body.String())
	}

	var env envelope[AccountResponse]
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode account: %v", err)
	}

	return env.Data
}

func doTransfer(t *testing.T, router http.Handler, source, destination, amount string, wantStatus int) TransactionResponse {
	t.Helper()

	body := `{"source_account_number":"` + source + `","destination_account_number":"` + destination + `","amount":"` + amount + `"}`
	rec := postJSON(t, router, "/api/transfers", body)
	if rec.Code != wantStatus {
		t.Fatalf("transfer status = %d, want %d: %s", rec.Code, wantStatus, rec.Body.String())
	}
	if wantStatus != http.StatusOK {
		return TransactionResponse{}
	}

	var env envelope[TransactionResponse]
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode transfer: %v", err)
	}

	return env.Data
}

func getTransactions(t *testing.T, router http.Handler, number string) TransactionsResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/accounts/"+number+"/transactions?page=1&page_size=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("transactions status = %d: %s", rec.Code, rec.Body.String())
	}

	var env envelope[TransactionsResponse]
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode transactions: %v", err)
	}

	return env.Data
}
