package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/venuepulse/ledger/internal/auth"
	"github.com/venuepulse/ledger/internal/service"
	"github.com/venuepulse/ledger/internal/storage/sqlite"
)

type testEnv struct {
	srv   *httptest.Server
	token string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)

	s := New(
		store,
		service.NewPurchaseService(store),
		service.NewPayoutService(store, nil),
		service.NewPoolService(store),
		authenticator,
		jwtManager,
	)

	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)

	env := &testEnv{srv: srv}
	env.post(t, "/api/operators", map[string]string{
		"email":        "ops@example.com",
		"display_name": "Ops",
		"password":     "correct-horse",
	}, http.StatusCreated, nil)

	var login struct {
		Token string `json:"token"`
	}
	env.post(t, "/api/operators/login", map[string]string{
		"email":    "ops@example.com",
		"password": "correct-horse",
	}, http.StatusOK, &login)
	if login.Token == "" {
		t.Fatal("Login returned empty token")
	}
	env.token = login.Token
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, wantStatus int, out any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var errBody errorResponse
		json.NewDecoder(resp.Body).Decode(&errBody)
		t.Fatalf("%s %s = %d, want %d (error: %q)", method, path, resp.StatusCode, wantStatus, errBody.Error)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode %s %s response: %v", method, path, err)
		}
	}
}

func (e *testEnv) post(t *testing.T, path string, body any, wantStatus int, out any) {
	t.Helper()
	e.do(t, http.MethodPost, path, body, wantStatus, out)
}

func (e *testEnv) get(t *testing.T, path string, wantStatus int, out any) {
	t.Helper()
	e.do(t, http.MethodGet, path, nil, wantStatus, out)
}

func (e *testEnv) createPayee(t *testing.T, kind, name string, approve bool) string {
	t.Helper()

	var payee payeeResponse
	e.post(t, "/api/payees", map[string]string{
		"kind":               kind,
		"display_name":       name,
		"payout_destination": name + "@example.com",
	}, http.StatusCreated, &payee)

	if approve {
		e.post(t, "/api/payees/"+payee.ID+"/approve", nil, http.StatusOK, nil)
	}
	return payee.ID
}

func TestOperatorAuth(t *testing.T) {
	env := newTestEnv(t)

	t.Run("duplicate email refused", func(t *testing.T) {
		env.post(t, "/api/operators", map[string]string{
			"email":        "ops@example.com",
			"display_name": "Imposter",
			"password":     "correct-horse",
		}, http.StatusConflict, nil)
	})

	t.Run("weak password refused", func(t *testing.T) {
		env.post(t, "/api/operators", map[string]string{
			"email":        "weak@example.com",
			"display_name": "Weak",
			"password":     "short",
		}, http.StatusBadRequest, nil)
	})

	t.Run("wrong password refused", func(t *testing.T) {
		env.post(t, "/api/operators/login", map[string]string{
			"email":    "ops@example.com",
			"password": "wrong-password",
		}, http.StatusUnauthorized, nil)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		resp, err := http.Get(env.srv.URL + "/api/pool")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Unauthenticated request = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("healthz is public", func(t *testing.T) {
		resp, err := http.Get(env.srv.URL + "/healthz")
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("healthz = %d, want 200", resp.StatusCode)
		}
	})
}

func TestPayeeEndpoints(t *testing.T) {
	env := newTestEnv(t)

	var created payeeResponse
	env.post(t, "/api/payees", map[string]string{
		"kind":               "venue",
		"display_name":       "The Blue Room",
		"payout_destination": "blueroom@example.com",
	}, http.StatusCreated, &created)
	if created.Status != "pending_review" {
		t.Errorf("New payee status = %q, want pending_review", created.Status)
	}

	var fetched payeeResponse
	env.get(t, "/api/payees/"+created.ID, http.StatusOK, &fetched)
	if fetched.DisplayName != "The Blue Room" || fetched.PendingEarnings != 0 {
		t.Errorf("Fetched payee = %+v", fetched)
	}

	var approved payeeResponse
	env.post(t, "/api/payees/"+created.ID+"/approve", nil, http.StatusOK, &approved)
	if approved.Status != "approved" {
		t.Errorf("Approved payee status = %q, want approved", approved.Status)
	}

	env.get(t, "/api/payees/no-such-payee", http.StatusNotFound, nil)

	env.do(t, http.MethodDelete, "/api/payees/"+created.ID, nil, http.StatusNoContent, nil)
	env.get(t, "/api/payees/"+created.ID, http.StatusNotFound, nil)

	env.post(t, "/api/payees", map[string]string{
		"kind":         "sponsor",
		"display_name": "Bad Kind",
	}, http.StatusBadRequest, nil)
}

func TestPurchaseAndPayoutFlow(t *testing.T) {
	env := newTestEnv(t)

	venueID := env.createPayee(t, "venue", "venue-a", true)
	promoterID := env.createPayee(t, "affiliate", "promoter-a", true)

	var purchase purchaseResponse
	env.post(t, "/api/purchases", map[string]any{
		"venue_id":    venueID,
		"promoter_id": promoterID,
		"amount":      10000,
	}, http.StatusCreated, &purchase)

	if purchase.PromoterShare != 1000 || purchase.PoolShare != 3000 ||
		purchase.VenueShare != 3000 || purchase.PlatformShare != 3000 {
		t.Errorf("Split = %d/%d/%d/%d, want 1000/3000/3000/3000",
			purchase.PromoterShare, purchase.PoolShare, purchase.VenueShare, purchase.PlatformShare)
	}

	var promoter payeeResponse
	env.get(t, "/api/payees/"+promoterID, http.StatusOK, &promoter)
	if promoter.PendingEarnings != 1000 {
		t.Errorf("Promoter pending = %d, want 1000", promoter.PendingEarnings)
	}

	var payout payoutResponse
	env.post(t, "/api/payees/"+promoterID+"/payout", nil, http.StatusOK, &payout)
	if payout.Amount != 1000 || payout.Status != "paid" {
		t.Errorf("Payout = %+v, want amount 1000 status paid", payout)
	}

	// Nothing pending anymore.
	env.post(t, "/api/payees/"+promoterID+"/payout", nil, http.StatusConflict, nil)

	var history struct {
		Payouts []payoutResponse `json:"payouts"`
	}
	env.get(t, "/api/payees/"+promoterID+"/payouts", http.StatusOK, &history)
	if len(history.Payouts) != 1 {
		t.Fatalf("History has %d payouts, want 1", len(history.Payouts))
	}

	t.Run("unapproved payee refused", func(t *testing.T) {
		pendingID := env.createPayee(t, "affiliate", "promoter-b", false)
		env.post(t, "/api/purchases", map[string]any{
			"venue_id":    venueID,
			"promoter_id": pendingID,
			"amount":      5000,
		}, http.StatusCreated, nil)
		env.post(t, "/api/payees/"+pendingID+"/payout", nil, http.StatusConflict, nil)
	})

	t.Run("invalid amount refused", func(t *testing.T) {
		env.post(t, "/api/purchases", map[string]any{
			"venue_id": venueID,
			"amount":   0,
		}, http.StatusBadRequest, nil)
	})

	t.Run("unknown venue refused", func(t *testing.T) {
		env.post(t, "/api/purchases", map[string]any{
			"venue_id": "no-such-venue",
			"amount":   5000,
		}, http.StatusNotFound, nil)
	})

	t.Run("affiliate as venue refused", func(t *testing.T) {
		env.post(t, "/api/purchases", map[string]any{
			"venue_id": promoterID,
			"amount":   5000,
		}, http.StatusBadRequest, nil)
	})
}

func TestPoolEndpoints(t *testing.T) {
	env := newTestEnv(t)

	venueID := env.createPayee(t, "venue", "venue-a", true)

	// A walk-in purchase accrues 30% into the pool.
	env.post(t, "/api/purchases", map[string]any{
		"venue_id": venueID,
		"amount":   10000,
	}, http.StatusCreated, nil)

	for i := 0; i < 3; i++ {
		env.post(t, "/api/checkins", map[string]string{"venue_id": venueID}, http.StatusNoContent, nil)
	}

	var pool poolPeriodResponse
	env.get(t, "/api/pool", http.StatusOK, &pool)
	if pool.Balance != 3000 {
		t.Errorf("Pool balance = %d, want 3000", pool.Balance)
	}
	if len(pool.Checkins) != 1 || pool.Checkins[0].Checkins != 3 {
		t.Errorf("Pool checkins = %+v, want one venue with 3", pool.Checkins)
	}

	var dist struct {
		PeriodID       string `json:"period_id"`
		Distributed    int64  `json:"distributed"`
		Carried        int64  `json:"carried"`
		VenuesCredited int    `json:"venues_credited"`
	}
	env.post(t, "/api/pool/distribute", nil, http.StatusOK, &dist)
	if dist.Distributed != 3000 || dist.Carried != 0 || dist.VenuesCredited != 1 {
		t.Errorf("Distribution = %+v, want 3000 distributed to 1 venue", dist)
	}

	// The whole pool share lands on the venue as pending earnings, on top
	// of its direct 35% walk-in share.
	var venue payeeResponse
	env.get(t, "/api/payees/"+venueID, http.StatusOK, &venue)
	wantPending := int64(3500 + 3000)
	if venue.PendingEarnings != wantPending {
		t.Errorf("Venue pending = %d, want %d", venue.PendingEarnings, wantPending)
	}

	// Next period opens empty.
	var next poolPeriodResponse
	env.get(t, "/api/pool", http.StatusOK, &next)
	if next.ID == pool.ID || next.Balance != 0 {
		t.Errorf("Next period = %+v, want fresh period with zero balance", next)
	}

	t.Run("checkin for non-venue refused", func(t *testing.T) {
		affiliateID := env.createPayee(t, "affiliate", "promoter-a", false)
		env.post(t, "/api/checkins", map[string]string{"venue_id": affiliateID}, http.StatusBadRequest, nil)
	})
}
