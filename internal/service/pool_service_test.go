package service

import (
	"context"
	"testing"

	"github.com/venuepulse/ledger/internal/models"
)

func TestPoolService(t *testing.T) {
	ctx := context.Background()

	t.Run("distributes proportionally to check-ins", func(t *testing.T) {
		store := newTestStore(t)
		purchases := NewPurchaseService(store)
		pool := NewPoolService(store)

		venueA := createPayee(t, store, models.PayeeKindVenue, "Venue A", true)
		venueB := createPayee(t, store, models.PayeeKindVenue, "Venue B", true)
		venueC := createPayee(t, store, models.PayeeKindVenue, "Venue C", true)

		// Accrue a pool balance of 100000 cents: 30% of ten 33334-cent
		// walk-ins is 10000 each... keep it simple and drive the pool via
		// purchases at Venue A only.
		for i := 0; i < 10; i++ {
			// 33334 * 30% = 10000.2 -> 10000 per purchase
			if _, err := purchases.RecordPurchase(ctx, venueA.ID, "", 33334); err != nil {
				t.Fatalf("RecordPurchase failed: %v", err)
			}
		}
		period, _, err := pool.CurrentPeriod(ctx)
		if err != nil {
			t.Fatalf("CurrentPeriod failed: %v", err)
		}
		if period.Balance != 100000 {
			t.Fatalf("pool balance = %d, want 100000", period.Balance)
		}

		checkinCounts := map[string]int{venueA.ID: 10, venueB.ID: 30, venueC.ID: 60}
		for venueID, n := range checkinCounts {
			for i := 0; i < n; i++ {
				if err := pool.RecordCheckin(ctx, venueID); err != nil {
					t.Fatalf("RecordCheckin failed: %v", err)
				}
			}
		}

		result, err := pool.Distribute(ctx)
		if err != nil {
			t.Fatalf("Distribute failed: %v", err)
		}
		if result.Distributed != 100000 || result.Carried != 0 {
			t.Errorf("distributed %d carried %d, want 100000 / 0", result.Distributed, result.Carried)
		}
		if result.VenuesCredited != 3 {
			t.Errorf("venues credited = %d, want 3", result.VenuesCredited)
		}

		wantPending := map[string]int64{venueA.ID: 10000, venueB.ID: 30000, venueC.ID: 60000}
		for venueID, want := range wantPending {
			got, err := store.GetPayee(ctx, venueID)
			if err != nil {
				t.Fatalf("GetPayee failed: %v", err)
			}
			// Venue A also holds its 35% venue shares from the purchases.
			pending := got.PendingEarnings
			if venueID == venueA.ID {
				pending -= 10 * 11667 // venue share of each 33334-cent walk-in
			}
			if pending != want {
				t.Errorf("venue %s pool credit = %d, want %d", venueID, pending, want)
			}
		}
	})

	t.Run("no check-ins carries the balance forward", func(t *testing.T) {
		store := newTestStore(t)
		purchases := NewPurchaseService(store)
		pool := NewPoolService(store)
		venue := createPayee(t, store, models.PayeeKindVenue, "Quiet Venue", true)

		if _, err := purchases.RecordPurchase(ctx, venue.ID, "", 10000); err != nil {
			t.Fatalf("RecordPurchase failed: %v", err)
		}

		result, err := pool.Distribute(ctx)
		if err != nil {
			t.Fatalf("Distribute failed: %v", err)
		}
		if result.Distributed != 0 || result.Carried != 3000 {
			t.Errorf("distributed %d carried %d, want 0 / 3000", result.Distributed, result.Carried)
		}

		next, _, err := pool.CurrentPeriod(ctx)
		if err != nil {
			t.Fatalf("CurrentPeriod failed: %v", err)
		}
		if next.ID == result.PeriodID {
			t.Error("period was not rotated")
		}
		if next.Balance != 3000 {
			t.Errorf("next period balance = %d, want 3000", next.Balance)
		}

		// The venue got its venue share but no pool credit.
		got, err := store.GetPayee(ctx, venue.ID)
		if err != nil {
			t.Fatalf("GetPayee failed: %v", err)
		}
		if got.PendingEarnings != 3500 {
			t.Errorf("venue pending = %d, want venue share 3500 only", got.PendingEarnings)
		}
	})

	t.Run("pool credits are payable like any referral", func(t *testing.T) {
		store := newTestStore(t)
		purchases := NewPurchaseService(store)
		pool := NewPoolService(store)
		payouts := NewPayoutService(store, nil)

		venue := createPayee(t, store, models.PayeeKindVenue, "Venue", true)
		if _, err := purchases.RecordPurchase(ctx, venue.ID, "", 10000); err != nil {
			t.Fatalf("RecordPurchase failed: %v", err)
		}
		if err := pool.RecordCheckin(ctx, venue.ID); err != nil {
			t.Fatalf("RecordCheckin failed: %v", err)
		}
		if _, err := pool.Distribute(ctx); err != nil {
			t.Fatalf("Distribute failed: %v", err)
		}

		// Venue share 3500 + full pool 3000.
		payout, err := payouts.MarkPayeePaid(ctx, venue.ID)
		if err != nil {
			t.Fatalf("MarkPayeePaid failed: %v", err)
		}
		if payout.Amount != 6500 {
			t.Errorf("payout amount = %d, want 6500", payout.Amount)
		}
	})

	t.Run("deleting a venue never wedges the distribution", func(t *testing.T) {
		store := newTestStore(t)
		purchases := NewPurchaseService(store)
		pool := NewPoolService(store)

		venueA := createPayee(t, store, models.PayeeKindVenue, "Venue A", true)
		venueB := createPayee(t, store, models.PayeeKindVenue, "Venue B", true)

		// 30% of 10000 from each venue's walk-in: pool balance 6000.
		for _, id := range []string{venueA.ID, venueB.ID} {
			if _, err := purchases.RecordPurchase(ctx, id, "", 10000); err != nil {
				t.Fatalf("RecordPurchase failed: %v", err)
			}
			if err := pool.RecordCheckin(ctx, id); err != nil {
				t.Fatalf("RecordCheckin failed: %v", err)
			}
		}

		if err := store.DeletePayee(ctx, venueB.ID); err != nil {
			t.Fatalf("DeletePayee failed: %v", err)
		}

		result, err := pool.Distribute(ctx)
		if err != nil {
			t.Fatalf("Distribute after delete failed: %v", err)
		}
		if result.VenuesCredited != 1 || result.Distributed != 6000 {
			t.Errorf("result = %+v, want full 6000 to the surviving venue", result)
		}

		got, err := store.GetPayee(ctx, venueA.ID)
		if err != nil {
			t.Fatalf("GetPayee failed: %v", err)
		}
		// Venue share 3500 + the whole pool.
		if got.PendingEarnings != 3500+6000 {
			t.Errorf("venue A pending = %d, want 9500", got.PendingEarnings)
		}

		next, _, err := pool.CurrentPeriod(ctx)
		if err != nil {
			t.Fatalf("CurrentPeriod failed: %v", err)
		}
		if next.ID == result.PeriodID || next.Balance != 0 {
			t.Errorf("next period = %+v, want fresh period with zero balance", next)
		}
	})

	t.Run("check-in for a non-venue refused", func(t *testing.T) {
		store := newTestStore(t)
		pool := NewPoolService(store)
		affiliate := createPayee(t, store, models.PayeeKindAffiliate, "Affiliate", true)

		if err := pool.RecordCheckin(ctx, affiliate.ID); err == nil {
			t.Error("expected error recording check-in for an affiliate")
		}
	})
}
