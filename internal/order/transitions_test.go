package order_test

import (
	"testing"

	"clyst/marketplace-service/internal/order"
)

// ── ParseStatus / ParsePaymentStatus ────────────────────────────────────────

func TestParseStatus_ValidValues(t *testing.T) {
	valid := []string{"pending", "paid", "shipped", "delivered", "canceled"}
	for _, s := range valid {
		got, err := order.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValue(t *testing.T) {
	for _, s := range []string{"", "PENDING", "returned", "cancelled"} {
		if _, err := order.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

func TestParsePaymentStatus(t *testing.T) {
	for _, s := range []string{"unpaid", "paid", "refunded"} {
		got, err := order.ParsePaymentStatus(s)
		if err != nil {
			t.Errorf("ParsePaymentStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParsePaymentStatus(%q) = %q, want %q", s, got, s)
		}
	}
	if _, err := order.ParsePaymentStatus("pending"); err == nil {
		t.Error("ParsePaymentStatus(\"pending\") expected error, got nil")
	}
}

// ── IsTransitionAllowed — valid (forward) transitions ──────────────────────

func TestIsTransitionAllowed_ValidForward(t *testing.T) {
	cases := []struct {
		from order.Status
		to   order.Status
	}{
		{order.StatusPending, order.StatusPaid},
		{order.StatusPaid, order.StatusShipped},
		{order.StatusShipped, order.StatusDelivered},
	}
	for _, c := range cases {
		if !order.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be true", c.from, c.to)
		}
	}
}

// ── IsTransitionAllowed — cancellation windows ──────────────────────────────

func TestIsTransitionAllowed_Cancellation(t *testing.T) {
	cancellable := []order.Status{order.StatusPending, order.StatusPaid}
	for _, from := range cancellable {
		if !order.IsTransitionAllowed(from, order.StatusCanceled) {
			t.Errorf("IsTransitionAllowed(%s → canceled) should be true", from)
		}
	}
	// Once shipped, cancellation is off the table.
	if order.IsTransitionAllowed(order.StatusShipped, order.StatusCanceled) {
		t.Error("IsTransitionAllowed(shipped → canceled) should be false")
	}
}

// ── IsTransitionAllowed — terminal states have no outgoing transitions ──────

func TestIsTransitionAllowed_FromTerminal(t *testing.T) {
	terminals := []order.Status{order.StatusDelivered, order.StatusCanceled}
	targets := []order.Status{
		order.StatusPending, order.StatusPaid, order.StatusShipped,
		order.StatusDelivered, order.StatusCanceled,
	}
	for _, from := range terminals {
		if !order.IsTerminal(from) {
			t.Errorf("IsTerminal(%s) should be true", from)
		}
		for _, to := range targets {
			if order.IsTransitionAllowed(from, to) {
				t.Errorf("IsTransitionAllowed(%s → %s) should be false (terminal state)", from, to)
			}
		}
	}
}

// ── IsTransitionAllowed — skip-level and backwards movements ────────────────

func TestIsTransitionAllowed_SkipLevelAndBackwards(t *testing.T) {
	cases := []struct {
		from order.Status
		to   order.Status
	}{
		{order.StatusPending, order.StatusShipped},   // skip paid
		{order.StatusPending, order.StatusDelivered}, // skip two
		{order.StatusPaid, order.StatusDelivered},    // skip shipped
		{order.StatusPaid, order.StatusPending},      // backwards
		{order.StatusShipped, order.StatusPaid},      // backwards
	}
	for _, c := range cases {
		if order.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false", c.from, c.to)
		}
	}
}

// ── Payment transitions ─────────────────────────────────────────────────────

func TestIsPaymentTransitionAllowed(t *testing.T) {
	if !order.IsPaymentTransitionAllowed(order.PaymentUnpaid, order.PaymentPaid) {
		t.Error("unpaid → paid should be allowed")
	}
	if !order.IsPaymentTransitionAllowed(order.PaymentPaid, order.PaymentRefunded) {
		t.Error("paid → refunded should be allowed")
	}
	forbidden := []struct {
		from order.PaymentStatus
		to   order.PaymentStatus
	}{
		{order.PaymentUnpaid, order.PaymentRefunded}, // cannot refund what was never paid
		{order.PaymentPaid, order.PaymentUnpaid},
		{order.PaymentRefunded, order.PaymentPaid},
		{order.PaymentRefunded, order.PaymentUnpaid},
	}
	for _, c := range forbidden {
		if order.IsPaymentTransitionAllowed(c.from, c.to) {
			t.Errorf("IsPaymentTransitionAllowed(%s → %s) should be false", c.from, c.to)
		}
	}
}

// ── CanUserCancel ───────────────────────────────────────────────────────────

func TestCanUserCancel(t *testing.T) {
	if !order.CanUserCancel(order.StatusPending, order.PaymentUnpaid) {
		t.Error("pending + unpaid should be user-cancellable")
	}
	denied := []struct {
		s order.Status
		p order.PaymentStatus
	}{
		{order.StatusPending, order.PaymentPaid},
		{order.StatusPaid, order.PaymentPaid},
		{order.StatusShipped, order.PaymentPaid},
		{order.StatusDelivered, order.PaymentPaid},
		{order.StatusCanceled, order.PaymentUnpaid},
	}
	for _, c := range denied {
		if order.CanUserCancel(c.s, c.p) {
			t.Errorf("CanUserCancel(%s, %s) should be false", c.s, c.p)
		}
	}
}
