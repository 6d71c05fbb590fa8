// Package order implements checkout and the order lifecycle state machine.
//
// Valid order status graph:
//
//	pending ──► paid ──► shipped ──► delivered
//	    │         │
//	    └─────────┴──► canceled
//
// delivered and canceled are terminal states. Payment status moves
// unpaid ──► paid ──► refunded independently of fulfilment.
package order

import "fmt"

// Status values mirror the orders.status column.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCanceled  Status = "canceled"
)

// PaymentStatus values mirror the orders.payment_status column.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// validTransitions lists every allowed (from → to) status pair.
var validTransitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusCanceled},
	StatusPaid:    {StatusShipped, StatusCanceled},
	StatusShipped: {StatusDelivered},
	// delivered and canceled are terminal — no outgoing transitions
}

// validPaymentTransitions lists the allowed payment-status pairs.
var validPaymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentUnpaid: {PaymentPaid},
	PaymentPaid:   {PaymentRefunded},
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCanceled:
		return st, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// ParsePaymentStatus converts a raw string to a PaymentStatus.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	ps := PaymentStatus(s)
	switch ps {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded:
		return ps, nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state — no outgoing transitions
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsPaymentTransitionAllowed returns true when moving from → to is a legal
// payment-status change.
func IsPaymentTransitionAllowed(from, to PaymentStatus) bool {
	for _, s := range validPaymentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanUserCancel reports whether the order owner may still cancel the order
// themselves. Once payment or fulfilment has started, only an admin can.
func CanUserCancel(s Status, p PaymentStatus) bool {
	return s == StatusPending && p == PaymentUnpaid
}

// IsTerminal reports whether the order can no longer change status.
func IsTerminal(s Status) bool {
	_, ok := validTransitions[s]
	return !ok
}
