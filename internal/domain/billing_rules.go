package domain

import "errors"

var (
	ErrPaymentNotPositive = errors.New("payment amount must be positive")
	ErrPaymentExceedsDue  = errors.New("payment exceeds balance due")
	ErrInvoiceSettled     = errors.New("invoice is already paid")
)

// ApplyPaymentToInvoice computes the balance and status after a payment.
// Overpayment is rejected rather than credited.
func ApplyPaymentToInvoice(inv Invoice, amount int64) (newBalance int64, newStatus InvoiceStatus, err error) {
	if inv.Status == InvoicePaid {
		return inv.BalanceDue.Amount, inv.Status, ErrInvoiceSettled
	}
	if amount <= 0 {
		return inv.BalanceDue.Amount, inv.Status, ErrPaymentNotPositive
	}
	if amount > inv.BalanceDue.Amount {
		return inv.BalanceDue.Amount, inv.Status, ErrPaymentExceedsDue
	}
	newBalance = inv.BalanceDue.Amount - amount
	if newBalance == 0 {
		return newBalance, InvoicePaid, nil
	}
	return newBalance, InvoicePartial, nil
}
