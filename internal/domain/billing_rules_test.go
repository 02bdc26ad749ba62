package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPaymentToInvoice(t *testing.T) {
	inv := Invoice{Status: InvoicePending, BalanceDue: Money{Amount: 1000}}

	balance, status, err := ApplyPaymentToInvoice(inv, 400)
	require.NoError(t, err)
	assert.Equal(t, int64(600), balance)
	assert.Equal(t, InvoicePartial, status)

	inv.BalanceDue.Amount = balance
	inv.Status = status
	balance, status, err = ApplyPaymentToInvoice(inv, 600)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
	assert.Equal(t, InvoicePaid, status)
}

func TestApplyPaymentRejectsOverpayment(t *testing.T) {
	inv := Invoice{Status: InvoicePending, BalanceDue: Money{Amount: 500}}
	_, _, err := ApplyPaymentToInvoice(inv, 501)
	assert.ErrorIs(t, err, ErrPaymentExceedsDue)
}

func TestApplyPaymentRejectsNonPositive(t *testing.T) {
	inv := Invoice{Status: InvoicePending, BalanceDue: Money{Amount: 500}}
	_, _, err := ApplyPaymentToInvoice(inv, 0)
	assert.ErrorIs(t, err, ErrPaymentNotPositive)
	_, _, err = ApplyPaymentToInvoice(inv, -10)
	assert.ErrorIs(t, err, ErrPaymentNotPositive)
}

func TestApplyPaymentToSettledInvoice(t *testing.T) {
	inv := Invoice{Status: InvoicePaid, BalanceDue: Money{Amount: 0}}
	_, _, err := ApplyPaymentToInvoice(inv, 100)
	assert.ErrorIs(t, err, ErrInvoiceSettled)
}
