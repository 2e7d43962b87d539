package domain

import "context"

// PaymentTransaction is the provider-side registration of a checkout.
type PaymentTransaction struct {
	PaymentID   string
	Amount      int64 // minor units
	Currency    string
	Email       string
	Phone       string
	OrderID     string
	ReturnURL   string
	CancelURL   string
}

// PaymentGateway abstracts the external payment provider. The order must
// exist before its id can be embedded in a payment identifier, hence the
// two-step id assignment.
type PaymentGateway interface {
	// ProvisionalPaymentID mints an identifier usable before the order row
	// exists.
	ProvisionalPaymentID() string
	// PaymentIDFor mints the final identifier encoding the order id.
	PaymentIDFor(orderID string) string
	// RedirectURL is where the shopper is sent to complete payment.
	RedirectURL(paymentID string) string
	// Register announces the transaction to the provider. Implementations
	// may be local no-ops when no provider endpoint is configured.
	Register(ctx context.Context, tx *PaymentTransaction) error
}
