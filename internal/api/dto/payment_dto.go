package dto

// InitializePaymentRequest payload for starting a payment.
type InitializePaymentRequest struct {
	Provider string  `json:"provider"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Email    string  `json:"email"`
}

// PaymentTransactionResponse is the relayed view of a local transaction.
type PaymentTransactionResponse struct {
	Reference string  `json:"reference"`
	Provider  string  `json:"provider"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Status    string  `json:"status"`
	Reason    string  `json:"reason,omitempty"`
}
