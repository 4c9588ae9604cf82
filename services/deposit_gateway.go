package services

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// DepositNotification is the payload the payment provider posts back once a
// deposit transaction changes state. OrderID carries the reservation code.
type DepositNotification struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	PaymentType       string `json:"payment_type"`
}

// DepositGateway verifies provider callbacks.
type DepositGateway struct {
	serverKey string
}

func NewDepositGateway(serverKey string) *DepositGateway {
	return &DepositGateway{serverKey: serverKey}
}

// Configured -> false kalau server key belum di-set, callback ditolak
func (g *DepositGateway) Configured() bool {
	return g != nil && g.serverKey != ""
}

// Signature -> sha512(order_id + status_code + gross_amount + server_key)
func (g *DepositGateway) Signature(orderID, statusCode, grossAmount string) string {
	hash := sha512.New()
	hash.Write([]byte(orderID + statusCode + grossAmount + g.serverKey))
	return hex.EncodeToString(hash.Sum(nil))
}

// ValidateSignature validates the provider signature
func (g *DepositGateway) ValidateSignature(n DepositNotification) bool {
	if !g.Configured() {
		return false
	}
	expected := g.Signature(n.OrderID, n.StatusCode, n.GrossAmount)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(n.SignatureKey))) == 1
}

// MapTransactionStatus maps provider status to payment status
func MapTransactionStatus(status string) string {
	switch status {
	case "capture", "settlement":
		return "success"
	case "pending", "authorize":
		return "pending"
	case "deny", "cancel", "expire", "failure":
		return "failed"
	default:
		return "unknown"
	}
}

// Confirmation converts a verified, successful notification into the input
// of ReservationService.ConfirmDeposit.
func (g *DepositGateway) Confirmation(n DepositNotification) (DepositConfirmation, error) {
	if !g.ValidateSignature(n) {
		return DepositConfirmation{}, fmt.Errorf("%w: invalid signature", ErrForbidden)
	}
	if MapTransactionStatus(n.TransactionStatus) != "success" {
		return DepositConfirmation{}, fmt.Errorf("%w: transaction status %q is not a settlement", ErrInvalidState, n.TransactionStatus)
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(n.GrossAmount), 64)
	if err != nil {
		return DepositConfirmation{}, invalid("gross_amount", "must be numeric")
	}
	provider := "midtrans"
	if n.PaymentType != "" {
		provider = "midtrans:" + n.PaymentType
	}
	return DepositConfirmation{
		Code:      n.OrderID,
		Amount:    amount,
		Reference: n.TransactionID,
		Provider:  provider,
	}, nil
}
