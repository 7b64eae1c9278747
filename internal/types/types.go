// Package types provides common type definitions for the solfolio service.
package types

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// TransactionStatus represents the execution status reported by the ledger API
type TransactionStatus string

const (
	// StatusConfirmed represents a confirmed transaction
	StatusConfirmed TransactionStatus = "confirmed"
	// StatusFailed represents a failed transaction
	StatusFailed TransactionStatus = "failed"
	// StatusPending represents a transaction not yet mined
	StatusPending TransactionStatus = "pending"
)

// TransferDirection represents whether a transfer moves value into or out of the wallet
type TransferDirection string

const (
	// DirectionIn represents an incoming transfer (wallet is recipient)
	DirectionIn TransferDirection = "in"
	// DirectionOut represents an outgoing transfer (wallet is sender)
	DirectionOut TransferDirection = "out"
)

// OperationType represents the ledger API's classification of a transaction
type OperationType string

const (
	// OperationTrade represents a trade executed through an exchange
	OperationTrade OperationType = "trade"
	// OperationSwap represents a token swap
	OperationSwap OperationType = "swap"
	// OperationSend represents a plain outgoing transfer
	OperationSend OperationType = "send"
	// OperationReceive represents a plain incoming transfer
	OperationReceive OperationType = "receive"
)

// IsRealizing reports whether the operation type can realize profit or loss.
// Only two-sided exchange operations qualify.
func (o OperationType) IsRealizing() bool {
	return o == OperationTrade || o == OperationSwap
}

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Quantity represents an asset amount as delivered by the ledger API.
// Numeric carries the full-precision decimal string and is the only field
// balance arithmetic may use; Float is display-only.
type Quantity struct {
	Int      string  `json:"int"`
	Decimals int     `json:"decimals"`
	Float    float64 `json:"float"`
	Numeric  string  `json:"numeric"`
}

// Decimal parses the full-precision numeric string. Returns zero and false
// when the string is absent or malformed.
func (q Quantity) Decimal() (decimal.Decimal, bool) {
	if q.Numeric == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(q.Numeric)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FungibleInfo identifies the asset behind a transfer or fee
type FungibleInfo struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Transfer represents one leg of a transaction
type Transfer struct {
	FungibleInfo *FungibleInfo     `json:"fungible_info,omitempty"`
	Direction    TransferDirection `json:"direction"`
	Quantity     Quantity          `json:"quantity"`
	Value        *float64          `json:"value"` // USD valuation, nullable
	Price        *float64          `json:"price,omitempty"`
	Sender       string            `json:"sender,omitempty"`
	Recipient    string            `json:"recipient,omitempty"`
}

// Symbol returns the transfer's asset symbol, or "" when unknown
func (t *Transfer) Symbol() string {
	if t.FungibleInfo == nil {
		return ""
	}
	return t.FungibleInfo.Symbol
}

// USDValue returns the transfer's USD valuation as a decimal, and whether one
// is attached.
func (t *Transfer) USDValue() (decimal.Decimal, bool) {
	if t.Value == nil {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(*t.Value), true
}

// Fee represents the network fee attached to a transaction
type Fee struct {
	FungibleInfo *FungibleInfo `json:"fungible_info,omitempty"`
	Quantity     Quantity      `json:"quantity"`
	Value        *float64      `json:"value"`
}

// TransactionAttributes holds the ledger API's per-transaction payload
type TransactionAttributes struct {
	OperationType OperationType     `json:"operation_type"`
	Hash          string            `json:"hash"`
	MinedAt       time.Time         `json:"mined_at"`
	CreatedAt     time.Time         `json:"created_at"`
	SentFrom      string            `json:"sent_from"`
	SentTo        string            `json:"sent_to"`
	Status        TransactionStatus `json:"status"`
	Transfers     []Transfer        `json:"transfers"`
	Fee           *Fee              `json:"fee,omitempty"`
}

// Transaction represents one transaction record as fetched from the ledger
// API. Immutable once fetched.
type Transaction struct {
	ID         string                `json:"id"`
	Type       string                `json:"type"`
	Attributes TransactionAttributes `json:"attributes"`
}

// EffectiveTime returns the transaction's ordering timestamp: mined time,
// falling back to created time for transactions never mined.
func (t *Transaction) EffectiveTime() time.Time {
	if !t.Attributes.MinedAt.IsZero() {
		return t.Attributes.MinedAt
	}
	return t.Attributes.CreatedAt
}

// solanaAddressChars is the base58 alphabet (no 0, O, I, l)
const solanaAddressChars = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// ValidateWalletAddress checks that an address is plausibly a wallet address
// on one of the supported chains: an EVM hex address or a base58-encoded
// Solana public key.
func ValidateWalletAddress(address string) bool {
	if address == "" {
		return false
	}
	if strings.HasPrefix(address, "0x") || strings.HasPrefix(address, "0X") {
		return common.IsHexAddress(address)
	}
	if len(address) < 32 || len(address) > 44 {
		return false
	}
	for _, c := range address {
		if !strings.ContainsRune(solanaAddressChars, c) {
			return false
		}
	}
	return true
}
