package types

import (
	"testing"
	"time"
)

func TestQuantityDecimal(t *testing.T) {
	tests := []struct {
		name    string
		numeric string
		want    string
		ok      bool
	}{
		{"integer", "10", "10", true},
		{"fractional", "0.000001234", "0.000001234", true},
		{"empty", "", "0", false},
		{"malformed", "not-a-number", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Quantity{Numeric: tt.numeric}
			d, ok := q.Decimal()
			if ok != tt.ok {
				t.Fatalf("Decimal() ok = %v, want %v", ok, tt.ok)
			}
			if d.String() != tt.want {
				t.Errorf("Decimal() = %s, want %s", d.String(), tt.want)
			}
		})
	}
}

func TestEffectiveTimeFallsBackToCreatedAt(t *testing.T) {
	mined := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	created := time.Date(2024, 3, 1, 11, 59, 0, 0, time.UTC)

	tx := Transaction{Attributes: TransactionAttributes{MinedAt: mined, CreatedAt: created}}
	if got := tx.EffectiveTime(); !got.Equal(mined) {
		t.Errorf("EffectiveTime() = %v, want mined time %v", got, mined)
	}

	tx.Attributes.MinedAt = time.Time{}
	if got := tx.EffectiveTime(); !got.Equal(created) {
		t.Errorf("EffectiveTime() = %v, want created time %v", got, created)
	}
}

func TestOperationTypeIsRealizing(t *testing.T) {
	if !OperationTrade.IsRealizing() || !OperationSwap.IsRealizing() {
		t.Error("trade and swap must be realizing operations")
	}
	if OperationSend.IsRealizing() || OperationReceive.IsRealizing() {
		t.Error("send and receive must not be realizing operations")
	}
}

func TestValidateWalletAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    bool
	}{
		{"evm address", "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", true},
		{"evm address uppercase prefix", "0X742d35Cc6634C0532925a3b844Bc454e4438f44e", true},
		{"evm address too short", "0x742d35", false},
		{"solana address", "4Nd1mYQJLQnYtqt7hXW8xZ5Sx2VFGyzBmg8fEJ2TgHqk", true},
		{"solana address too short", "4Nd1mYQJ", false},
		{"solana address bad characters", "4Nd1mYQJLQnYtqt7hXW8xZ5Sx2VFGyzBmg8fEJ0OIl", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateWalletAddress(tt.address); got != tt.want {
				t.Errorf("ValidateWalletAddress(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}
