package service

import "testing"

func TestCategorizeToken(t *testing.T) {
	tests := []struct {
		name   string
		symbol string
		token  string
		want   TokenCategory
	}{
		{"exact stablecoin", "USDC", "USD Coin", CategoryStablecoin},
		{"stablecoin lowercase symbol", "usdt", "Tether USD", CategoryStablecoin},
		{"meme by symbol keyword", "BONK", "Bonk", CategoryMeme},
		{"meme by name keyword", "DG", "Doge Killer", CategoryMeme},
		{"meme substring in symbol", "BABYPEPE", "Some Token", CategoryMeme},
		{"meme lowercase", "wif", "dogwifhat", CategoryMeme},
		{"plain token", "SOL", "Solana", CategoryToken},
		{"empty strings", "", "", CategoryToken},
		// USDD is in the stablecoin set even though no keyword matches;
		// a stablecoin whose name contains a meme keyword still classifies
		// as stablecoin.
		{"stablecoin beats meme keyword", "USDT", "Tether Moon Edition", CategoryStablecoin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategorizeToken(tt.symbol, tt.token); got != tt.want {
				t.Errorf("CategorizeToken(%q, %q) = %s, want %s", tt.symbol, tt.token, got, tt.want)
			}
		})
	}
}

func TestCategoryColorCoversAllCategories(t *testing.T) {
	seen := make(map[string]TokenCategory)
	for _, category := range AllCategories {
		color := CategoryColor(category)
		if color == "" {
			t.Errorf("no color for category %s", category)
		}
		if prev, ok := seen[color]; ok {
			t.Errorf("categories %s and %s share color %s", prev, category, color)
		}
		seen[color] = category
	}
}
