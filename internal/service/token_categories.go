package service

import "strings"

// TokenCategory classifies an asset into one of a fixed closed set
type TokenCategory string

const (
	// CategoryStablecoin covers the known USD-pegged tokens
	CategoryStablecoin TokenCategory = "Stablecoin"
	// CategoryMeme covers meme tokens matched by keyword
	CategoryMeme TokenCategory = "Meme"
	// CategoryToken is the default for everything else
	CategoryToken TokenCategory = "Token"
)

// AllCategories lists every category in presentation order
var AllCategories = []TokenCategory{CategoryStablecoin, CategoryMeme, CategoryToken}

// stablecoins is a closed set matched against the upper-cased symbol
var stablecoins = map[string]struct{}{
	"USDT": {}, "USDC": {}, "DAI": {}, "BUSD": {}, "TUSD": {},
	"USDD": {}, "USDP": {}, "GUSD": {}, "PYUSD": {}, "FDUSD": {},
}

// memeKeywords are substring-matched against the upper-cased symbol and name
var memeKeywords = []string{
	"DOGE", "SHIB", "PEPE", "FLOKI", "BONK", "WIF", "MEME", "ELON",
	"WOJAK", "CHAD", "MOON", "SAFE", "INU", "BABY", "MINI",
}

// CategorizeToken classifies a token by symbol and display name. The
// stablecoin set takes priority over meme keyword matches.
func CategorizeToken(symbol, name string) TokenCategory {
	upperSymbol := strings.ToUpper(symbol)
	upperName := strings.ToUpper(name)

	if _, ok := stablecoins[upperSymbol]; ok {
		return CategoryStablecoin
	}
	for _, keyword := range memeKeywords {
		if strings.Contains(upperSymbol, keyword) || strings.Contains(upperName, keyword) {
			return CategoryMeme
		}
	}
	return CategoryToken
}

// CategoryColor returns the display color associated with a category
func CategoryColor(category TokenCategory) string {
	switch category {
	case CategoryStablecoin:
		return "#10b981"
	case CategoryMeme:
		return "#ef4444"
	default:
		return "#3b82f6"
	}
}
