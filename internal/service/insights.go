package service

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eferbarn/solfolio/internal/types"
)

// PartnerStat describes one counterparty's interaction history with the
// analyzed wallet. The wallet's own address never appears as an entry.
type PartnerStat struct {
	Address         string          `json:"address"`
	Count           int             `json:"count"`
	TotalValue      decimal.Decimal `json:"totalValue"`
	LastInteraction time.Time       `json:"lastInteraction"`
}

// CategoryStat is the per-category share of transfer legs
type CategoryStat struct {
	Category   TokenCategory `json:"category"`
	Count      int           `json:"count"`
	Percentage float64       `json:"percentage"`
	Color      string        `json:"color"`
}

// MostActiveAsset is the asset with the highest transfer-leg count
type MostActiveAsset struct {
	Symbol string `json:"symbol"`
	Count  int    `json:"count"`
}

// TreeMapNode is one cell of the most-interacted-wallets treemap. The
// trailing aggregate node uses the sentinel address "others" and carries no
// last-interaction timestamp.
type TreeMapNode struct {
	Name            string          `json:"name"`
	Address         string          `json:"address"`
	Count           int             `json:"count"`
	Value           decimal.Decimal `json:"value"`
	Size            int             `json:"size"`
	Color           string          `json:"color"`
	LastInteraction string          `json:"lastInteraction"`
}

// InsightsResult is the combined outcome of all aggregation passes
type InsightsResult struct {
	TopPartners       []PartnerStat    `json:"topPartners"`
	AssetPreferences  []CategoryStat   `json:"assetPreferences"`
	TotalTransactions int              `json:"totalTransactions"`
	UniquePartners    int              `json:"uniquePartners"`
	MostActiveAsset   *MostActiveAsset `json:"mostActiveAsset"`
	TreeMap           []TreeMapNode    `json:"treeMapData"`
}

// OthersAddress is the sentinel address of the aggregated treemap node
const OthersAddress = "others"

// treemapPalette assigns node colors by index; the last entry is reserved
// for the aggregated "others" node.
var treemapPalette = []string{
	"#3b82f6", // blue
	"#10b981", // green
	"#f59e0b", // amber
	"#ef4444", // red
	"#8b5cf6", // violet
	"#ec4899", // pink
	"#06b6d4", // cyan
	"#f97316", // orange
	"#14b8a6", // teal
	"#6b7280", // gray
}

// AnalyzePartners aggregates counterparty statistics over a transaction set.
// Addresses are normalized to lowercase up front so casing differences cannot
// split or double count a counterparty, and the analyzed wallet's own address
// is excluded. Each transaction contributes one interaction per distinct
// counterparty it touches, plus the transaction's total transfer value.
// Results are sorted descending by interaction count; ties keep discovery
// order. A limit <= 0 returns the full set.
func AnalyzePartners(transactions []types.Transaction, walletAddress string, limit int) []PartnerStat {
	ownAddress := strings.ToLower(walletAddress)

	stats := make(map[string]*PartnerStat)
	var order []string // discovery order, for stable tie-breaking

	for i := range transactions {
		attrs := &transactions[i].Attributes

		partners := make(map[string]struct{})
		txValue := decimal.Zero
		for j := range attrs.Transfers {
			transfer := &attrs.Transfers[j]
			if sender := strings.ToLower(transfer.Sender); sender != "" {
				partners[sender] = struct{}{}
			}
			if recipient := strings.ToLower(transfer.Recipient); recipient != "" {
				partners[recipient] = struct{}{}
			}
			if value, ok := transfer.USDValue(); ok {
				txValue = txValue.Add(value)
			}
		}

		for partner := range partners {
			if partner == ownAddress {
				continue
			}
			stat, ok := stats[partner]
			if !ok {
				stat = &PartnerStat{Address: partner, TotalValue: decimal.Zero}
				stats[partner] = stat
				order = append(order, partner)
			}
			stat.Count++
			stat.TotalValue = stat.TotalValue.Add(txValue)
			stat.LastInteraction = attrs.MinedAt
		}
	}

	result := make([]PartnerStat, 0, len(order))
	for _, address := range order {
		result = append(result, *stats[address])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// AnalyzeAssetPreferences classifies every transfer leg into a token category
// and returns per-category counts and leg-share percentages. Percentages are
// zero when there are no legs at all.
func AnalyzeAssetPreferences(transactions []types.Transaction) []CategoryStat {
	counts := make(map[TokenCategory]int, len(AllCategories))
	totalLegs := 0

	for i := range transactions {
		for j := range transactions[i].Attributes.Transfers {
			transfer := &transactions[i].Attributes.Transfers[j]
			var symbol, name string
			if transfer.FungibleInfo != nil {
				symbol = transfer.FungibleInfo.Symbol
				name = transfer.FungibleInfo.Name
			}
			counts[CategorizeToken(symbol, name)]++
			totalLegs++
		}
	}

	result := make([]CategoryStat, 0, len(AllCategories))
	for _, category := range AllCategories {
		count := counts[category]
		percentage := 0.0
		if totalLegs > 0 {
			percentage = float64(count) / float64(totalLegs) * 100
		}
		result = append(result, CategoryStat{
			Category:   category,
			Count:      count,
			Percentage: percentage,
			Color:      CategoryColor(category),
		})
	}
	return result
}

// FindMostActiveAsset counts transfer legs per asset symbol and returns the
// most frequent one. Ties break toward the first-encountered symbol. Returns
// nil when no leg carries a symbol.
func FindMostActiveAsset(transactions []types.Transaction) *MostActiveAsset {
	counts := make(map[string]int)
	var order []string

	for i := range transactions {
		for j := range transactions[i].Attributes.Transfers {
			symbol := transactions[i].Attributes.Transfers[j].Symbol()
			if symbol == "" {
				continue
			}
			if _, ok := counts[symbol]; !ok {
				order = append(order, symbol)
			}
			counts[symbol]++
		}
	}

	if len(order) == 0 {
		return nil
	}

	best := order[0]
	for _, symbol := range order[1:] {
		if counts[symbol] > counts[best] {
			best = symbol
		}
	}
	return &MostActiveAsset{Symbol: best, Count: counts[best]}
}

// BuildTreeMap buckets counterparties into treemap nodes: the topN partners
// by interaction count become individual nodes, everyone else collapses into
// one trailing "others" node whose count and value are plain sums. The
// "others" node is appended only when a remainder exists.
func BuildTreeMap(transactions []types.Transaction, walletAddress string, topN int) []TreeMapNode {
	return treeMapNodes(AnalyzePartners(transactions, walletAddress, 0), topN)
}

// treeMapNodes renders an already-aggregated partner list into treemap nodes
func treeMapNodes(partners []PartnerStat, topN int) []TreeMapNode {
	top := partners
	if topN > 0 && len(top) > topN {
		top = top[:topN]
	}

	nodes := make([]TreeMapNode, 0, len(top)+1)
	for i, partner := range top {
		nodes = append(nodes, TreeMapNode{
			Name:            shortAddress(partner.Address),
			Address:         partner.Address,
			Count:           partner.Count,
			Value:           partner.TotalValue,
			Size:            partner.Count,
			Color:           treemapPalette[i%len(treemapPalette)],
			LastInteraction: formatInteractionTime(partner.LastInteraction),
		})
	}

	if len(partners) > len(top) {
		othersCount := 0
		othersValue := decimal.Zero
		for _, partner := range partners[len(top):] {
			othersCount += partner.Count
			othersValue = othersValue.Add(partner.TotalValue)
		}
		nodes = append(nodes, TreeMapNode{
			Name:    "Others",
			Address: OthersAddress,
			Count:   othersCount,
			Value:   othersValue,
			Size:    othersCount,
			Color:   treemapPalette[len(treemapPalette)-1],
		})
	}

	return nodes
}

// GenerateInsights runs every aggregation pass over one transaction set. The
// partner aggregation is computed once and shared between the top-partners
// list and the treemap.
func GenerateInsights(transactions []types.Transaction, walletAddress string, topPartners, treemapTopN int) InsightsResult {
	partners := AnalyzePartners(transactions, walletAddress, 0)

	top := partners
	if topPartners > 0 && len(top) > topPartners {
		top = top[:topPartners]
	}

	return InsightsResult{
		TopPartners:       top,
		AssetPreferences:  AnalyzeAssetPreferences(transactions),
		TotalTransactions: len(transactions),
		UniquePartners:    len(partners),
		MostActiveAsset:   FindMostActiveAsset(transactions),
		TreeMap:           treeMapNodes(partners, treemapTopN),
	}
}

// shortAddress renders an address as its leading and trailing four characters
func shortAddress(address string) string {
	if len(address) <= 8 {
		return address
	}
	return address[:4] + "..." + address[len(address)-4:]
}

func formatInteractionTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
