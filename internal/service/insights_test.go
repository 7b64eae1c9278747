package service

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eferbarn/solfolio/internal/types"
)

const wallet = "0xAAAA000000000000000000000000000000000000"

func leg(sender, recipient, symbol string, value *float64) types.Transfer {
	t := types.Transfer{
		Sender:    sender,
		Recipient: recipient,
		Direction: types.DirectionOut,
		Quantity:  types.Quantity{Numeric: "1"},
		Value:     value,
	}
	if symbol != "" {
		t.FungibleInfo = &types.FungibleInfo{Symbol: symbol, Name: symbol}
	}
	return t
}

func interaction(minedAt time.Time, transfers ...types.Transfer) types.Transaction {
	return tx(minedAt, types.OperationSend, types.StatusConfirmed, transfers, nil)
}

func TestAnalyzePartnersExcludesOwnAddress(t *testing.T) {
	transactions := []types.Transaction{
		interaction(t0, leg(wallet, "0xBBBB", "SOL", fptr(10))),
	}

	partners := AnalyzePartners(transactions, wallet, 0)
	if len(partners) != 1 {
		t.Fatalf("got %d partners, want 1", len(partners))
	}
	if partners[0].Address != "0xbbbb" {
		t.Errorf("partner = %q, want 0xbbbb", partners[0].Address)
	}
}

func TestAnalyzePartnersMergesCasing(t *testing.T) {
	transactions := []types.Transaction{
		interaction(t0, leg(wallet, "0xBBBB", "SOL", fptr(10))),
		interaction(t0.Add(time.Hour), leg(wallet, "0xbbBB", "SOL", fptr(5))),
	}

	partners := AnalyzePartners(transactions, wallet, 0)
	if len(partners) != 1 {
		t.Fatalf("got %d partners, want 1 merged entry", len(partners))
	}
	if partners[0].Count != 2 {
		t.Errorf("count = %d, want 2", partners[0].Count)
	}
	if !partners[0].TotalValue.Equal(decimal.NewFromInt(15)) {
		t.Errorf("total value = %s, want 15", partners[0].TotalValue)
	}
	if !partners[0].LastInteraction.Equal(t0.Add(time.Hour)) {
		t.Errorf("last interaction = %s, want %s", partners[0].LastInteraction, t0.Add(time.Hour))
	}
}

func TestAnalyzePartnersCountsOncePerTransaction(t *testing.T) {
	// The same counterparty on both legs of one transaction is one interaction.
	transactions := []types.Transaction{
		interaction(t0,
			leg(wallet, "0xbbbb", "SOL", fptr(10)),
			leg("0xbbbb", wallet, "USDC", fptr(10)),
		),
	}

	partners := AnalyzePartners(transactions, wallet, 0)
	if len(partners) != 1 || partners[0].Count != 1 {
		t.Fatalf("partners = %+v, want one entry with count 1", partners)
	}
	// Both legs' values accrue to the transaction total.
	if !partners[0].TotalValue.Equal(decimal.NewFromInt(20)) {
		t.Errorf("total value = %s, want 20", partners[0].TotalValue)
	}
}

func TestAnalyzePartnersSortAndLimit(t *testing.T) {
	var transactions []types.Transaction
	// 0xcccc: 3 interactions, 0xbbbb: 2, then 0xdddd and 0xeeee tied at 1
	// with 0xdddd discovered first.
	for i := 0; i < 3; i++ {
		transactions = append(transactions, interaction(t0.Add(time.Duration(i)*time.Minute), leg(wallet, "0xcccc", "SOL", fptr(1))))
	}
	for i := 0; i < 2; i++ {
		transactions = append(transactions, interaction(t0, leg(wallet, "0xbbbb", "SOL", fptr(1))))
	}
	transactions = append(transactions,
		interaction(t0, leg(wallet, "0xdddd", "SOL", fptr(1))),
		interaction(t0, leg(wallet, "0xeeee", "SOL", fptr(1))),
	)

	partners := AnalyzePartners(transactions, wallet, 0)
	got := make([]string, len(partners))
	for i, p := range partners {
		got[i] = p.Address
	}
	want := []string{"0xcccc", "0xbbbb", "0xdddd", "0xeeee"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}

	limited := AnalyzePartners(transactions, wallet, 2)
	if len(limited) != 2 || limited[0].Address != "0xcccc" || limited[1].Address != "0xbbbb" {
		t.Errorf("limited = %+v, want top two by count", limited)
	}
}

func TestAnalyzeAssetPreferences(t *testing.T) {
	transactions := []types.Transaction{
		interaction(t0,
			leg(wallet, "0xbbbb", "USDC", fptr(1)),
			leg(wallet, "0xbbbb", "BONK", fptr(1)),
		),
		interaction(t0,
			leg(wallet, "0xbbbb", "SOL", fptr(1)),
			leg(wallet, "0xbbbb", "SOL", fptr(1)),
		),
	}

	stats := AnalyzeAssetPreferences(transactions)
	if len(stats) != len(AllCategories) {
		t.Fatalf("got %d categories, want %d", len(stats), len(AllCategories))
	}

	byCategory := make(map[TokenCategory]CategoryStat)
	totalPercent := 0.0
	for _, s := range stats {
		byCategory[s.Category] = s
		totalPercent += s.Percentage
	}
	if math.Abs(totalPercent-100) > 1e-9 {
		t.Errorf("percentages sum to %f, want 100", totalPercent)
	}
	if byCategory[CategoryStablecoin].Count != 1 {
		t.Errorf("stablecoin count = %d, want 1", byCategory[CategoryStablecoin].Count)
	}
	if byCategory[CategoryMeme].Count != 1 {
		t.Errorf("meme count = %d, want 1", byCategory[CategoryMeme].Count)
	}
	if byCategory[CategoryToken].Count != 2 {
		t.Errorf("token count = %d, want 2", byCategory[CategoryToken].Count)
	}
}

func TestAnalyzeAssetPreferencesEmptyInput(t *testing.T) {
	stats := AnalyzeAssetPreferences(nil)
	for _, s := range stats {
		if s.Count != 0 || s.Percentage != 0 {
			t.Errorf("category %s has count=%d percentage=%f on empty input", s.Category, s.Count, s.Percentage)
		}
	}
}

func TestAnalyzeAssetPreferencesMissingFungibleInfo(t *testing.T) {
	bare := types.Transfer{Direction: types.DirectionIn, Value: fptr(1)}
	stats := AnalyzeAssetPreferences([]types.Transaction{interaction(t0, bare)})

	for _, s := range stats {
		if s.Category == CategoryToken && s.Count != 1 {
			t.Errorf("leg without fungible info counted as %s=%d, want Token=1", s.Category, s.Count)
		}
	}
}

func TestFindMostActiveAsset(t *testing.T) {
	transactions := []types.Transaction{
		interaction(t0, leg(wallet, "0xbbbb", "SOL", fptr(1)), leg(wallet, "0xbbbb", "USDC", fptr(1))),
		interaction(t0, leg(wallet, "0xbbbb", "SOL", fptr(1))),
	}

	asset := FindMostActiveAsset(transactions)
	if asset == nil || asset.Symbol != "SOL" || asset.Count != 2 {
		t.Errorf("most active = %+v, want SOL with count 2", asset)
	}
}

func TestFindMostActiveAssetTieKeepsFirstSeen(t *testing.T) {
	transactions := []types.Transaction{
		interaction(t0, leg(wallet, "0xbbbb", "USDC", fptr(1))),
		interaction(t0, leg(wallet, "0xbbbb", "SOL", fptr(1))),
	}

	asset := FindMostActiveAsset(transactions)
	if asset == nil || asset.Symbol != "USDC" {
		t.Errorf("most active = %+v, want first-seen USDC on tie", asset)
	}
}

func TestFindMostActiveAssetNoSymbols(t *testing.T) {
	bare := types.Transfer{Direction: types.DirectionIn, Value: fptr(1)}
	if asset := FindMostActiveAsset([]types.Transaction{interaction(t0, bare)}); asset != nil {
		t.Errorf("got %+v, want nil when no leg has a symbol", asset)
	}
}

func TestBuildTreeMapBucketsRemainder(t *testing.T) {
	var transactions []types.Transaction
	// Five partners with descending interaction counts 5..1.
	for p := 0; p < 5; p++ {
		addr := fmt.Sprintf("0xpartner%036d", p)
		for i := 0; i < 5-p; i++ {
			transactions = append(transactions, interaction(t0, leg(wallet, addr, "SOL", fptr(2))))
		}
	}

	nodes := BuildTreeMap(transactions, wallet, 3)
	if len(nodes) != 4 {
		t.Fatalf("got %d nodes, want 3 top partners plus others", len(nodes))
	}

	others := nodes[3]
	if others.Address != OthersAddress {
		t.Fatalf("trailing node address = %q, want %q", others.Address, OthersAddress)
	}
	// Remainder partners have 2 and 1 interactions.
	if others.Count != 3 || others.Size != 3 {
		t.Errorf("others count=%d size=%d, want 3/3", others.Count, others.Size)
	}
	if !others.Value.Equal(decimal.NewFromInt(6)) {
		t.Errorf("others value = %s, want 6", others.Value)
	}
	if others.Color != treemapPalette[len(treemapPalette)-1] {
		t.Errorf("others color = %s, want last palette entry", others.Color)
	}
	if others.LastInteraction != "" {
		t.Errorf("others carries last interaction %q", others.LastInteraction)
	}

	// Node counts plus others must account for every interaction.
	total := 0
	for _, n := range nodes {
		total += n.Count
	}
	if total != len(transactions) {
		t.Errorf("node counts sum to %d, want %d", total, len(transactions))
	}

	for i, n := range nodes[:3] {
		if n.Color != treemapPalette[i%len(treemapPalette)] {
			t.Errorf("node %d color = %s, want palette[%d]", i, n.Color, i%len(treemapPalette))
		}
		if n.Name == n.Address {
			t.Errorf("node %d name not shortened: %q", i, n.Name)
		}
	}
}

func TestBuildTreeMapNoOthersWhenAllFit(t *testing.T) {
	transactions := []types.Transaction{
		interaction(t0, leg(wallet, "0xbbbb", "SOL", fptr(1))),
		interaction(t0, leg(wallet, "0xcccc", "SOL", fptr(1))),
	}

	nodes := BuildTreeMap(transactions, wallet, 50)
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, want 2 with no others node", len(nodes))
	}
	for _, n := range nodes {
		if n.Address == OthersAddress {
			t.Errorf("unexpected others node: %+v", n)
		}
	}
}

func TestShortAddress(t *testing.T) {
	if got := shortAddress("0xABCDEF0123456789"); got != "0xAB...6789" {
		t.Errorf("shortAddress = %q, want 0xAB...6789", got)
	}
	if got := shortAddress("short"); got != "short" {
		t.Errorf("short input altered: %q", got)
	}
}

func TestGenerateInsights(t *testing.T) {
	transactions := []types.Transaction{
		interaction(t0, leg(wallet, "0xbbbb", "SOL", fptr(10))),
		interaction(t0, leg(wallet, "0xcccc", "USDC", fptr(5))),
		interaction(t0, leg(wallet, "0xbbbb", "SOL", fptr(2))),
	}

	result := GenerateInsights(transactions, wallet, 1, 50)
	if result.TotalTransactions != 3 {
		t.Errorf("total transactions = %d, want 3", result.TotalTransactions)
	}
	if result.UniquePartners != 2 {
		t.Errorf("unique partners = %d, want 2", result.UniquePartners)
	}
	if len(result.TopPartners) != 1 || result.TopPartners[0].Address != "0xbbbb" {
		t.Errorf("top partners = %+v, want only 0xbbbb", result.TopPartners)
	}
	if result.MostActiveAsset == nil || result.MostActiveAsset.Symbol != "SOL" {
		t.Errorf("most active asset = %+v, want SOL", result.MostActiveAsset)
	}
	if len(result.TreeMap) != 2 {
		t.Errorf("treemap has %d nodes, want 2", len(result.TreeMap))
	}
}

func TestGenerateInsightsTreeMapMatchesStandaloneBuild(t *testing.T) {
	var transactions []types.Transaction
	for p := 0; p < 6; p++ {
		addr := fmt.Sprintf("0xshared%037d", p)
		for i := 0; i <= p; i++ {
			transactions = append(transactions, interaction(t0, leg(wallet, addr, "SOL", fptr(1))))
		}
	}

	result := GenerateInsights(transactions, wallet, 10, 4)
	standalone := BuildTreeMap(transactions, wallet, 4)

	if len(result.TreeMap) != len(standalone) {
		t.Fatalf("node counts differ: %d vs %d", len(result.TreeMap), len(standalone))
	}
	for i := range standalone {
		got, want := result.TreeMap[i], standalone[i]
		if got.Address != want.Address || got.Count != want.Count ||
			got.Color != want.Color || !got.Value.Equal(want.Value) {
			t.Errorf("node %d differs: %+v vs %+v", i, got, want)
		}
	}
}
