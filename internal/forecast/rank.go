package forecast

import (
	"sort"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
)

// RankByAbsoluteGrowth orders brands by absolute growth, largest first, with
// ties broken by brand name. n <= 0 keeps every brand.
func RankByAbsoluteGrowth(rows []models.BrandGrowth, n int) []models.BrandGrowth {
	out := make([]models.BrandGrowth, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AbsoluteGrowth != out[j].AbsoluteGrowth {
			return out[i].AbsoluteGrowth > out[j].AbsoluteGrowth
		}
		return out[i].Brand < out[j].Brand
	})
	return truncate(out, n)
}

// RankByGrowthPct orders brands by growth percentage, largest first, with
// ties broken by brand name. Brands without a defined percentage are left
// out. n <= 0 keeps every brand.
func RankByGrowthPct(rows []models.BrandGrowth, n int) []models.BrandGrowth {
	out := make([]models.BrandGrowth, 0, len(rows))
	for _, r := range rows {
		if r.GrowthPct != nil {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := *out[i].GrowthPct, *out[j].GrowthPct
		if a != b {
			return a > b
		}
		return out[i].Brand < out[j].Brand
	})
	return truncate(out, n)
}

func truncate(rows []models.BrandGrowth, n int) []models.BrandGrowth {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}

// CategoryLeaders builds the per-category leaderboard from brand actuals:
// descending last-month sales, ties by brand name, at most size brands.
// Categories with fewer brands keep all of them.
func CategoryLeaders(actuals []*Actual, size int) models.CategoryLeaderboard {
	groups := make(map[string][]models.LeaderEntry)
	for _, a := range actuals {
		cat := a.Category
		if cat == "" {
			cat = UncategorizedLabel
		}
		groups[cat] = append(groups[cat], models.LeaderEntry{Brand: a.Brand, Sales: a.Total})
	}

	board := make(models.CategoryLeaderboard, len(groups))
	for cat, entries := range groups {
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Sales != entries[j].Sales {
				return entries[i].Sales > entries[j].Sales
			}
			return entries[i].Brand < entries[j].Brand
		})
		if size > 0 && len(entries) > size {
			entries = entries[:size]
		}
		board[cat] = entries
	}
	return board
}

// UncategorizedLabel groups brands whose rows carry no category.
const UncategorizedLabel = "Uncategorized"
