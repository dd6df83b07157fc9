package domain

import "sort"

// LoadLevel classifies how busy the kitchen is from the active order count.
type LoadLevel string

const (
	LoadLight    LoadLevel = "light"
	LoadModerate LoadLevel = "moderate"
	LoadHeavy    LoadLevel = "heavy"
	LoadCritical LoadLevel = "critical"
)

// ClassifyLoad is the four-tier threshold preset used by the kitchen board.
func ClassifyLoad(active int) LoadLevel {
	switch {
	case active >= 15:
		return LoadCritical
	case active >= 10:
		return LoadHeavy
	case active >= 5:
		return LoadModerate
	default:
		return LoadLight
	}
}

// CoarseLoad is the coarser three-tier preset used by the header view. Both
// presets present the same metric at different granularities; neither is the
// authoritative one.
func CoarseLoad(active int) string {
	switch {
	case active > 10:
		return "Heavy"
	case active > 5:
		return "Moderate"
	default:
		return "Light"
	}
}

// Stats are the aggregate metrics recomputed from the full order collection
// on every change. Recomputation is cheap relative to collection size, so
// nothing is cached across mutations.
type Stats struct {
	Active               int       `json:"active"`
	Completed            int       `json:"completed"`
	Total                int       `json:"total"`
	AvgCompletionMinutes float64   `json:"avgCompletionMinutes"`
	Load                 LoadLevel `json:"load"`
}

// ComputeStats derives the aggregate metrics with ready as the terminal
// state. The completion-time mean covers only terminal orders carrying both
// timestamps with a non-negative duration; orders missing a timestamp are
// excluded from the mean, never counted as zero.
func ComputeStats(orders []Order) Stats {
	stats := Stats{Total: len(orders)}
	var totalMinutes float64
	var qualifying int
	for _, o := range orders {
		if o.Status != StatusReady {
			stats.Active++
			continue
		}
		stats.Completed++
		if o.ReceivedAt.IsZero() || o.CompletedAt.IsZero() {
			continue
		}
		d := o.CompletedAt.Sub(o.ReceivedAt)
		if d < 0 {
			continue
		}
		totalMinutes += d.Minutes()
		qualifying++
	}
	if qualifying > 0 {
		stats.AvgCompletionMinutes = totalMinutes / float64(qualifying)
	}
	stats.Load = ClassifyLoad(stats.Active)
	return stats
}

// ItemCount is one entry of the top-items leaderboard.
type ItemCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TopItems sums the ordered quantity per item name across the given orders
// and returns the n highest. The sort is stable, so names with equal counts
// keep first-encountered order.
func TopItems(orders []Order, n int) []ItemCount {
	counts := make(map[string]int)
	var names []string
	for _, o := range orders {
		for _, line := range o.Items {
			if _, seen := counts[line.Name]; !seen {
				names = append(names, line.Name)
			}
			counts[line.Name] += line.Quantity
		}
	}
	top := make([]ItemCount, 0, len(names))
	for _, name := range names {
		top = append(top, ItemCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	if n >= 0 && len(top) > n {
		top = top[:n]
	}
	return top
}
