package core

const (
	HealthHealthy      Health = "healthy"
	HealthStable       Health = "stable"
	HealthOverspending Health = "overspending"
)

// Health is the three-tier spending classification shown on the
// dashboard.
type Health string

// Analytics aggregates the whole transaction history of an account:
// its own log plus every target's log.
type Analytics struct {
	TotalSaved int64   `json:"total_saved"`
	TotalSpent int64   `json:"total_spent"`
	Ratio      float64 `json:"ratio"` // spent/saved * 100
	Health     Health  `json:"health"`
}

// ComputeAnalytics derives totals and the spending classification.
// Pure and deterministic; recomputed on every dashboard refresh.
func ComputeAnalytics(a *Account) Analytics {
	var saved, spent int64
	tally := func(log []Transaction) {
		for _, tx := range log {
			switch tx.Kind {
			case TxSave:
				saved += tx.Amount
			case TxSpend:
				spent += tx.Amount
			}
		}
	}
	tally(a.Log)
	for _, t := range a.Targets {
		tally(t.Log)
	}

	var ratio float64
	if saved > 0 {
		ratio = float64(spent) / float64(saved) * 100
	}
	return Analytics{
		TotalSaved: saved,
		TotalSpent: spent,
		Ratio:      ratio,
		Health:     classify(ratio),
	}
}

// classify maps the spend/save ratio to a health tier:
// below 30 healthy, 30-60 stable, above 60 overspending.
func classify(ratio float64) Health {
	switch {
	case ratio < 30:
		return HealthHealthy
	case ratio <= 60:
		return HealthStable
	default:
		return HealthOverspending
	}
}
