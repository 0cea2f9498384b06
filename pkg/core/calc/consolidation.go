package calc

import (
	"fmt"
	"log"
	"math"
	"strings"

	"financial_normalizer/pkg/models"
)

// Consolidation modes.
const (
	ConsolidateSum  = "sum"  // group and sum, no elimination logic
	ConsolidateFull = "full" // eliminate intercompany accounts, then group
)

// intercompanyTolerance is the absolute amount within which receivable and
// payable totals must net to zero for an elimination entry to be emitted.
const intercompanyTolerance = 1.0

// ConsolidationEngine merges multiple entities' GL record sets and strips
// intercompany activity.
type ConsolidationEngine struct {
	entities             []entityLedger
	intercompanyAccounts []string
}

type entityLedger struct {
	name    string
	records []models.GLRecord
}

// NewConsolidationEngine builds an engine with the fixed intercompany
// account keyword list.
func NewConsolidationEngine() *ConsolidationEngine {
	return &ConsolidationEngine{
		intercompanyAccounts: []string{
			"intercompany receivable",
			"intercompany payable",
			"intercompany sale",
			"intercompany purchase",
		},
	}
}

// AddEntity registers one entity's GL records for consolidation.
func (e *ConsolidationEngine) AddEntity(name string, records []models.GLRecord) {
	e.entities = append(e.entities, entityLedger{name: name, records: records})
	log.Printf("[Consolidation] added entity %q with %d GL entries", name, len(records))
}

// Consolidate merges all registered entities. In "sum" mode records are
// grouped by (code, name) and summed. In "full" mode intercompany
// receivable/payable pairs are identified first, every row naming an
// intercompany account is stripped, and the remainder is grouped.
func (e *ConsolidationEngine) Consolidate(mode string) ([]models.GLRecord, []EliminationEntry, error) {
	if mode == "" {
		mode = ConsolidateFull
	}
	if mode != ConsolidateSum && mode != ConsolidateFull {
		return nil, nil, fmt.Errorf("consolidation: unknown mode %q", mode)
	}
	if len(e.entities) == 0 {
		return nil, nil, nil
	}

	var combined []models.GLRecord
	for _, entity := range e.entities {
		for _, r := range entity.records {
			r.Entity = entity.name
			combined = append(combined, r)
		}
	}

	if mode == ConsolidateSum {
		return groupByAccount(combined), nil, nil
	}

	eliminations := e.identifyEliminations(combined)

	// Strip every row whose account name contains an intercompany keyword,
	// matched or not. Unmatched pairs are stripped anyway; that asymmetry
	// is a documented limitation, not a crash.
	var kept []models.GLRecord
	for _, r := range combined {
		if !e.isIntercompany(r.AccountName) {
			kept = append(kept, r)
		}
	}

	return groupByAccount(kept), eliminations, nil
}

func (e *ConsolidationEngine) isIntercompany(accountName string) bool {
	nameLower := strings.ToLower(accountName)
	for _, kw := range e.intercompanyAccounts {
		if strings.Contains(nameLower, kw) {
			return true
		}
	}
	return false
}

// identifyEliminations locates intercompany receivable/payable pairs. An
// elimination entry is emitted only when the two sides net to ~zero.
func (e *ConsolidationEngine) identifyEliminations(records []models.GLRecord) []EliminationEntry {
	var recTotal, payTotal float64
	var recFound, payFound bool

	for _, r := range records {
		nameLower := strings.ToLower(r.AccountName)
		if strings.Contains(nameLower, "intercompany receivable") {
			recTotal += r.Amount
			recFound = true
		}
		if strings.Contains(nameLower, "intercompany payable") {
			payTotal += r.Amount
			payFound = true
		}
	}

	if !recFound || !payFound {
		return nil
	}

	if math.Abs(recTotal+payTotal) >= intercompanyTolerance {
		log.Printf("[Consolidation] warning: intercompany receivable (%.2f) and payable (%.2f) do not net to zero",
			recTotal, payTotal)
		return nil
	}

	return []EliminationEntry{{
		EntryType:         "intercompany_elimination",
		AccountEliminated: "Intercompany Receivable/Payable",
		AmountEliminated:  recTotal,
		Reason:            "Consolidated view - eliminate intercompany transactions",
	}}
}

// groupByAccount sums amounts per (code, name) pair, preserving first-seen
// order. Entity/period attribution is dropped: the output is the
// consolidated ledger.
func groupByAccount(records []models.GLRecord) []models.GLRecord {
	type key struct{ code, name string }
	index := make(map[key]int)
	var out []models.GLRecord

	for _, r := range records {
		k := key{r.AccountCode, r.AccountName}
		if i, ok := index[k]; ok {
			out[i].Amount += r.Amount
			continue
		}
		index[k] = len(out)
		out = append(out, models.GLRecord{
			AccountCode: r.AccountCode,
			AccountName: r.AccountName,
			Amount:      r.Amount,
			Period:      r.Period,
		})
	}
	return out
}
