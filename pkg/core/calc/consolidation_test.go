package calc

import (
	"testing"

	"financial_normalizer/pkg/models"
)

func TestConsolidateSumMode(t *testing.T) {
	engine := NewConsolidationEngine()
	engine.AddEntity("Parent Co", []models.GLRecord{
		{AccountCode: "4000", AccountName: "Product Revenue", Amount: 500000},
	})
	engine.AddEntity("Sub Co", []models.GLRecord{
		{AccountCode: "4000", AccountName: "Product Revenue", Amount: 300000},
		{AccountCode: "5000", AccountName: "COGS", Amount: 100000},
	})

	records, eliminations, err := engine.Consolidate(ConsolidateSum)
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	if eliminations != nil {
		t.Errorf("Expected no eliminations in sum mode, got %d", len(eliminations))
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 grouped accounts, got %d", len(records))
	}
	if records[0].Amount != 800000 {
		t.Errorf("Expected summed revenue 800000, got %f", records[0].Amount)
	}
}

func TestConsolidateFullEliminatesIntercompany(t *testing.T) {
	engine := NewConsolidationEngine()
	engine.AddEntity("Parent Co", []models.GLRecord{
		{AccountCode: "4000", AccountName: "Product Revenue", Amount: 500000},
		{AccountCode: "1200", AccountName: "Intercompany Receivable", Amount: 50000},
	})
	engine.AddEntity("Sub Co", []models.GLRecord{
		{AccountCode: "4000", AccountName: "Product Revenue", Amount: 300000},
		{AccountCode: "2200", AccountName: "Intercompany Payable", Amount: -50000},
	})

	records, eliminations, err := engine.Consolidate(ConsolidateFull)
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}

	if len(eliminations) != 1 {
		t.Fatalf("Expected 1 elimination entry, got %d", len(eliminations))
	}
	if eliminations[0].AmountEliminated != 50000 {
		t.Errorf("Expected eliminated amount 50000, got %f", eliminations[0].AmountEliminated)
	}

	// Both intercompany rows removed, revenue grouped across entities.
	if len(records) != 1 {
		t.Fatalf("Expected 1 remaining account, got %d", len(records))
	}
	if records[0].AccountName != "Product Revenue" || records[0].Amount != 800000 {
		t.Errorf("Expected consolidated revenue 800000, got %s %f", records[0].AccountName, records[0].Amount)
	}
}

func TestConsolidateUnbalancedIntercompanyStillStrips(t *testing.T) {
	engine := NewConsolidationEngine()
	engine.AddEntity("Parent Co", []models.GLRecord{
		{AccountCode: "1200", AccountName: "Intercompany Receivable", Amount: 50000},
		{AccountCode: "4000", AccountName: "Product Revenue", Amount: 500000},
	})
	engine.AddEntity("Sub Co", []models.GLRecord{
		{AccountCode: "2200", AccountName: "Intercompany Payable", Amount: -30000},
	})

	records, eliminations, err := engine.Consolidate(ConsolidateFull)
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}

	// 50,000 - 30,000 = 20,000 off: no elimination entry.
	if len(eliminations) != 0 {
		t.Errorf("Expected no elimination entries for unbalanced pair, got %d", len(eliminations))
	}
	// Intercompany rows stripped regardless.
	if len(records) != 1 || records[0].AccountName != "Product Revenue" {
		t.Errorf("Expected only revenue to survive, got %+v", records)
	}
}

func TestConsolidateWithinTolerance(t *testing.T) {
	engine := NewConsolidationEngine()
	engine.AddEntity("A", []models.GLRecord{
		{AccountCode: "1200", AccountName: "Intercompany Receivable", Amount: 50000.40},
	})
	engine.AddEntity("B", []models.GLRecord{
		{AccountCode: "2200", AccountName: "Intercompany Payable", Amount: -49999.80},
	})

	// |0.60| < 1.0 tolerance: elimination still emitted.
	_, eliminations, err := engine.Consolidate(ConsolidateFull)
	if err != nil {
		t.Fatalf("Consolidate failed: %v", err)
	}
	if len(eliminations) != 1 {
		t.Errorf("Expected elimination within tolerance, got %d entries", len(eliminations))
	}
}

func TestConsolidateModeHandling(t *testing.T) {
	engine := NewConsolidationEngine()
	engine.AddEntity("A", []models.GLRecord{
		{AccountCode: "4000", AccountName: "Revenue", Amount: 100},
	})

	// Empty mode defaults to full.
	records, _, err := engine.Consolidate("")
	if err != nil {
		t.Fatalf("Expected empty mode to default, got %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected 1 record, got %d", len(records))
	}

	if _, _, err := engine.Consolidate("partial"); err == nil {
		t.Error("Expected error for unknown mode")
	}
}

func TestConsolidateNoEntities(t *testing.T) {
	engine := NewConsolidationEngine()
	records, eliminations, err := engine.Consolidate(ConsolidateFull)
	if err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}
	if records != nil || eliminations != nil {
		t.Error("Expected empty output for no entities")
	}
}
