package archive

import (
	"context"
	"path/filepath"
	"testing"

	"sensibull-extractor/internal/types"
)

func TestArchiveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	trades := []types.TradeRecord{
		{Date: "2026-02-13", Symbol: "ADANIGREEN", OptionType: "PE", Strike: "2500",
			Expiry: "2026-02-24", Qty: "10", AvgPrice: "5.0", LTP: "6.0",
			PnL: "500", DailyTotalPnL: "500", Page: 11},
		{Date: "2026-02-14", Symbol: "UPL", OptionType: "STOCK",
			PnL: "100", DailyTotalPnL: "100", Page: 11},
	}

	if err := s.ArchiveRecords(ctx, "run-1", trades); err != nil {
		t.Fatalf("ArchiveRecords: %v", err)
	}
	if err := s.ArchiveRecords(ctx, "run-2", trades[:1]); err != nil {
		t.Fatalf("ArchiveRecords (second run): %v", err)
	}

	n, err := s.CountRecords(ctx, "run-1")
	if err != nil {
		t.Fatalf("CountRecords: %v", err)
	}
	if n != 2 {
		t.Errorf("run-1 count = %d, want 2", n)
	}

	n, err = s.CountRecords(ctx, "")
	if err != nil {
		t.Fatalf("CountRecords all: %v", err)
	}
	if n != 3 {
		t.Errorf("total count = %d, want 3", n)
	}
}

func TestArchiveEmptyRunIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.ArchiveRecords(context.Background(), "run-1", nil); err != nil {
		t.Fatalf("ArchiveRecords with no trades: %v", err)
	}
	n, err := s.CountRecords(context.Background(), "")
	if err != nil {
		t.Fatalf("CountRecords: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestOpenReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.ArchiveRecords(context.Background(), "run-1", []types.TradeRecord{{Symbol: "INFY", OptionType: "STOCK"}}); err != nil {
		t.Fatalf("ArchiveRecords: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	n, err := s.CountRecords(context.Background(), "")
	if err != nil {
		t.Fatalf("CountRecords: %v", err)
	}
	if n != 1 {
		t.Errorf("count after reopen = %d, want 1", n)
	}
}
