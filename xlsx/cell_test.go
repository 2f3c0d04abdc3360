package xlsx

import "testing"

func TestParseCellRef(t *testing.T) {
	tests := []struct {
		ref     string
		col     int
		row     int
		wantErr bool
	}{
		{"A1", 0, 0, false},
		{"B2", 1, 1, false},
		{"Z1", 25, 0, false},
		{"AA1", 26, 0, false},
		{"AB10", 27, 9, false},
		{"a1", 0, 0, false},
		{"", 0, 0, true},
		{"123", 0, 0, true},
		{"ABC", 0, 0, true},
		{"A0", 0, 0, true},
	}
	for _, tt := range tests {
		col, row, err := ParseCellRef(tt.ref)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCellRef(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			continue
		}
		if err == nil && (col != tt.col || row != tt.row) {
			t.Errorf("ParseCellRef(%q) = (%d, %d), want (%d, %d)", tt.ref, col, row, tt.col, tt.row)
		}
	}
}

func TestColumnRoundTrip(t *testing.T) {
	for _, idx := range []int{0, 1, 25, 26, 51, 701, 702, 16383} {
		col := IndexToColumn(idx)
		if got := ColumnToIndex(col); got != idx {
			t.Errorf("round trip %d -> %q -> %d", idx, col, got)
		}
	}
	if got := IndexToColumn(25); got != "Z" {
		t.Errorf("IndexToColumn(25) = %q, want Z", got)
	}
	if got := IndexToColumn(26); got != "AA" {
		t.Errorf("IndexToColumn(26) = %q, want AA", got)
	}
	if got := ColumnToIndex("a9"); got != -1 {
		t.Errorf("ColumnToIndex(a9) = %d, want -1", got)
	}
}

func TestParseRangeRef(t *testing.T) {
	sc, sr, ec, er, err := ParseRangeRef("A1:C3")
	if err != nil {
		t.Fatalf("ParseRangeRef() failed: %v", err)
	}
	if sc != 0 || sr != 0 || ec != 2 || er != 2 {
		t.Errorf("ParseRangeRef(A1:C3) = (%d,%d,%d,%d)", sc, sr, ec, er)
	}

	// Single cell is a degenerate range.
	sc, sr, ec, er, err = ParseRangeRef("B2")
	if err != nil {
		t.Fatalf("ParseRangeRef(B2) failed: %v", err)
	}
	if sc != 1 || sr != 1 || ec != 1 || er != 1 {
		t.Errorf("ParseRangeRef(B2) = (%d,%d,%d,%d)", sc, sr, ec, er)
	}

	if _, _, _, _, err := ParseRangeRef("A1:B2:C3"); err == nil {
		t.Error("ParseRangeRef(A1:B2:C3) succeeded, want error")
	}
	if _, _, _, _, err := ParseRangeRef("A1:ZZ"); err == nil {
		t.Error("ParseRangeRef(A1:ZZ) succeeded, want error")
	}
}
