package fileloader

import (
	"testing"
)

func TestExcelColumnName(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
	}

	for _, tt := range tests {
		if got := excelColumnName(tt.index); got != tt.want {
			t.Errorf("excelColumnName(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestNormalizeHeaders(t *testing.T) {
	t.Run("EmptyHeadersGetNames", func(t *testing.T) {
		got := NormalizeHeaders([]string{"Province", "", "Age", "   ", ""})
		want := []string{"Province", "Unnamed_A", "Age", "Unnamed_B", "Unnamed_C"}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Header %d: expected %q, got %q", i, want[i], got[i])
			}
		}
	})

	t.Run("AllNamed", func(t *testing.T) {
		in := []string{"A", "B"}
		got := NormalizeHeaders(in)
		if got[0] != "A" || got[1] != "B" {
			t.Errorf("Expected headers unchanged, got %v", got)
		}
	})

	t.Run("AllEmpty", func(t *testing.T) {
		got := NormalizeHeaders(make([]string, 3))
		want := []string{"Unnamed_A", "Unnamed_B", "Unnamed_C"}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Header %d: expected %q, got %q", i, want[i], got[i])
			}
		}
	})
}
