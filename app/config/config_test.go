package config

import (
	"path/filepath"
	"testing"
)

func TestResolvedCodebookPath(t *testing.T) {
	abs := filepath.Join(string(filepath.Separator), "srv", "codebooks", "code.csv")

	tests := []struct {
		name     string
		dataDir  string
		codebook string
		want     string
	}{
		{"RelativeJoinsDataDir", "/data/survey", "code.csv", filepath.Join("/data/survey", "code.csv")},
		{"AbsolutePassesThrough", "/data/survey", abs, abs},
		{"EmptyStaysEmpty", "/data/survey", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{DataDir: tt.dataDir, CodebookFile: tt.codebook}
			if got := c.ResolvedCodebookPath(); got != tt.want {
				t.Errorf("ResolvedCodebookPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
