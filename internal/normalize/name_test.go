package normalize

import (
	"testing"

	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
)

func TestNormalize(t *testing.T) {
	n := DefaultNameNormalizer()

	tests := []struct {
		name   string
		input  any
		level  regions.Level
		want   string
		wantOK bool
	}{
		{"upper case", "RAICHUR", regions.LevelDistrict, "Raichur", true},
		{"extra spaces", "  raichur   city ", regions.LevelULB, "Raichur City", true},
		{"accents folded", "Bélgaum", regions.LevelDistrict, "Belgaum", true},
		{"gulbarga renamed", "GULBARGA", regions.LevelDistrict, "Kalaburagi", true},
		{"bijapur renamed", "bijapur", regions.LevelDistrict, "Vijayapura", true},
		{"ch nagar", "C.H. Nagar", regions.LevelDistrict, "Chamarajanagara", true},
		{"ch nagara spaced", "CH NAGARA", regions.LevelDistrict, "Chamarajanagara", true},
		{"ch nagar inside a word", "Kuchnagar", regions.LevelDistrict, "Kuchnagar", true},
		{"bangalore", "Bangalore", regions.LevelDistrict, "Bengaluru Urban", true},
		{"bbmp", "BBMP", regions.LevelDistrict, "Bengaluru Urban", true},
		{"bangalore urban", "Bangalore Urban", regions.LevelDistrict, "Bengaluru Urban", true},
		{"bangalore rural untouched", "Bangalore Rural", regions.LevelDistrict, "Bangalore Rural", true},
		{"parenthesised urban", "Bangalore (U)", regions.LevelDistrict, "Bengaluru Urban", true},
		{"trailing rural", "Bengaluru R", regions.LevelDistrict, "Bengaluru Rural", true},
		{"alias scoped to district", "Gulbarga", regions.LevelVillage, "Gulbarga", true},
		{"numeric ward", 12.0, regions.LevelWard, "12", true},
		{"na", "NA", regions.LevelDistrict, "", false},
		{"nil", nil, regions.LevelDistrict, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := n.Normalize(tt.input, tt.level)
			if ok != tt.wantOK {
				t.Fatalf("Normalize(%v) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Normalize(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewNameNormalizerErrors(t *testing.T) {
	if _, err := NewNameNormalizer([]Alias{{Pattern: "(", Replacement: "x"}}); err == nil {
		t.Error("expected error for invalid pattern")
	}
	if _, err := NewNameNormalizer([]Alias{{Pattern: "x", Unless: "[", Replacement: "y"}}); err == nil {
		t.Error("expected error for invalid unless pattern")
	}
	if _, err := NewNameNormalizer([]Alias{{Pattern: "x", Replacement: "y", Levels: []regions.Level{"taluk"}}}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestCustomAliasesRunInOrder(t *testing.T) {
	n, err := NewNameNormalizer([]Alias{
		{Pattern: `^hospet$`, Replacement: "Hosapete"},
		{Pattern: `^hosapete$`, Replacement: "Hosapete City"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := n.Normalize("HOSPET", regions.LevelULB); got != "Hosapete City" {
		t.Errorf("got %q, want %q", got, "Hosapete City")
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		input  any
		want   string
		wantOK bool
	}{
		{"Govt. Hospital, Raichur", "GOVT HOSPITAL RAICHUR", true},
		{"  dr (smith)-clinic ", "DR SMITH CLINIC", true},
		{"ward#12", "WARD12", true},
		{"12345", "", false},
		{"--", "", false},
		{nil, "", false},
	}

	for _, tt := range tests {
		got, ok := CleanText(tt.input)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("CleanText(%v) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}
