package storage

import (
	"testing"
	"time"

	"github.com/mmynk/billsplit/internal/models"
)

func TestGenerateTitle(t *testing.T) {
	at := time.Date(2025, time.April, 12, 19, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		names []string
		want  string
	}{
		{"no participants", nil, "Bill - Apr 12, 2025"},
		{"one participant", []string{"You"}, "Split with You"},
		{"three participants", []string{"You", "Alex", "Taylor"}, "Split with You, Alex, Taylor"},
		{"many participants", []string{"You", "Alex", "Taylor", "Sam", "Riley"}, "Split with You, Alex and 3 others"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateTitle(tt.names, at); got != tt.want {
				t.Errorf("GenerateTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPayingNames(t *testing.T) {
	bill := &models.Bill{
		Shares: []models.Share{
			{DisplayName: "You", Items: []models.ShareItem{{ItemID: "i1"}}},
			{DisplayName: "Alex"},
			{DisplayName: "Taylor", Items: []models.ShareItem{{ItemID: "i2"}}},
		},
	}

	got := PayingNames(bill)
	if len(got) != 2 || got[0] != "You" || got[1] != "Taylor" {
		t.Errorf("PayingNames() = %v, want [You Taylor]", got)
	}
}
