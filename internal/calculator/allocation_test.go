package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func roster(ids ...string) []models.Participant {
	people := make([]models.Participant, len(ids))
	for i, id := range ids {
		people[i] = models.Participant{ID: id, DisplayName: id}
	}
	return people
}

func unassignedItems(prices ...string) []models.ReceiptItem {
	items := make([]models.ReceiptItem, len(prices))
	for i, p := range prices {
		items[i] = models.ReceiptItem{
			ID:         "i" + string(rune('1'+i)),
			Name:       "Item",
			Price:      d(p),
			AssignedTo: models.Unassigned,
		}
	}
	return items
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name   string
		roster []models.Participant
		items  []models.ReceiptItem
		want   map[string]string
	}{
		{
			name:   "participants without items get zero",
			roster: roster("A", "B"),
			items:  unassignedItems("10.00", "5.50"),
			want:   map[string]string{"A": "0", "B": "0"},
		},
		{
			name:   "sums only assigned items",
			roster: roster("A", "B"),
			items: []models.ReceiptItem{
				{ID: "i1", Price: d("10.00"), AssignedTo: "A"},
				{ID: "i2", Price: d("2.25"), AssignedTo: "A"},
				{ID: "i3", Price: d("4.75"), AssignedTo: "B"},
				{ID: "i4", Price: d("99.99"), AssignedTo: models.Unassigned},
			},
			want: map[string]string{"A": "12.25", "B": "4.75"},
		},
		{
			name:   "empty ledger",
			roster: roster("A"),
			items:  nil,
			want:   map[string]string{"A": "0"},
		},
		{
			name:   "unknown assignee is ignored",
			roster: roster("A"),
			items:  []models.ReceiptItem{{ID: "i1", Price: d("3"), AssignedTo: "ghost"}},
			want:   map[string]string{"A": "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.roster, tt.items)
			if len(got) != len(tt.want) {
				t.Fatalf("ComputeTotals() returned %d totals, want %d", len(got), len(tt.want))
			}
			for id, want := range tt.want {
				if !got[id].Equal(d(want)) {
					t.Errorf("total[%s] = %s, want %s", id, got[id], want)
				}
			}
		})
	}
}

func TestComputeTotals_Idempotent(t *testing.T) {
	people := roster("A", "B", "C")
	items := []models.ReceiptItem{
		{ID: "i1", Price: d("1.10"), AssignedTo: "A"},
		{ID: "i2", Price: d("2.20"), AssignedTo: "C"},
		{ID: "i3", Price: d("3.30"), AssignedTo: models.Unassigned},
	}

	first := ComputeTotals(people, items)
	second := ComputeTotals(people, items)
	for id := range first {
		if !first[id].Equal(second[id]) {
			t.Errorf("total[%s] changed between calls: %s vs %s", id, first[id], second[id])
		}
	}
	if items[2].AssignedTo != models.Unassigned {
		t.Error("ComputeTotals mutated its input")
	}
}

func TestEqualSplit_ReceiptScenario(t *testing.T) {
	people := roster("A", "B", "C")
	items := unassignedItems("12.99", "14.99", "9.99", "7.99", "4.99", "5.98")

	split, err := EqualSplit(people, items)
	if err != nil {
		t.Fatalf("EqualSplit() error = %v", err)
	}

	wantOwners := []string{"A", "A", "B", "B", "C", "C"}
	for i, item := range split {
		if item.AssignedTo != wantOwners[i] {
			t.Errorf("item %d assigned to %s, want %s", i, item.AssignedTo, wantOwners[i])
		}
	}

	totals := ComputeTotals(people, split)
	want := map[string]string{"A": "27.98", "B": "17.98", "C": "10.97"}
	for id, w := range want {
		if !totals[id].Equal(d(w)) {
			t.Errorf("total[%s] = %s, want %s", id, totals[id], w)
		}
	}
	if n := UnassignedCount(split); n != 0 {
		t.Errorf("UnassignedCount() = %d, want 0", n)
	}
	if items[0].AssignedTo != models.Unassigned {
		t.Error("EqualSplit mutated its input")
	}
}

func TestEqualSplit_Chunks(t *testing.T) {
	tests := []struct {
		name       string
		itemCount  int
		people     int
		wantCounts []int
	}{
		{"even division", 6, 3, []int{2, 2, 2}},
		{"trailing participant gets short chunk", 5, 3, []int{2, 2, 1}},
		{"trailing participant gets nothing", 4, 3, []int{2, 2, 0}},
		{"more participants than items", 2, 5, []int{1, 1, 0, 0, 0}},
		{"single participant takes all", 7, 1, []int{7}},
		{"no items", 0, 2, []int{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := make([]string, tt.people)
			for i := range ids {
				ids[i] = string(rune('A' + i))
			}
			people := roster(ids...)
			prices := make([]string, tt.itemCount)
			for i := range prices {
				prices[i] = "1.00"
			}
			items := unassignedItems(prices...)

			// Prior manual assignments are overwritten.
			if len(items) > 0 {
				items[len(items)-1].AssignedTo = ids[0]
			}

			split, err := EqualSplit(people, items)
			if err != nil {
				t.Fatalf("EqualSplit() error = %v", err)
			}
			if n := UnassignedCount(split); n != 0 {
				t.Errorf("UnassignedCount() = %d, want 0", n)
			}
			for i, id := range ids {
				if got := AssignedCount(split, id); got != tt.wantCounts[i] {
					t.Errorf("participant %s got %d items, want %d", id, got, tt.wantCounts[i])
				}
			}
			if err := CheckIntegrity(people, split); err != nil {
				t.Errorf("CheckIntegrity() error = %v", err)
			}
		})
	}
}

func TestEqualSplit_NoParticipants(t *testing.T) {
	_, err := EqualSplit(nil, unassignedItems("1.00"))
	if !models.IsValidation(err) {
		t.Fatalf("EqualSplit() error = %v, want ValidationError", err)
	}
}

func TestCheckIntegrity(t *testing.T) {
	people := roster("A")
	ok := []models.ReceiptItem{
		{ID: "i1", Price: d("1"), AssignedTo: "A"},
		{ID: "i2", Price: d("1"), AssignedTo: models.Unassigned},
	}
	if err := CheckIntegrity(people, ok); err != nil {
		t.Errorf("CheckIntegrity() error = %v, want nil", err)
	}

	broken := append(ok, models.ReceiptItem{ID: "i3", Price: d("1"), AssignedTo: "ghost"})
	err := CheckIntegrity(people, broken)
	if !models.IsIntegrity(err) {
		t.Fatalf("CheckIntegrity() error = %v, want IntegrityError", err)
	}
}

func TestUnassignedCountAndSubtotals(t *testing.T) {
	items := []models.ReceiptItem{
		{ID: "i1", Price: d("10.00"), AssignedTo: "A"},
		{ID: "i2", Price: d("0.00"), AssignedTo: models.Unassigned},
		{ID: "i3", Price: d("2.50"), AssignedTo: models.Unassigned},
	}
	if n := UnassignedCount(items); n != 2 {
		t.Errorf("UnassignedCount() = %d, want 2", n)
	}
	if s := Subtotal(items); !s.Equal(d("12.50")) {
		t.Errorf("Subtotal() = %s, want 12.50", s)
	}
	if s := AssignedSubtotal(items); !s.Equal(d("10.00")) {
		t.Errorf("AssignedSubtotal() = %s, want 10.00", s)
	}
}
