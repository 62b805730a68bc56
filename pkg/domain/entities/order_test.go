package entities

import "testing"

func TestAlertFor(t *testing.T) {
	testCases := []struct {
		name      string
		required  Quantity
		onHand    Quantity
		inTransit Quantity
		shortage  Quantity
		status    Status
		alert     LogisticsAlert
	}{
		{"covered by stock", 2, 5, 0, 0, StatusOK, AlertOK},
		{"exact stock", 5, 5, 3, 0, StatusOK, AlertOK},
		{"in transit covers", 10, 4, 6, 6, StatusNeedsOrder, AlertInTransitCovers},
		{"in transit insufficient", 10, 4, 3, 6, StatusNeedsOrder, AlertInTransitInsufficient},
		{"nothing in transit", 10, 4, 0, 6, StatusNeedsOrder, AlertNeedsOrder},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			shortage := ComputeShortage(tc.required, tc.onHand)
			if shortage != tc.shortage {
				t.Errorf("Expected shortage %d, got %d", tc.shortage, shortage)
			}
			if status := StatusFor(shortage); status != tc.status {
				t.Errorf("Expected status %v, got %v", tc.status, status)
			}
			if alert := AlertFor(shortage, tc.inTransit); alert != tc.alert {
				t.Errorf("Expected alert %v, got %v", tc.alert, alert)
			}
		})
	}
}

func TestEnumStrings(t *testing.T) {
	if StatusNeedsOrder.String() != "NEEDS_ORDER" {
		t.Errorf("Expected NEEDS_ORDER, got %s", StatusNeedsOrder)
	}
	if AlertInTransitInsufficient.String() != "IN_TRANSIT_INSUFFICIENT" {
		t.Errorf("Expected IN_TRANSIT_INSUFFICIENT, got %s", AlertInTransitInsufficient)
	}
	if Status(9).String() != "Unknown" {
		t.Errorf("Expected Unknown for out of range status")
	}
}

func TestMaterialRequirement_Bins(t *testing.T) {
	req := MaterialRequirement{
		BinLocations:      []string{"A1", "B2"},
		QuantityOnHand:    3,
		OpenOrderQuantity: 1,
		InTransitQuantity: 2,
	}
	if req.Bins() != "A1, B2" {
		t.Errorf("Expected 'A1, B2', got '%s'", req.Bins())
	}
	if req.ProjectedStock() != 6 {
		t.Errorf("Expected projected stock 6, got %d", req.ProjectedStock())
	}
}
