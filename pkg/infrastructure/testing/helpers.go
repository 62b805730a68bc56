package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vsinha/shortfall/pkg/domain/entities"
)

// HangarDate is the date the hangar scenario schedules its A-check on
var HangarDate = entities.Date{Year: 2024, Month: time.January, Day: 10}

// HangarStockCSV is a small stock ledger using the production header names.
// 27-05 needs an order for PN1 covered by in-transit stock, 32-10 needs an
// order with nothing in transit, and 40-00 is only scheduled later.
const HangarStockCSV = `Mne_Dash8,m_e,description,QOH,required_part_quantity,open_order_quantity,in_transit_quantity,requisition,bin
27-05,PN1,Seal,2,5,1,4,REQ-7,A1
27-05,PN1,Seal,2,5,1,4,REQ-7,A1
27-05,PN2,Washer,10,4,0,0,,A2
32-10,PN3,Gear pin,0,3,0,0,REQ-9,B1
32-10,PN3,Gear pin,1,2,0,1,REQ-8,B2
40-00,PN4,Grease,1,6,0,0,,C1
`

// HangarTasksCSV schedules 27-05 and 32-10 on HangarDate, 40-00 a day later
// and one task with an unusable date
const HangarTasksCSV = `mne_number,mne_description,package_description,scheduled_date
27-05,Replace seal,A-check,2024-01-10
32-10,Inspect gear,A-check,2024-01-10
40-00,Lubricate,C-check,2024-01-11
50-00,Clean,C-check,soon
`

// BuildHangarTestData returns the hangar scenario as records
func BuildHangarTestData() ([]*entities.StockRecord, []*entities.TaskRecord) {
	stock := []*entities.StockRecord{
		{TaskCode: "27-05", PartNumber: "PN1", Description: "Seal", QuantityOnHand: 2, RequiredQuantity: 5, OpenOrderQuantity: 1, InTransitQuantity: 4, RequisitionNote: "REQ-7", BinLocation: "A1"},
		{TaskCode: "27-05", PartNumber: "PN1", Description: "Seal", QuantityOnHand: 2, RequiredQuantity: 5, OpenOrderQuantity: 1, InTransitQuantity: 4, RequisitionNote: "REQ-7", BinLocation: "A1"},
		{TaskCode: "27-05", PartNumber: "PN2", Description: "Washer", QuantityOnHand: 10, RequiredQuantity: 4, BinLocation: "A2"},
		{TaskCode: "32-10", PartNumber: "PN3", Description: "Gear pin", QuantityOnHand: 0, RequiredQuantity: 3, RequisitionNote: "REQ-9", BinLocation: "B1"},
		{TaskCode: "32-10", PartNumber: "PN3", Description: "Gear pin", QuantityOnHand: 1, RequiredQuantity: 2, InTransitQuantity: 1, RequisitionNote: "REQ-8", BinLocation: "B2"},
		{TaskCode: "40-00", PartNumber: "PN4", Description: "Grease", QuantityOnHand: 1, RequiredQuantity: 6, BinLocation: "C1"},
	}

	tasks := []*entities.TaskRecord{
		{TaskCode: "27-05", TaskDescription: "Replace seal", PackageDescription: "A-check", ScheduledDate: HangarDate},
		{TaskCode: "32-10", TaskDescription: "Inspect gear", PackageDescription: "A-check", ScheduledDate: HangarDate},
		{TaskCode: "40-00", TaskDescription: "Lubricate", PackageDescription: "C-check", ScheduledDate: entities.Date{Year: 2024, Month: time.January, Day: 11}},
		{TaskCode: "50-00", TaskDescription: "Clean", PackageDescription: "C-check"},
	}

	return stock, tasks
}

// WriteHangarFiles writes the hangar scenario CSVs into dir and returns their paths
func WriteHangarFiles(dir string) (stockPath, tasksPath string, err error) {
	stockPath = filepath.Join(dir, "stock.csv")
	if err := os.WriteFile(stockPath, []byte(HangarStockCSV), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write stock fixture: %w", err)
	}
	tasksPath = filepath.Join(dir, "tasks.csv")
	if err := os.WriteFile(tasksPath, []byte(HangarTasksCSV), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write tasks fixture: %w", err)
	}
	return stockPath, tasksPath, nil
}
