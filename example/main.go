package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/vsinha/shortfall/pkg/application/services/requirements"
	"github.com/vsinha/shortfall/pkg/domain/entities"
	"github.com/vsinha/shortfall/pkg/domain/services"
)

func main() {
	ctx := context.Background()

	// Stock ledger for two maintenance cards
	stock := []entities.StockRecord{
		{TaskCode: "27-05", PartNumber: "SEAL-100", Description: "Actuator seal", QuantityOnHand: 2, RequiredQuantity: 6, InTransitQuantity: 4, BinLocation: "A1"},
		{TaskCode: "27-05", PartNumber: "SEAL-100", Description: "Actuator seal", QuantityOnHand: 1, RequiredQuantity: 6, BinLocation: "A4"},
		{TaskCode: "27-05", PartNumber: "BOLT-12", Description: "Bolt", QuantityOnHand: 40, RequiredQuantity: 8, BinLocation: "C2"},
		{TaskCode: " 32-10", PartNumber: "PIN-7", Description: "Gear pin", QuantityOnHand: 0, RequiredQuantity: 2, OpenOrderQuantity: 2, BinLocation: "B1"},
	}

	day := entities.NewDate(time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC))
	tasks := []entities.TaskRecord{
		{TaskCode: "27-05", TaskDescription: "Replace actuator seal", PackageDescription: "A-check", ScheduledDate: day},
		{TaskCode: "32-10", TaskDescription: "Inspect landing gear", PackageDescription: "A-check", ScheduledDate: day},
	}

	planner := requirements.NewPlanner(services.DefaultKeyOptions())
	result, err := planner.Plan(ctx, stock, tasks, day)
	if err != nil {
		log.Fatalf("plan failed: %v", err)
	}

	fmt.Printf("Materials for %s: %s\n", day, result.Outcome)
	fmt.Println("=====================================")
	for _, req := range result.Requirements {
		fmt.Printf("%-6s %-9s %-14s on hand %3d  required %3d  short %3d  %-11s %s  bins [%s]\n",
			req.TaskCode, req.PartNumber, req.Description,
			req.QuantityOnHand, req.RequiredQuantity, req.Shortage,
			req.Status, req.LogisticsAlert, req.Bins())
	}

	fmt.Printf("\nItems short: %d, total shortage: %d\n", result.Summary.ItemsShort, result.Summary.TotalShortage)
}
