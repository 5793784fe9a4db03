// load-catalog loads card catalog data from a JSON file into the local
// database.
//
// Usage: go run main.go -input=cards.json [-db=./data/tracker.db]
//
// The input is an array of card objects:
//
//	[{"name": "Luke Skywalker", "subtitle": "Faithful Friend",
//	  "set_code": "SOR", "card_number": "005", "official_code": "SOR-005",
//	  "rarity": "Legendary", "type": "Leader", "aspects": ["Heroism"]}]
//
// Card IDs are derived from the printed code, so re-running the tool
// updates existing rows instead of duplicating them.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/mkeller/swu-tracker/backend/internal/database"
	"github.com/mkeller/swu-tracker/backend/internal/models"
	"github.com/mkeller/swu-tracker/backend/internal/services"
)

func main() {
	inputPath := flag.String("input", "", "path to the catalog JSON file (required)")
	dbPath := flag.String("db", "./data/tracker.db", "path to the SQLite database")
	flag.Parse()

	if *inputPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *inputPath, err)
	}

	var cards []models.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		log.Fatalf("Failed to parse %s: %v", *inputPath, err)
	}
	if len(cards) == 0 {
		log.Fatalf("No cards in %s", *inputPath)
	}

	if err := database.Initialize(*dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	catalog := services.NewCatalogStore(database.GetDB())
	if err := catalog.UpsertCards(context.Background(), cards); err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	log.Printf("Loaded %d cards from %s", len(cards), *inputPath)
}
