package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tcgevolve/tcgsim/internal/game/card"
	"gopkg.in/yaml.v3"
)

// Column order of the CSV export.
const (
	colID = iota
	colMinion
	colCharge
	colTaunt
	colManaCost
	colAttackPower
	colHealth
	columnCount
)

// Imports a CSV card export into the YAML pool read by
// simulation.cards_file.
//
//	go run ./scripts data/cards_export.csv configs/cards.yaml
func main() {
	csvPath := "data/cards_export.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	outPath := "configs/cards.yaml"
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	absPath, err := filepath.Abs(csvPath)
	if err != nil {
		log.Fatalf("Failed to get absolute path: %v", err)
	}

	fmt.Println("=== Card Pool Import ===")
	fmt.Printf("CSV file: %s\n", absPath)

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		log.Fatalf("CSV file not found: %s", absPath)
	}

	file, err := os.Open(absPath)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}

	if len(records) < 2 {
		log.Fatal("CSV file is empty or has no data rows")
	}

	fmt.Printf("Found %d cards in CSV\n", len(records)-1) // -1 for header

	defs := make([]card.Definition, 0, len(records)-1)
	seen := make(map[int]bool, len(records)-1)
	skipped := 0
	for i, record := range records[1:] { // Skip header
		def, err := parseRecord(record)
		if err != nil {
			log.Printf("Warning: Skipping row %d - %v", i+2, err)
			skipped++
			continue
		}
		if seen[def.ID] {
			log.Printf("Warning: Skipping row %d - duplicate id %d", i+2, def.ID)
			skipped++
			continue
		}
		seen[def.ID] = true
		defs = append(defs, def)
	}

	data, err := yaml.Marshal(card.DefinitionFile{Cards: defs})
	if err != nil {
		log.Fatalf("Failed to encode YAML: %v", err)
	}

	// Round-trip through the loader so the pool is known to be usable.
	if _, err := card.ParseDefinitions(data); err != nil {
		log.Fatalf("Generated pool is invalid: %v", err)
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", outPath, err)
	}

	fmt.Printf("✓ Imported %d cards (%d skipped) into %s\n", len(defs), skipped, outPath)
}

func parseRecord(record []string) (card.Definition, error) {
	if len(record) < columnCount {
		return card.Definition{}, fmt.Errorf("insufficient columns")
	}

	ints := make([]int, columnCount)
	for _, col := range []int{colID, colManaCost, colAttackPower, colHealth} {
		v, err := strconv.Atoi(strings.TrimSpace(record[col]))
		if err != nil {
			return card.Definition{}, fmt.Errorf("column %d: %w", col+1, err)
		}
		ints[col] = v
	}

	def := card.Definition{
		ID:          ints[colID],
		Minion:      parseBool(record[colMinion]),
		Charge:      parseBool(record[colCharge]),
		Taunt:       parseBool(record[colTaunt]),
		ManaCost:    ints[colManaCost],
		AttackPower: ints[colAttackPower],
		Health:      ints[colHealth],
	}
	return def, def.Validate()
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}
