package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ersonp/lore-state/internal/domain/entities"
)

// CSVParser parses declarations from CSV format.
type CSVParser struct{}

// Parse reads CSV from the reader and returns the declarations.
// Expected columns: kind (item|character), name, description, relationship
func (p *CSVParser) Parse(r io.Reader) (*entities.GeneratorOutput, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, colIndex)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}

	requiredCols := []string{"kind", "name"}
	for _, col := range requiredCols {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	return colIndex, nil
}

// readRecords reads all data rows and sorts them into items and characters.
func (p *CSVParser) readRecords(reader *csv.Reader, colIndex map[string]int) (*entities.GeneratorOutput, error) {
	out := &entities.GeneratorOutput{}
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		name := strings.TrimSpace(getColumn(record, colIndex, "name"))
		if name == "" {
			return nil, fmt.Errorf("line %d: name is required", lineNum)
		}
		description := getColumn(record, colIndex, "description")

		switch kind := strings.ToLower(strings.TrimSpace(getColumn(record, colIndex, "kind"))); kind {
		case "item":
			out.NewItems = append(out.NewItems, entities.DeclaredItem{
				Name:        name,
				Description: description,
			})
		case "character":
			out.NewCharacters = append(out.NewCharacters, entities.DeclaredCharacter{
				Name:         name,
				Description:  description,
				Relationship: getColumn(record, colIndex, "relationship"),
			})
		default:
			return nil, fmt.Errorf("line %d: unknown kind %q (want item or character)", lineNum, kind)
		}
	}

	return out, nil
}

// getColumn safely retrieves a column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return record[idx]
	}
	return ""
}
