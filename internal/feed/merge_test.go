package feed

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/feedgrid-platform/api/internal/store"
)

func testMeta() RowMeta {
	return RowMeta{
		WorkspaceID: uuid.New(),
		SupplierID:  uuid.New(),
		IngestionID: uuid.New(),
		SourceFile:  "https://example.com/feed.csv",
		ImportedAt:  time.Now().UTC(),
	}
}

func TestBuildRowsPreservesUnmappedFields(t *testing.T) {
	fieldA := store.CustomField{ID: uuid.New(), Key: "a", Datatype: DatatypeNumber}
	resolved := ResolveMapping(
		[]store.FieldMapping{{SourceKey: "a", FieldKey: "a"}},
		nil,
		[]store.CustomField{fieldA},
		nil,
	)

	records := []Record{{"a": "9"}}
	existing := map[string]map[string]any{
		"5": {"a": 1.0, "b": 2.0},
	}

	rows, stats := BuildRows(records, []string{"5"}, resolved, existing, testMeta())

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Fields["a"] != 9.0 {
		t.Fatalf("mapped value should win, got %v", rows[0].Fields["a"])
	}
	if rows[0].Fields["b"] != 2.0 {
		t.Fatalf("unmapped field should survive, got %v", rows[0].Fields["b"])
	}
	if stats.Updated != 1 || stats.New != 0 {
		t.Fatalf("expected 1 updated row, got %+v", stats)
	}
}

func TestBuildRowsAbsenceKeepsStoredValue(t *testing.T) {
	field := store.CustomField{ID: uuid.New(), Key: "price", Datatype: DatatypeNumber}
	resolved := ResolveMapping(
		[]store.FieldMapping{{SourceKey: "price", FieldKey: "price"}},
		nil,
		[]store.CustomField{field},
		nil,
	)

	records := []Record{{"price": ""}, {"price": "null"}}
	existing := map[string]map[string]any{
		"1": {"price": 10.0},
		"2": {"price": 20.0},
	}

	rows, _ := BuildRows(records, []string{"1", "2"}, resolved, existing, testMeta())

	if rows[0].Fields["price"] != 10.0 || rows[1].Fields["price"] != 20.0 {
		t.Fatalf("absent source values should keep stored values, got %v and %v",
			rows[0].Fields["price"], rows[1].Fields["price"])
	}
}

func TestBuildRowsNormalizesLegacyKeyedExistingFields(t *testing.T) {
	field := store.CustomField{ID: uuid.New(), Key: "title", Datatype: DatatypeText}
	resolved := ResolveMapping(nil, nil, []store.CustomField{field}, nil)

	existing := map[string]map[string]any{
		"7": {field.ID.String(): "Old Title"},
	}

	rows, _ := BuildRows([]Record{{}}, []string{"7"}, resolved, existing, testMeta())

	if rows[0].Fields["title"] != "Old Title" {
		t.Fatalf("expected legacy uuid key rewritten, got %v", rows[0].Fields)
	}
}

func TestBuildRowsCaseInsensitiveSourceLookup(t *testing.T) {
	field := store.CustomField{ID: uuid.New(), Key: "name", Datatype: DatatypeText}
	resolved := ResolveMapping(
		[]store.FieldMapping{{SourceKey: "Name", FieldKey: "name"}},
		nil,
		[]store.CustomField{field},
		nil,
	)

	rows, stats := BuildRows([]Record{{"NAME": "Widget"}}, []string{"3"}, resolved, nil, testMeta())

	if rows[0].Fields["name"] != "Widget" {
		t.Fatalf("expected case-insensitive lookup, got %v", rows[0].Fields)
	}
	if stats.New != 1 {
		t.Fatalf("expected new row, got %+v", stats)
	}
}

func TestBuildRowsDropsRecordsWithoutUID(t *testing.T) {
	resolved := ResolveMapping(nil, nil, nil, nil)

	rows, stats := BuildRows([]Record{{}, {}}, []string{"1"}, resolved, nil, testMeta())

	if len(rows) != 1 {
		t.Fatalf("expected record without uid dropped, got %d rows", len(rows))
	}
	if stats.Dropped != 1 {
		t.Fatalf("expected drop counted, got %+v", stats)
	}
}
