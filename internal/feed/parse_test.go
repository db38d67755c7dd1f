package feed

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseXMLWrapperBlocks(t *testing.T) {
	content := `<?xml version="1.0"?>
<catalog>
  <product>
    <sku>A-1</sku>
    <Name>Widget</Name>
    <price>10.50</price>
  </product>
  <product>
    <sku>A-2</sku>
    <Name>Gadget</Name>
    <price>3</price>
  </product>
</catalog>`

	records, err := Parse(content, FormatXML)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0]["sku"] != "A-1" || records[0]["Name"] != "Widget" {
		t.Fatalf("unexpected first record: %v", records[0])
	}
	if records[0]["uid"] != "xml_0" || records[1]["uid"] != "xml_1" {
		t.Fatalf("expected synthetic xml uids, got %v and %v", records[0]["uid"], records[1]["uid"])
	}
}

func TestParseXMLFlatFallback(t *testing.T) {
	content := `<root><title>Catalog</title><vendor>Acme</vendor></root>`

	records, err := Parse(content, FormatXML)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected single flat record, got %d", len(records))
	}
	if records[0]["title"] != "Catalog" || records[0]["vendor"] != "Acme" {
		t.Fatalf("unexpected record: %v", records[0])
	}
	if _, hasContainer := records[0]["root"]; hasContainer {
		t.Fatalf("container tag leaked into record: %v", records[0])
	}
}

func TestParseJSONWrapperUnwrapping(t *testing.T) {
	records, err := Parse(`{"products":[{"id":1,"name":"X"}]}`, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0]["name"] != "X" {
		t.Fatalf("unexpected record: %v", records[0])
	}
	if records[0]["uid"] != "1" {
		t.Fatalf("expected uid defaulted from id, got %v", records[0]["uid"])
	}
}

func TestParseJSONTopLevelArray(t *testing.T) {
	records, err := Parse(`[{"name":"A"},{"name":"B"},"skip-me"]`, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected non-object elements skipped, got %d records", len(records))
	}
	if records[0]["uid"] != "json_0" || records[1]["uid"] != "json_1" {
		t.Fatalf("expected synthetic json uids, got %v and %v", records[0]["uid"], records[1]["uid"])
	}
}

func TestParseJSONNonScalarIDFallsBackToOrdinal(t *testing.T) {
	content := `[{"id":{"ns":"a","val":1},"name":"First"},{"id":["x","y"],"name":"Second"},{"id":7,"name":"Third"}]`

	records, err := Parse(content, FormatJSON)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0]["uid"] != "json_0" {
		t.Fatalf("object id should yield ordinal uid, got %v", records[0]["uid"])
	}
	if records[1]["uid"] != "json_1" {
		t.Fatalf("array id should yield ordinal uid, got %v", records[1]["uid"])
	}
	if records[2]["uid"] != "7" {
		t.Fatalf("scalar id should survive, got %v", records[2]["uid"])
	}
}

func TestParseJSONInvalid(t *testing.T) {
	_, err := Parse(`{"broken":`, FormatJSON)
	if err == nil {
		t.Fatal("expected parse error for invalid json")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
}

func TestParseCSV(t *testing.T) {
	content := "name,price,stock\n\nWidget,10.50,5\nGadget,3\n"

	records, err := Parse(content, FormatCSV)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0]["name"] != "Widget" || records[0]["price"] != "10.50" || records[0]["stock"] != "5" {
		t.Fatalf("unexpected first record: %v", records[0])
	}
	if _, ok := records[1]["stock"]; ok {
		t.Fatalf("short row should omit missing keys, got %v", records[1])
	}
	if records[1]["uid"] != "csv_1" {
		t.Fatalf("expected csv_1, got %v", records[1]["uid"])
	}
}

func TestParseCSVByteOrderMark(t *testing.T) {
	content := "\ufeffsku,price\nA-1,9.99\n"

	records, err := Parse(content, FormatCSV)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0]["sku"] != "A-1" {
		t.Fatalf("header should shed the byte order mark, got %v", records[0])
	}
}

func TestDiscoverFieldNames(t *testing.T) {
	fields := DiscoverFieldNames("sku,price\nA,1\n", FormatCSV)
	if !reflect.DeepEqual(fields, []string{"price", "sku"}) {
		t.Fatalf("expected sorted field names, got %v", fields)
	}

	fields = DiscoverFieldNames(`{"broken":`, FormatJSON)
	if len(fields) != 0 {
		t.Fatalf("expected empty set on parse failure, got %v", fields)
	}
}
