package feed

import (
	"fmt"
	"sort"
	"strconv"
)

// Parse extracts a flat sequence of records from raw feed content. XML and
// CSV records are stamped with a synthetic ordering uid (xml_<i>, csv_<i>);
// JSON records keep their own id/uid when one exists. These synthetic uids
// are preview identifiers, distinct from the persisted workspace uids.
func Parse(content string, format Format) ([]Record, error) {
	records, err := parse(content, format)
	if err != nil {
		return nil, err
	}

	for i, rec := range records {
		switch format {
		case FormatXML:
			rec["uid"] = fmt.Sprintf("xml_%d", i)
		case FormatCSV:
			rec["uid"] = fmt.Sprintf("csv_%d", i)
		case FormatJSON:
			if s := stringifyScalar(rec["id"]); s != "" {
				rec["uid"] = s
			} else if s := stringifyScalar(rec["uid"]); s != "" {
				rec["uid"] = s
			} else {
				rec["uid"] = fmt.Sprintf("json_%d", i)
			}
		}
	}
	return records, nil
}

// DiscoverFieldNames returns the sorted set of field names the parsing
// strategies can see in the content. Used by mapping wizards; parse failures
// yield an empty list rather than an error.
func DiscoverFieldNames(content string, format Format) []string {
	records, err := parse(content, format)
	if err != nil {
		return []string{}
	}

	set := map[string]struct{}{}
	for _, rec := range records {
		for key := range rec {
			set[key] = struct{}{}
		}
	}

	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func parse(content string, format Format) ([]Record, error) {
	switch format {
	case FormatXML:
		return parseXML(content), nil
	case FormatJSON:
		return parseJSON(content)
	default:
		return parseCSV(content), nil
	}
}

// stringifyScalar renders a raw scalar value the way it looked in the source:
// whole floats print without a decimal point. Objects and arrays yield ""
// so callers can fall back to a positional uid.
func stringifyScalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
