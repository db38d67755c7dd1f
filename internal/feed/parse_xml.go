package feed

import (
	"regexp"
	"strings"
)

// Repeated element names treated as one-record-per-block wrappers.
var xmlWrapperNames = []string{"product", "item", "entry"}

// Container tags excluded from the flat-document fallback.
var xmlContainerTags = map[string]struct{}{
	"xml": {}, "root": {}, "data": {}, "products": {},
	"items": {}, "entries": {}, "catalog": {},
}

// Matches <tag ...>text</tag> where text holds no nested markup. Go's regexp
// has no backreferences, so the closing tag is captured and compared in code.
var xmlTagTextRe = regexp.MustCompile(`(?s)<([A-Za-z_][A-Za-z0-9_.:-]*)(?:\s[^>]*)?>([^<]*)</([A-Za-z_][A-Za-z0-9_.:-]*)\s*>`)

var xmlWrapperRes = func() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(xmlWrapperNames))
	for _, name := range xmlWrapperNames {
		res[name] = regexp.MustCompile(`(?is)<` + name + `(?:\s[^>]*)?>(.*?)</` + name + `\s*>`)
	}
	return res
}()

// parseXML is best-effort tag scanning, not schema validation: feeds are
// arbitrary third-party XML and a malformed fragment should cost one field,
// not the run.
func parseXML(content string) []Record {
	for _, name := range xmlWrapperNames {
		blocks := xmlWrapperRes[name].FindAllStringSubmatch(content, -1)
		if len(blocks) == 0 {
			continue
		}

		records := make([]Record, 0, len(blocks))
		for _, block := range blocks {
			rec := Record{}
			for _, pair := range xmlTagTextRe.FindAllStringSubmatch(block[1], -1) {
				tag, text, closing := pair[1], pair[2], pair[3]
				if !strings.EqualFold(tag, closing) {
					continue
				}
				if isXMLWrapperName(tag) {
					continue
				}
				if _, exists := rec[tag]; exists {
					continue
				}
				rec[tag] = strings.TrimSpace(text)
			}
			records = append(records, rec)
		}
		return records
	}

	// No wrapper blocks: collect unique top-level tag/text pairs from the
	// whole document as a single record.
	rec := Record{}
	for _, pair := range xmlTagTextRe.FindAllStringSubmatch(content, -1) {
		tag, text, closing := pair[1], pair[2], pair[3]
		if !strings.EqualFold(tag, closing) {
			continue
		}
		if _, container := xmlContainerTags[strings.ToLower(tag)]; container {
			continue
		}
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		if _, exists := rec[tag]; exists {
			continue
		}
		rec[tag] = trimmed
	}
	if len(rec) == 0 {
		return nil
	}
	return []Record{rec}
}

func isXMLWrapperName(tag string) bool {
	for _, name := range xmlWrapperNames {
		if strings.EqualFold(tag, name) {
			return true
		}
	}
	return false
}
