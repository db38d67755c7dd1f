package feed

import (
	"strings"

	"github.com/google/uuid"

	"github.com/feedgrid-platform/api/internal/store"
)

// MappingOverride is a caller-supplied mapping pair that takes precedence
// over stored mappings for a single run (the wizard's "import now" path).
type MappingOverride struct {
	CustomFieldID uuid.UUID `json:"custom_field_id"`
	SourceField   string    `json:"source_field"`
}

// ResolvedMapping is the per-run view of a supplier's mapping configuration,
// with legacy field-id references already normalized to field keys.
type ResolvedMapping struct {
	// BySourceKey maps lower-cased source field names to target field keys.
	BySourceKey map[string]string
	// FieldByKey maps lower-cased field keys to their definitions.
	FieldByKey map[string]store.CustomField
	// FieldByID resolves legacy uuid-keyed references.
	FieldByID map[uuid.UUID]store.CustomField
}

// ResolveMapping builds the run mapping from stored rows or overrides, then
// auto-fills any custom field that matches a parsed field name and has no
// explicit mapping. Unresolvable field-id references keep their raw value so
// the pipeline degrades instead of dropping the mapping.
func ResolveMapping(stored []store.FieldMapping, overrides []MappingOverride, fields []store.CustomField, recordKeys []string) ResolvedMapping {
	resolved := ResolvedMapping{
		BySourceKey: map[string]string{},
		FieldByKey:  map[string]store.CustomField{},
		FieldByID:   map[uuid.UUID]store.CustomField{},
	}
	for _, f := range fields {
		resolved.FieldByID[f.ID] = f
		key := strings.ToLower(f.Key)
		if _, exists := resolved.FieldByKey[key]; !exists {
			resolved.FieldByKey[key] = f
		}
	}

	if len(overrides) > 0 {
		for _, ov := range overrides {
			source := strings.ToLower(strings.TrimSpace(ov.SourceField))
			if source == "" {
				continue
			}
			fieldKey := ov.CustomFieldID.String()
			if f, ok := resolved.FieldByID[ov.CustomFieldID]; ok {
				fieldKey = f.Key
			}
			resolved.BySourceKey[source] = fieldKey
		}
	} else {
		for _, fm := range stored {
			source := strings.ToLower(strings.TrimSpace(fm.SourceKey))
			if source == "" {
				continue
			}
			resolved.BySourceKey[source] = resolveFieldRef(fm.FieldKey, resolved.FieldByID)
		}
	}

	// Auto-fill: a custom field named like a source field needs no explicit
	// mapping row.
	mappedTargets := map[string]struct{}{}
	for _, fieldKey := range resolved.BySourceKey {
		mappedTargets[strings.ToLower(fieldKey)] = struct{}{}
	}
	for _, f := range fields {
		if _, mapped := mappedTargets[strings.ToLower(f.Key)]; mapped {
			continue
		}
		for _, recordKey := range recordKeys {
			if !strings.EqualFold(recordKey, f.Key) {
				continue
			}
			source := strings.ToLower(recordKey)
			if _, taken := resolved.BySourceKey[source]; !taken {
				resolved.BySourceKey[source] = f.Key
			}
			break
		}
	}

	return resolved
}

// resolveFieldRef turns a stored mapping target into a canonical field key.
// Legacy rows store the custom field's uuid instead of its key; anything that
// doesn't resolve stays as-is.
func resolveFieldRef(raw string, byID map[uuid.UUID]store.CustomField) string {
	if id, err := uuid.Parse(raw); err == nil {
		if f, ok := byID[id]; ok {
			return f.Key
		}
	}
	return raw
}

// NormalizeLegacyFieldKeys rewrites uuid-keyed entries of a stored fields map
// to their field keys. Runs once per row at merge time, against the same
// lookup the resolver used.
func (m ResolvedMapping) NormalizeLegacyFieldKeys(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	normalized := make(map[string]any, len(fields))
	for key, value := range fields {
		normalized[resolveFieldRef(key, m.FieldByID)] = value
	}
	return normalized
}

// Datatype returns the declared datatype for a target field key, defaulting
// to text when no definition is found (tolerates historical duplicate or
// orphaned mappings).
func (m ResolvedMapping) Datatype(fieldKey string) string {
	if f, ok := m.FieldByKey[strings.ToLower(fieldKey)]; ok {
		return f.Datatype
	}
	return DatatypeText
}
