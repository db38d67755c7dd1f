package feed

import (
	"time"

	"github.com/google/uuid"

	"github.com/feedgrid-platform/api/internal/store"
)

type RowMeta struct {
	WorkspaceID uuid.UUID
	SupplierID  uuid.UUID
	IngestionID uuid.UUID
	SourceFile  string
	ImportedAt  time.Time
}

type MergeStats struct {
	New     int
	Updated int
	Dropped int
}

// BuildRows applies the resolved mapping to each record, merges the coerced
// values over the stored snapshot for the same uid, and emits upsert-ready
// rows. Mapped values win per key; keys absent from the patch keep their
// stored value. Records without a uid are dropped and counted.
func BuildRows(records []Record, uids []string, resolved ResolvedMapping, existingByUID map[string]map[string]any, meta RowMeta) ([]store.ProductRow, MergeStats) {
	rows := make([]store.ProductRow, 0, len(records))
	var stats MergeStats

	for i, rec := range records {
		if i >= len(uids) || uids[i] == "" {
			stats.Dropped++
			continue
		}
		uid := uids[i]

		mapped := map[string]any{}
		for sourceKey, fieldKey := range resolved.BySourceKey {
			value, ok := rec.lookupFold(sourceKey)
			if !ok || IsAbsent(value) {
				continue
			}
			mapped[fieldKey] = Coerce(value, resolved.Datatype(fieldKey))
		}

		existing, known := existingByUID[uid]
		merged := resolved.NormalizeLegacyFieldKeys(existing)
		for key, value := range mapped {
			merged[key] = value
		}

		if known {
			stats.Updated++
		} else {
			stats.New++
		}

		rows = append(rows, store.ProductRow{
			ID:          uuid.New(),
			WorkspaceID: meta.WorkspaceID,
			SupplierID:  meta.SupplierID,
			UID:         uid,
			IngestionID: meta.IngestionID,
			Fields:      merged,
			SourceFile:  meta.SourceFile,
			ImportedAt:  meta.ImportedAt,
		})
	}

	return rows, stats
}
