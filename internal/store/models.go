package store

import (
	"time"

	"github.com/google/uuid"
)

const (
	SourceKindURL    = "url"
	SourceKindUpload = "upload"
)

const (
	IngestionRunning   = "running"
	IngestionCompleted = "completed"
	IngestionFailed    = "failed"
)

type Workspace struct {
	ID           uuid.UUID
	Name         string
	Slug         string
	APITokenHash string
	CreatedAt    time.Time
}

type Supplier struct {
	ID                  uuid.UUID
	WorkspaceID         uuid.UUID
	Name                string
	SourceKind          string
	SourceURL           *string
	SourcePath          *string
	AuthUsername        *string
	AuthPasswordSealed  []byte
	Schedule            *string
	UIDSourceKey        *string
	IsDraft             bool
	Status              string
	LastSyncStatus      *string
	LastSyncCompletedAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type CustomField struct {
	ID               uuid.UUID
	WorkspaceID      uuid.UUID
	Key              string
	Name             string
	Datatype         string
	IsRequired       bool
	IsUnique         bool
	SortOrder        int32
	UseForCategories bool
	CreatedAt        time.Time
}

type FieldMapping struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	SupplierID  uuid.UUID
	SourceKey   string
	FieldKey    string
	CreatedAt   time.Time
}

type Ingestion struct {
	ID           uuid.UUID
	WorkspaceID  uuid.UUID
	SupplierID   uuid.UUID
	Status       string
	ItemsTotal   int32
	ItemsSuccess int32
	ItemsErrors  int32
	ErrorMessage *string
	UIDDegraded  bool
	StartedAt    time.Time
	CompletedAt  *time.Time
	DurationMS   *int64
}

type ProductRow struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	SupplierID  uuid.UUID
	UID         string
	IngestionID uuid.UUID
	Fields      map[string]any
	SourceFile  string
	ImportedAt  time.Time
}
