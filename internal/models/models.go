package models

import (
	"time"

	"github.com/google/uuid"
)

// FieldType is the declared type of one schema slot. Stored as plain text
// in Postgres (not a DB enum) so adding a type never needs a migration.
type FieldType string

const (
	FieldTypeString   FieldType = "string"
	FieldTypeNumber   FieldType = "number"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeDatetime FieldType = "datetime"
	FieldTypeEmail    FieldType = "email"
	FieldTypePhone    FieldType = "phone"
)

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeString, FieldTypeNumber, FieldTypeBoolean,
		FieldTypeDatetime, FieldTypeEmail, FieldTypePhone:
		return true
	}
	return false
}

// Account is the tenant and isolation boundary. Every field definition,
// record and lead belongs to exactly one account.
//
// APIKey routes ingest calls (POST /ingest/:api_key) and is never the
// admin credential. It is unique and immutable after creation.
//
// Accounts are soft-deleted: Active=false makes the account invisible to
// ingest (its api_key resolves like a nonexistent one) and to admin
// listings, but its historical data stays in place.
type Account struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	APIKey           string    `json:"api_key"`
	Active           bool      `json:"active"`
	AutoCreateFields bool      `json:"auto_create_fields"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FieldDefinition is one named, typed slot in an account's schema.
//
// (AccountID, FieldName) is unique — enforced by a constraint in Postgres,
// which is what makes concurrent auto-creation race-safe. Unlike accounts,
// field definitions are hard-deleted: a removed field simply stops being
// validated against; historical lead data keeps whatever it captured.
type FieldDefinition struct {
	ID          uuid.UUID `json:"id"`
	AccountID   uuid.UUID `json:"account_id"`
	FieldName   string    `json:"field_name"`
	DataType    FieldType `json:"data_type"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecordMetadata is stored alongside the raw payload: where the call came
// from and which payload keys had no matching definition at ingest time.
type RecordMetadata struct {
	SourceIP      string   `json:"source_ip,omitempty"`
	UnknownFields []string `json:"unknown_fields,omitempty"`
}

// Record is the immutable raw capture of one ingest call. Payload is the
// request body verbatim — never reinterpreted after write, so the original
// delivery can always be replayed or re-derived.
type Record struct {
	ID        uuid.UUID      `json:"id"`
	AccountID uuid.UUID      `json:"account_id"`
	Payload   map[string]any `json:"payload"`
	Metadata  RecordMetadata `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

// Lead is the structured projection of one Record against the account's
// schema as it stood at ingest time. Data maps field_name to the coerced
// (not raw) value; every key had a FieldDefinition when the lead was
// written. Record and Lead are created in one transaction — both exist
// or neither does.
type Lead struct {
	ID        uuid.UUID      `json:"id"`
	AccountID uuid.UUID      `json:"account_id"`
	RecordID  uuid.UUID      `json:"record_id"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
}

// User is an operator of the admin surface. Users are global, not scoped
// to an account — they manage accounts, they don't belong to one.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
