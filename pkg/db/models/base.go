package models

import "github.com/google/uuid"

// assignID fills an empty primary key. IDs are generated in the application
// so the same models work on Postgres and SQLite.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// AllModels lists every persisted model, in dependency order, for AutoMigrate.
func AllModels() []any {
	return []any{&User{}, &Supplier{}, &Item{}, &PurchaseOrder{}}
}
