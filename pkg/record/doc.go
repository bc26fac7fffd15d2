// Package record maps Go types to relational tables by convention.
//
// A type named Song persists to the table songs. Its columns are discovered
// at call time from the datastore's schema, and each column is bound to the
// entity property of the same name:
//
//	type Song struct {
//		record.Model
//		Name   record.Value[string] `db:"name"`
//		Artist record.Value[string] `db:"artist"`
//	}
//
//	store := record.NewStore(db)
//	song, err := record.New[Song](map[string]any{"name": "Test", "artist": "Tester"})
//	id, err := store.Save(ctx, song)
//	rows, err := store.FindBy(ctx, song, record.Eq("name", "Test"))
//
// Properties that were never assigned are absent and left out of the insert
// entirely, so the column default applies. An explicit NULL is written as
// NULL. Lookups return raw rows; Bind a row's Map onto a new entity to load
// it.
package record
