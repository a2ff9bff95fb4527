// Package models holds the persisted entities of the back-office.
package models

// All lists every model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Permission{},
		&Profile{},
		&User{},
		&Supplier{},
		&Operator{},
		&Client{},
		&Intervention{},
	}
}
