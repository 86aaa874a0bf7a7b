package db

import "gorm.io/gorm"

// EnsureSchema creates the named Postgres schema if it is missing. Tables
// are managed by migrations; only the namespace is ensured here.
func EnsureSchema(d *gorm.DB, schema string) error {
	return d.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error
}
