package dao

import "gorm.io/gorm"

// InitTables creates or migrates every table. Order matters: each table's
// foreign keys point at tables created before it.
func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&Event{},
		&Ticket{},
		&Participant{},
		&Certificate{},
		&FileAssetRecord{},
	)
}

// DropTables removes every table owned by this service. Used by the
// integration tests to start from an empty schema.
func DropTables(db *gorm.DB) error {
	return db.Migrator().DropTable(
		&FileAssetRecord{},
		&Certificate{},
		&Participant{},
		&Ticket{},
		&Event{},
	)
}
