package visits

import (
	"log"

	"gorm.io/gorm"

	"github.com/edozal3/ED305Project/internal/db"
)

// engine is the package-wide query engine, bound to the shared connection.
var engine *Engine

func Init() {
	if err := Migrate(db.DB); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}

	engine = NewEngine(db.DB)
}

// Migrate creates or updates the visitor schema. The ingestion jobs call it
// too, so a fresh database file works without starting the server first.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&Region{}, &Park{}, &MonthlyVisit{}, &LoadAudit{})
}
