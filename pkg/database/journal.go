package database

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

// Compensation is a follow-up write that could not be applied after a partial failure:
// an object left in the media store, a video record without its channel entry, and so on.
type Compensation struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	Operation string    `gorm:"index" json:"operation"`
	Resource  string    `json:"resource"`
	Reference string    `json:"reference"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Journal keeps compensation rows in a local sqlite file so an operator can clean up.
type Journal struct {
	db *gorm.DB
}

func OpenJournal(path string) (*Journal, error) {
	db, err := gorm.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := db.AutoMigrate(&Compensation{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Record(entry Compensation) error {
	entry.ID = 0
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return j.db.Create(&entry).Error
}

// Pending returns the oldest rows first.
func (j *Journal) Pending(limit int) ([]Compensation, error) {
	var rows []Compensation
	q := j.db.Order("created_at asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}
