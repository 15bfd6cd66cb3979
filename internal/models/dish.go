package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// StepList is a custom type for handling the ordered preparation steps as a
// JSON string array. Insertion order is preserved across round-trips.
type StepList []string

// Value implements the driver.Valuer interface
func (s StepList) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan implements the sql.Scanner interface
func (s *StepList) Scan(value interface{}) error {
	if value == nil {
		*s = StepList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, s)
}

type Dish struct {
	ID          uuid.UUID       `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description string          `gorm:"type:text;not null" json:"description"`
	QuickPrep   bool            `gorm:"not null;default:false" json:"quickPrep"`
	PrepTime    int             `gorm:"not null;default:0" json:"prepTime"`
	CookTime    int             `gorm:"not null;default:0" json:"cookTime"`
	ImageURL    string          `gorm:"size:255" json:"imageUrl,omitempty"`
	Steps       StepList        `gorm:"type:jsonb;not null;default:'[]'" json:"steps"`
	Calories    *int            `json:"calories"`
	Embedding   pgvector.Vector `gorm:"type:vector(3)" json:"-"`
	UserID      uuid.UUID       `gorm:"type:varchar(36);not null;index" json:"userId"`
}

func (d *Dish) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
