package sqlite

import "time"

// InstrumentRow is one cached catalog entry.
type InstrumentRow struct {
	ID uint `gorm:"primaryKey"`

	// unique index
	Segment   string `gorm:"type:varchar(8);not null;index:idx_segment_scrip,unique"`
	ScripCode int64  `gorm:"not null;index:idx_segment_scrip,unique"`

	// provider listing order within the segment; search semantics depend on it
	Position int `gorm:"not null;index:idx_instrument_position"`

	Symbol string `gorm:"type:text;not null;index:idx_instrument_symbol"`
	Name   string `gorm:"type:text;not null"`
	Type   string `gorm:"type:varchar(16);not null"`

	Expiry *time.Time
	Strike float64 `gorm:"type:numeric"`
	Right  string  `gorm:"type:varchar(4)"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (InstrumentRow) TableName() string {
	return "instrument_row"
}
