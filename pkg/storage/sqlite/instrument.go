package sqlite

import (
	"context"

	"nsedata/internal/nse/catalog"

	"gorm.io/gorm"
)

// ReplaceSegment swaps a segment's cached rows for a fresh download in one
// transaction, so readers never observe a half-written segment.
func (c *Client) ReplaceSegment(ctx context.Context, seg catalog.Segment, records []catalog.InstrumentRecord) error {
	rows := make([]InstrumentRow, len(records))
	for i, rec := range records {
		rows[i] = toRow(seg, i, rec)
	}

	return c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("segment = ?", string(seg)).Delete(&InstrumentRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 500).Error
	})
}

// LoadSegment returns a segment's cached records in provider listing order.
// An uncached segment yields an empty slice, not an error.
func (c *Client) LoadSegment(ctx context.Context, seg catalog.Segment) ([]catalog.InstrumentRecord, error) {
	var rows []InstrumentRow
	err := c.DB.WithContext(ctx).
		Where("segment = ?", string(seg)).
		Order("position").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]catalog.InstrumentRecord, len(rows))
	for i, row := range rows {
		records[i] = fromRow(row)
	}
	return records, nil
}

func (c *Client) CountBySegment(ctx context.Context, seg catalog.Segment) (int64, error) {
	var count int64
	err := c.DB.WithContext(ctx).
		Model(&InstrumentRow{}).
		Where("segment = ?", string(seg)).
		Count(&count).Error
	return count, err
}

func toRow(seg catalog.Segment, position int, rec catalog.InstrumentRecord) InstrumentRow {
	row := InstrumentRow{
		Segment:   string(seg),
		ScripCode: rec.ScripCode,
		Position:  position,
		Symbol:    rec.Symbol,
		Name:      rec.Name,
		Type:      string(rec.Type),
		Strike:    rec.Strike,
		Right:     string(rec.Right),
	}
	if !rec.Expiry.IsZero() {
		expiry := rec.Expiry
		row.Expiry = &expiry
	}
	return row
}

func fromRow(row InstrumentRow) catalog.InstrumentRecord {
	rec := catalog.InstrumentRecord{
		ScripCode: row.ScripCode,
		Symbol:    row.Symbol,
		Name:      row.Name,
		Type:      catalog.InstrumentType(row.Type),
		Segment:   catalog.Segment(row.Segment),
		Strike:    row.Strike,
		Right:     catalog.OptionRight(row.Right),
	}
	if row.Expiry != nil {
		rec.Expiry = *row.Expiry
	}
	return rec
}
