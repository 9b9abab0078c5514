package repo

import (
	"context"
)

// SettingsRow mirrors the single-row settings relation: the legacy three-point
// calibration table plus company branding fields.
type SettingsRow struct {
	Point1Lpha        float64
	Point1Rate        float64
	Point2Lpha        float64
	Point2Rate        float64
	Point3Lpha        float64
	Point3Rate        float64
	DiscountThreshold float64
	DiscountRate      float64
	Currency          string
	CompanyName       string
	CompanyAddress    string
	CompanyPhone      string
	CompanyEmail      string
	LogoURL           string
}

// Settings provides access to the settings table.
type Settings struct {
	db DBTX
}

// NewSettings constructs a Settings repository.
func NewSettings(db DBTX) Settings {
	return Settings{db: db}
}

const settingsColumns = `point1_lpha, point1_rate, point2_lpha, point2_rate,
	point3_lpha, point3_rate, discount_threshold, discount_rate,
	currency, company_name, company_address, company_phone, company_email, logo_url`

// Get returns the settings row. pgx.ErrNoRows when never configured.
func (r Settings) Get(ctx context.Context) (SettingsRow, error) {
	var s SettingsRow
	err := r.db.QueryRow(ctx, `SELECT `+settingsColumns+` FROM settings WHERE id = 1`).
		Scan(&s.Point1Lpha, &s.Point1Rate, &s.Point2Lpha, &s.Point2Rate,
			&s.Point3Lpha, &s.Point3Rate, &s.DiscountThreshold, &s.DiscountRate,
			&s.Currency, &s.CompanyName, &s.CompanyAddress, &s.CompanyPhone,
			&s.CompanyEmail, &s.LogoURL)
	return s, err
}

// Upsert writes the settings row, creating it on first save.
func (r Settings) Upsert(ctx context.Context, s SettingsRow) (SettingsRow, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO settings (id, point1_lpha, point1_rate, point2_lpha, point2_rate,
			point3_lpha, point3_rate, discount_threshold, discount_rate,
			currency, company_name, company_address, company_phone, company_email, logo_url)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			point1_lpha = EXCLUDED.point1_lpha, point1_rate = EXCLUDED.point1_rate,
			point2_lpha = EXCLUDED.point2_lpha, point2_rate = EXCLUDED.point2_rate,
			point3_lpha = EXCLUDED.point3_lpha, point3_rate = EXCLUDED.point3_rate,
			discount_threshold = EXCLUDED.discount_threshold,
			discount_rate = EXCLUDED.discount_rate,
			currency = EXCLUDED.currency, company_name = EXCLUDED.company_name,
			company_address = EXCLUDED.company_address, company_phone = EXCLUDED.company_phone,
			company_email = EXCLUDED.company_email, logo_url = EXCLUDED.logo_url
		RETURNING `+settingsColumns,
		s.Point1Lpha, s.Point1Rate, s.Point2Lpha, s.Point2Rate,
		s.Point3Lpha, s.Point3Rate, s.DiscountThreshold, s.DiscountRate,
		s.Currency, s.CompanyName, s.CompanyAddress, s.CompanyPhone, s.CompanyEmail, s.LogoURL).
		Scan(&s.Point1Lpha, &s.Point1Rate, &s.Point2Lpha, &s.Point2Rate,
			&s.Point3Lpha, &s.Point3Rate, &s.DiscountThreshold, &s.DiscountRate,
			&s.Currency, &s.CompanyName, &s.CompanyAddress, &s.CompanyPhone,
			&s.CompanyEmail, &s.LogoURL)
	return s, err
}
