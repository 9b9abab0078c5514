package settings

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/agrihover/backend-quote/internal/common"
	"github.com/agrihover/backend-quote/internal/pricing"
	"github.com/agrihover/backend-quote/internal/repo"
)

// Store defines the persistence operations the settings service relies on.
type Store interface {
	Get(ctx context.Context) (repo.SettingsRow, error)
	Upsert(ctx context.Context, s repo.SettingsRow) (repo.SettingsRow, error)
}

// Settings is the API representation of company settings: the legacy
// three-point calibration table plus branding fields used on documents.
type Settings struct {
	Calibration    pricing.CalibrationSettings `json:"calibration"`
	Currency       string                      `json:"currency"`
	CompanyName    string                      `json:"companyName,omitempty"`
	CompanyAddress string                      `json:"companyAddress,omitempty"`
	CompanyPhone   string                      `json:"companyPhone,omitempty"`
	CompanyEmail   string                      `json:"companyEmail,omitempty"`
	LogoURL        string                      `json:"logoUrl,omitempty"`
}

// Input captures the PUT settings payload.
type Input struct {
	Calibration    pricing.CalibrationSettings `json:"calibration"`
	Currency       string                      `json:"currency" validate:"omitempty,len=3"`
	CompanyName    string                      `json:"companyName"`
	CompanyAddress string                      `json:"companyAddress"`
	CompanyPhone   string                      `json:"companyPhone"`
	CompanyEmail   string                      `json:"companyEmail" validate:"omitempty,email"`
	LogoURL        string                      `json:"logoUrl" validate:"omitempty,url"`
}

// CalculateInput is the legacy single-job calculator request.
type CalculateInput struct {
	Hectares   float64 `json:"hectares" validate:"gt=0"`
	Speed      float64 `json:"speed" validate:"gt=0"`
	FlowRate   float64 `json:"flowRate" validate:"gt=0"`
	SprayWidth float64 `json:"sprayWidth" validate:"gt=0"`
}

// Defaults returned before the settings row was ever saved.
var defaultSettings = Settings{
	Calibration: pricing.CalibrationSettings{
		Point1Lpha: 40, Point1Rate: 200,
		Point2Lpha: 80, Point2Rate: 300,
		Point3Lpha: 160, Point3Rate: 400,
		DiscountThreshold: 100,
		DiscountRate:      0.15,
	},
	Currency: "ZAR",
}

// Service orchestrates settings reads, writes, and the legacy calculator.
type Service struct {
	store    Store
	validate *validator.Validate
}

// NewService constructs a settings service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("settings: store is required")
	}
	return &Service{store: store, validate: validator.New()}, nil
}

// Get returns the stored settings, falling back to defaults when the row was
// never written.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	row, err := s.store.Get(ctx)
	if err != nil {
		if repo.IsNotFound(err) {
			return defaultSettings, nil
		}
		return Settings{}, err
	}
	return convert(row), nil
}

// Update validates and stores the settings row.
func (s *Service) Update(ctx context.Context, in Input) (Settings, error) {
	if err := s.validate.Struct(in); err != nil {
		return Settings{}, common.NewAppError("VALIDATION_ERROR", "invalid settings payload", http.StatusUnprocessableEntity, err)
	}
	if err := validateCalibration(in.Calibration); err != nil {
		return Settings{}, err
	}
	if in.Currency == "" {
		in.Currency = defaultSettings.Currency
	}
	row, err := s.store.Upsert(ctx, repo.SettingsRow{
		Point1Lpha:        in.Calibration.Point1Lpha,
		Point1Rate:        in.Calibration.Point1Rate,
		Point2Lpha:        in.Calibration.Point2Lpha,
		Point2Rate:        in.Calibration.Point2Rate,
		Point3Lpha:        in.Calibration.Point3Lpha,
		Point3Rate:        in.Calibration.Point3Rate,
		DiscountThreshold: in.Calibration.DiscountThreshold,
		DiscountRate:      in.Calibration.DiscountRate,
		Currency:          in.Currency,
		CompanyName:       in.CompanyName,
		CompanyAddress:    in.CompanyAddress,
		CompanyPhone:      in.CompanyPhone,
		CompanyEmail:      in.CompanyEmail,
		LogoURL:           in.LogoURL,
	})
	if err != nil {
		return Settings{}, err
	}
	return convert(row), nil
}

// Calculate runs the legacy single-job calculator against the stored
// calibration table.
func (s *Service) Calculate(ctx context.Context, in CalculateInput) (pricing.JobCostResult, error) {
	if err := s.validate.Struct(in); err != nil {
		return pricing.JobCostResult{}, common.NewAppError("VALIDATION_ERROR", "hectares, speed, flowRate, and sprayWidth must all be positive", http.StatusUnprocessableEntity, err)
	}
	current, err := s.Get(ctx)
	if err != nil {
		return pricing.JobCostResult{}, err
	}
	return pricing.CalculateJobCost(current.Calibration, in.Hectares, in.Speed, in.FlowRate, in.SprayWidth), nil
}

// validateCalibration enforces an ascending, positive calibration curve so
// interpolation stays monotonic in the threshold axis.
func validateCalibration(c pricing.CalibrationSettings) error {
	bad := func(msg string) error {
		return common.NewAppError("VALIDATION_ERROR", msg, http.StatusUnprocessableEntity, nil)
	}
	if c.Point1Lpha <= 0 || c.Point1Rate <= 0 ||
		c.Point2Rate <= 0 || c.Point3Rate <= 0 {
		return bad("calibration points must be positive")
	}
	if c.Point2Lpha <= c.Point1Lpha || c.Point3Lpha <= c.Point2Lpha {
		return bad("calibration thresholds must be strictly ascending")
	}
	if c.DiscountThreshold < 0 {
		return bad("discountThreshold must not be negative")
	}
	if c.DiscountRate < 0 || c.DiscountRate > 1 {
		return bad("discountRate must be between 0 and 1")
	}
	return nil
}

func convert(row repo.SettingsRow) Settings {
	return Settings{
		Calibration: pricing.CalibrationSettings{
			Point1Lpha: row.Point1Lpha, Point1Rate: row.Point1Rate,
			Point2Lpha: row.Point2Lpha, Point2Rate: row.Point2Rate,
			Point3Lpha: row.Point3Lpha, Point3Rate: row.Point3Rate,
			DiscountThreshold: row.DiscountThreshold,
			DiscountRate:      row.DiscountRate,
		},
		Currency:       row.Currency,
		CompanyName:    row.CompanyName,
		CompanyAddress: row.CompanyAddress,
		CompanyPhone:   row.CompanyPhone,
		CompanyEmail:   row.CompanyEmail,
		LogoURL:        row.LogoURL,
	}
}
