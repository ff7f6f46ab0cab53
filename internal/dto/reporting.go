package dto

import "time"

// ReportPeriodParams bounds a report. Both dates are inclusive and optional.
type ReportPeriodParams struct {
	StartDate *time.Time `form:"startDate" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"endDate" time_format:"2006-01-02"`
}

// MonthlyTrendParams selects the year and, optionally, a single currency.
type MonthlyTrendParams struct {
	Year         int    `form:"year" binding:"omitempty,min=1900,max=9999"` // defaults to the current year
	CurrencyCode string `form:"currency" binding:"omitempty,currency"`
}

// DashboardParams combines the period and trend selectors.
type DashboardParams struct {
	ReportPeriodParams
	Year int `form:"year" binding:"omitempty,min=1900,max=9999"`
}
