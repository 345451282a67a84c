package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conflictpanel/internal/config"
	apperrors "conflictpanel/internal/errors"
	"conflictpanel/pkg/contracts/domain"
)

func defaultRevenueOptions() RevenueOptions {
	return RevenueOptions{
		Sheet:         config.DefaultRevenueSheet,
		SkipRows:      config.DefaultRevenueSkipRows,
		MissingMarker: config.DefaultRevenueMissing,
		CompanyColumn: config.DefaultRevenueCompany,
		ShareColumn:   config.DefaultRevenueShare,
	}
}

func TestParseRevenue(t *testing.T) {
	path := writeWorkbook(t, "2018", [][]interface{}{
		{"The SIPRI Top 100 arms-producing and military services companies, 2018"},
		{"Figures are in US$ millions"},
		{},
		{"Rank 2018", "Company (c) ", "Country", "Arms sales as a % of total sales (2018)"},
		{1, "Lockheed Martin Corp.", "USA", 90},
		{2, "Boeing", "USA", 29},
		{3, "Almaz-Antey", "Russia", ". ."},
		{4, "Rafael", "Israel", "n.a."},
		{5, "Elbit Systems", "Israel", 49.9},
		{6, "Leonardo", "Italy", 50},
	})

	revenues, parsed, err := ParseRevenue(path, defaultRevenueOptions())
	require.NoError(t, err)
	require.Len(t, revenues, 6)
	assert.Equal(t, RevenueStats{Read: 6, Unparsable: 1}, parsed)

	assert.Equal(t, "Lockheed Martin Corp.", revenues[0].Company)
	require.NotNil(t, revenues[0].ArmsShare)
	assert.Equal(t, 90.0, *revenues[0].ArmsShare)
	assert.Nil(t, revenues[2].ArmsShare)
	assert.Nil(t, revenues[3].ArmsShare)

	qualified, stats := QualifiedCompanies(revenues, config.DefaultArmsShareThreshold)
	assert.Equal(t, []string{"Leonardo", "Lockheed Martin Corp."}, qualified.Names())
	assert.False(t, qualified.Contains("Elbit Systems"))
	assert.Equal(t, RevenueStats{Read: 6, Unreported: 2, Qualified: 2, BelowCutoff: 2}, stats)
}

func TestParseRevenue_MissingShareColumn(t *testing.T) {
	path := writeWorkbook(t, "2018", [][]interface{}{
		{}, {}, {},
		{"Rank 2018", "Company (c)"},
		{1, "Lockheed Martin Corp."},
	})

	_, _, err := ParseRevenue(path, defaultRevenueOptions())
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
}

func TestQualifiedCompanies_Threshold(t *testing.T) {
	revenues := []domain.CompanyRevenue{
		{Company: "A", ArmsShare: f64(49.9)},
		{Company: "B", ArmsShare: f64(50)},
		{Company: "C", ArmsShare: f64(100)},
		{Company: "D"},
	}

	set, _ := QualifiedCompanies(revenues, 50)
	assert.Equal(t, []string{"B", "C"}, set.Names())

	set, _ = QualifiedCompanies(revenues, 0)
	assert.Equal(t, []string{"A", "B", "C"}, set.Names())
}
