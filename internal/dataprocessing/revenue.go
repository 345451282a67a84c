package dataprocessing

import (
	"conflictpanel/pkg/contracts/domain"
)

// RevenueOptions locates the arms-industry ranking inside its workbook
type RevenueOptions struct {
	Sheet         string
	SkipRows      int
	MissingMarker string
	CompanyColumn string
	ShareColumn   string
}

// RevenueStats counts the rows of the ranking
type RevenueStats struct {
	Read        int `json:"read"`
	Unreported  int `json:"unreported"`
	Qualified   int `json:"qualified"`
	BelowCutoff int `json:"below_cutoff"`
	// Unparsable shares are neither blank nor the missing marker; they count
	// as unreported too
	Unparsable int `json:"unparsable"`
}

// ParseRevenue reads company names and arms-sales shares. Shares that are
// missing, marked with the missing marker or not numeric are left nil; the
// returned stats carry Read and Unparsable.
func ParseRevenue(path string, opts RevenueOptions) ([]domain.CompanyRevenue, RevenueStats, error) {
	var stats RevenueStats
	table, err := readSheet(path, opts.Sheet, opts.SkipRows)
	if err != nil {
		return nil, stats, err
	}
	if err := table.require(opts.CompanyColumn, opts.ShareColumn); err != nil {
		return nil, stats, err
	}

	revenues := make([]domain.CompanyRevenue, 0, len(table.rows))
	for _, row := range table.rows {
		if isBlankRow(row) {
			continue
		}
		rev := domain.CompanyRevenue{Company: table.cell(row, opts.CompanyColumn)}
		share, err := parseOptionalFloat(table.cell(row, opts.ShareColumn), opts.MissingMarker)
		if err != nil {
			stats.Unparsable++
		} else {
			rev.ArmsShare = share
		}
		revenues = append(revenues, rev)
	}
	stats.Read = len(revenues)
	return revenues, stats, nil
}

// QualifiedCompanies selects companies whose arms share is at least threshold
// percent. Companies without a share never qualify.
func QualifiedCompanies(revenues []domain.CompanyRevenue, threshold float64) (domain.CompanySet, RevenueStats) {
	stats := RevenueStats{Read: len(revenues)}
	set := domain.NewCompanySet()
	for _, r := range revenues {
		switch {
		case r.ArmsShare == nil:
			stats.Unreported++
		case *r.ArmsShare >= threshold:
			set[r.Company] = struct{}{}
		default:
			stats.BelowCutoff++
		}
	}
	stats.Qualified = len(set)
	return set, stats
}
