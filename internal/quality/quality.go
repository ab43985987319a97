// Package quality scores the completeness of an extracted record set.
package quality

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/aymanhs/expodir/internal/types"
)

// Completeness weights.
const (
	nameWeight     = 40.0
	contactWeight  = 35.0
	businessWeight = 25.0
)

// Report aggregates completeness statistics over a record set.
type Report struct {
	TotalRecords     int      `json:"total_records"`
	WithName         int      `json:"records_with_name"`
	WithContact      int      `json:"records_with_contact"`
	WithBusinessInfo int      `json:"records_with_business_info"`
	Complete         int      `json:"records_with_complete_data"`
	Score            float64  `json:"data_completeness_score"`
	Issues           []string `json:"quality_issues"`
}

// Scorer computes quality reports. It only reads records.
type Scorer struct {
	logger *slog.Logger
}

// New creates a new Scorer.
func New(logger *slog.Logger) *Scorer {
	return &Scorer{
		logger: logger.With("component", "quality"),
	}
}

// Score computes the completeness report for records. An empty input yields
// a zero report, not an error. Issue strings are 1-indexed.
func (s *Scorer) Score(records []*types.Record) Report {
	report := Report{TotalRecords: len(records)}
	if len(records) == 0 {
		return report
	}

	for i, r := range records {
		hasName := r.HasName()
		hasContact := r.HasContact()
		hasBusiness := r.HasBusinessInfo()

		if hasName {
			report.WithName++
		} else {
			report.Issues = append(report.Issues, fmt.Sprintf("Record %d: missing company name", i+1))
		}
		if hasContact {
			report.WithContact++
		}
		if hasBusiness {
			report.WithBusinessInfo++
		}
		if hasName && hasContact && hasBusiness {
			report.Complete++
		}
	}

	total := float64(len(records))
	score := float64(report.WithName)/total*nameWeight +
		float64(report.WithContact)/total*contactWeight +
		float64(report.WithBusinessInfo)/total*businessWeight
	report.Score = math.Round(score*100) / 100

	s.logger.Info("quality scored",
		"records", report.TotalRecords,
		"score", report.Score,
		"complete", report.Complete,
	)
	return report
}
