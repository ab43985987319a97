package types

import "time"

// SessionInfo summarizes one scrape run for the output envelope.
type SessionInfo struct {
	StartTime               time.Time `json:"start_time" bson:"start_time"`
	EndTime                 time.Time `json:"end_time" bson:"end_time"`
	TotalPagesScraped       int       `json:"total_pages_scraped" bson:"total_pages_scraped"`
	TotalCompaniesExtracted int       `json:"total_companies_extracted" bson:"total_companies_extracted"`
	ErrorsEncountered       int       `json:"errors_encountered" bson:"errors_encountered"`
}
