package models

import "time"

// ArchivedResult is a successful solve kept for export downloads.
type ArchivedResult struct {
	ID         string        `json:"id"`
	SessionID  string        `json:"sessionId"`
	Request    SolveRequest  `json:"request"`
	Response   SolveResponse `json:"response"`
	ReceivedAt time.Time     `json:"receivedAt"`
}

// ExportFormat names a download format.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)
