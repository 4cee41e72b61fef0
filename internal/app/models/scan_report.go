package models

// ScanReport summarises a file or object scan. Files that cannot be read or
// decoded are counted, not dead-lettered.
type ScanReport struct {
	RunID          string        `json:"runId"`
	FilesFound     int           `json:"filesFound"`
	FilesProcessed int           `json:"filesProcessed"`
	FilesFailed    int           `json:"filesFailed"`
	Resources      int           `json:"resources"`
	Statistics     RunStatistics `json:"statistics"`
}
