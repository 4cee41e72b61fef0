package main

import (
	"fmt"
	"io"
	"strconv"

	"fhir-ingestion-service/internal/app/models"

	"github.com/olekukonko/tablewriter"
)

func printScanReport(w io.Writer, report *models.ScanReport) {
	fmt.Fprintf(w, "Run %s\n", report.RunID)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Files found", "Processed", "Failed", "Resources"})
	table.Append([]string{
		strconv.Itoa(report.FilesFound),
		strconv.Itoa(report.FilesProcessed),
		strconv.Itoa(report.FilesFailed),
		strconv.Itoa(report.Resources),
	})
	table.Render()

	stats := report.Statistics
	table = tablewriter.NewWriter(w)
	table.SetHeader([]string{"Processed", "Inserted", "Updated", "Errors", "Dead-lettered"})
	table.Append([]string{
		strconv.Itoa(stats.Processed),
		strconv.Itoa(stats.Inserted),
		strconv.Itoa(stats.Updated),
		strconv.Itoa(stats.Errors),
		strconv.Itoa(stats.DeadLettered),
	})
	table.Render()
}

func printCollectionCounts(w io.Writer, counts []models.CollectionCount) {
	var total int64
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Collection", "Documents"})
	for _, count := range counts {
		total += count.Count
		table.Append([]string{count.Collection, strconv.FormatInt(count.Count, 10)})
	}
	table.SetFooter([]string{"Total", strconv.FormatInt(total, 10)})
	table.Render()
}
