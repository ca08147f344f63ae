package services

import (
	"fmt"
	"io"
	"time"

	"fiber-mes/models"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
)

// MonthlyReportData is everything the report renderers need for one worker
// and one calendar month.
type MonthlyReportData struct {
	Worker     models.Worker
	Efficiency models.WorkerEfficiency
	Month      time.Time
	Batches    []models.Batch
	Feedback   []models.WorkerFeedback
}

func (d MonthlyReportData) title() string {
	return fmt.Sprintf("Worker Performance Report - %s - %s", d.Worker.Name, d.Month.Format("January 2006"))
}

// WriteMonthlyReportXLSX renders the report as a spreadsheet.
func WriteMonthlyReportXLSX(w io.Writer, data MonthlyReportData) error {
	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", data.title())

	// Summary block
	f.SetCellValue(sheet, "A3", "Composite Score")
	f.SetCellValue(sheet, "B3", data.Efficiency.CompositeScore)
	f.SetCellValue(sheet, "A4", "Rating (1-5)")
	f.SetCellValue(sheet, "B4", data.Efficiency.EfficiencyRating)
	f.SetCellValue(sheet, "A5", "Output Efficiency")
	f.SetCellValue(sheet, "B5", data.Efficiency.OutputEfficiency)
	f.SetCellValue(sheet, "A6", "Punctuality Score")
	f.SetCellValue(sheet, "B6", data.Efficiency.PunctualityScore)
	f.SetCellValue(sheet, "A7", "Feedback Score")
	f.SetCellValue(sheet, "B7", data.Efficiency.FeedbackScore)
	f.SetCellValue(sheet, "A8", "Batches Completed")
	f.SetCellValue(sheet, "B8", data.Efficiency.TotalBatchesCompleted)
	f.SetCellValue(sheet, "A9", "On-time Batches")
	f.SetCellValue(sheet, "B9", data.Efficiency.OnTimeBatches)
	f.SetCellValue(sheet, "A10", "Last Calculated")
	f.SetCellValue(sheet, "B10", data.Efficiency.LastCalculated.Format(time.RFC3339))

	// Batch rows
	f.SetCellValue(sheet, "A12", "Batch Code")
	f.SetCellValue(sheet, "B12", "Product")
	f.SetCellValue(sheet, "C12", "Size")
	f.SetCellValue(sheet, "D12", "Status")
	f.SetCellValue(sheet, "E12", "Start")
	f.SetCellValue(sheet, "F12", "End")

	row := 13
	for _, b := range data.Batches {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), b.BatchCode)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), b.ProductName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), b.BatchSize.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), string(b.Status))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), b.StartTime.Format("2006-01-02 15:04"))
		if b.EndTime != nil {
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), b.EndTime.Format("2006-01-02 15:04"))
		}
		row++
	}

	// Feedback rows
	row++
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Feedback Tag")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), "Comment")
	f.SetCellValue(sheet, fmt.Sprintf("C%d", row), "Date")
	row++
	for _, fb := range data.Feedback {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), fb.Tag)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), fb.Comment)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), fb.CreatedAt.Format("2006-01-02"))
		row++
	}

	return f.Write(w)
}

// WriteMonthlyReportPDF renders the report as a PDF document.
func WriteMonthlyReportPDF(w io.Writer, data MonthlyReportData) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, data.title(), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 11)
	summary := [][2]string{
		{"Composite Score", fmt.Sprintf("%.2f", data.Efficiency.CompositeScore)},
		{"Rating (1-5)", fmt.Sprintf("%d", data.Efficiency.EfficiencyRating)},
		{"Output Efficiency", fmt.Sprintf("%.2f", data.Efficiency.OutputEfficiency)},
		{"Punctuality Score", fmt.Sprintf("%.2f", data.Efficiency.PunctualityScore)},
		{"Feedback Score", fmt.Sprintf("%.2f", data.Efficiency.FeedbackScore)},
		{"Batches Completed", fmt.Sprintf("%d", data.Efficiency.TotalBatchesCompleted)},
		{"On-time Batches", fmt.Sprintf("%d", data.Efficiency.OnTimeBatches)},
	}
	for _, line := range summary {
		pdf.CellFormat(60, 7, line[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, line[1], "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(40, 7, "Batch Code", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, "Product", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Size", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, "Status", "1", 0, "L", false, 0, "")
	pdf.CellFormat(45, 7, "Start", "1", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, b := range data.Batches {
		pdf.CellFormat(40, 6, b.BatchCode, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, b.ProductName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, b.BatchSize.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, string(b.Status), "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, b.StartTime.Format("2006-01-02 15:04"), "1", 1, "L", false, 0, "")
	}

	if len(data.Feedback) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 7, "Supervisor Feedback", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, fb := range data.Feedback {
			line := fmt.Sprintf("%s - %s: %s", fb.CreatedAt.Format("2006-01-02"), fb.Tag, fb.Comment)
			pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
		}
	}

	return pdf.Output(w)
}
