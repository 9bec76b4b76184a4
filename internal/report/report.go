// Package report renders a day's window averages as PDF and XLSX documents.
package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"beehive_monitor/internal/models"
	"beehive_monitor/internal/store"
)

// DayReader returns the persisted windows of one day.
// store.CSVStore implements it; a day without rows is store.ErrNoData.
type DayReader interface {
	Day(ctx context.Context, date string) ([]models.WindowAverage, error)
}

// Generator builds reports from the aggregate store.
type Generator struct {
	days DayReader
	now  func() time.Time
}

func NewGenerator(days DayReader) *Generator {
	return &Generator{days: days, now: time.Now}
}

// Summary is the header block shared by both formats.
type Summary struct {
	Date            string
	Windows         int
	MeanTemp        float64
	MinTemp         float64
	MaxTemp         float64
	MeanHum         float64
	MinHum          float64
	MaxHum          float64
	CautionWindows  int
	CriticalWindows int
}

func summarize(date string, rows []models.WindowAverage) Summary {
	s := Summary{Date: date, Windows: len(rows)}
	for i, r := range rows {
		if i == 0 {
			s.MinTemp, s.MaxTemp = r.AvgTemperature, r.AvgTemperature
			s.MinHum, s.MaxHum = r.AvgHumidity, r.AvgHumidity
		}
		s.MeanTemp += r.AvgTemperature
		s.MeanHum += r.AvgHumidity
		s.MinTemp = min(s.MinTemp, r.AvgTemperature)
		s.MaxTemp = max(s.MaxTemp, r.AvgTemperature)
		s.MinHum = min(s.MinHum, r.AvgHumidity)
		s.MaxHum = max(s.MaxHum, r.AvgHumidity)
		switch r.WorstLevel() {
		case models.LevelCritical:
			s.CriticalWindows++
		case models.LevelCaution:
			s.CautionWindows++
		}
	}
	if n := float64(len(rows)); n > 0 {
		s.MeanTemp /= n
		s.MeanHum /= n
	}
	return s
}

func (g *Generator) load(ctx context.Context, date string) ([]models.WindowAverage, error) {
	rows, err := g.days.Day(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNoData
	}
	return rows, nil
}

type rgb struct{ r, g, b int }

// levelColors are the row fills used by both formats.
var levelColors = map[models.Level]rgb{
	models.LevelOptimal:  {198, 239, 206},
	models.LevelCaution:  {255, 235, 156},
	models.LevelCritical: {255, 199, 206},
}

// rowFill returns the fill for a row. Rows read from files that predate
// level columns have no level and are drawn unfilled.
func rowFill(level models.Level) (rgb, bool) {
	c, ok := levelColors[level]
	return c, ok
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.r, c.g, c.b)
}

func optional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

var tableHeader = []string{"Time", "Temp (°C)", "Hum (%)", "Ext. temp", "Ext. hum", "Condition", "Temp level", "Hum level"}

// PDF writes a one-page-per-day style report for date (YYYY-MM-DD).
func (g *Generator) PDF(ctx context.Context, date string, w io.Writer) error {
	rows, err := g.load(ctx, date)
	if err != nil {
		return err
	}
	sum := summarize(date, rows)

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Hive report "+date, true)
	pdf.SetAuthor("beehive-monitor", true)
	pdf.SetCreationDate(g.now())
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Hive report "+date), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	lines := []string{
		fmt.Sprintf("Windows recorded: %d (caution %d, critical %d)", sum.Windows, sum.CautionWindows, sum.CriticalWindows),
		fmt.Sprintf("Temperature: mean %.2f °C, min %.2f °C, max %.2f °C", sum.MeanTemp, sum.MinTemp, sum.MaxTemp),
		fmt.Sprintf("Humidity: mean %.2f %%, min %.2f %%, max %.2f %%", sum.MeanHum, sum.MinHum, sum.MaxHum),
	}
	for _, l := range lines {
		pdf.CellFormat(0, 6, tr(l), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	widths := []float64{20, 22, 20, 22, 20, 36, 25, 25}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(220, 220, 220)
	for i, h := range tableHeader {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, r := range rows {
		c, fill := rowFill(r.WorstLevel())
		if fill {
			pdf.SetFillColor(c.r, c.g, c.b)
		}
		cells := []string{
			r.Time,
			fmt.Sprintf("%.2f", r.AvgTemperature),
			fmt.Sprintf("%.2f", r.AvgHumidity),
			optional(r.ExternalTemperature, "%.1f"),
			optional(r.ExternalHumidity, "%.0f"),
			r.ExternalCondition,
			string(r.TempLevel),
			string(r.HumLevel),
		}
		for i, v := range cells {
			pdf.CellFormat(widths[i], 6, tr(v), "1", 0, "C", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

const sheetName = "Hive"

// Excel writes the day's rows to a single sheet; each data row is filled
// with the colour of its worst level.
func (g *Generator) Excel(ctx context.Context, date string, w io.Writer) error {
	rows, err := g.load(ctx, date)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := append([]string{"Date"}, tableHeader...)
	header = append(header, "Message")
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	headStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DCDCDC"}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headStyle); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	styles := make(map[models.Level]int, len(levelColors))
	for lvl, c := range levelColors {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{c.hex()}},
		})
		if err != nil {
			return fmt.Errorf("level style: %w", err)
		}
		styles[lvl] = id
	}

	for i, r := range rows {
		n := i + 2
		row := []interface{}{
			r.Date, r.Time, r.AvgTemperature, r.AvgHumidity,
			cellOptional(r.ExternalTemperature), cellOptional(r.ExternalHumidity),
			r.ExternalCondition, string(r.TempLevel), string(r.HumLevel), r.Message,
		}
		first, _ := excelize.CoordinatesToCellName(1, n)
		last, _ := excelize.CoordinatesToCellName(len(header), n)
		if err := f.SetSheetRow(sheetName, first, &row); err != nil {
			return fmt.Errorf("write row %d: %w", n, err)
		}
		if id, ok := styles[r.WorstLevel()]; ok {
			if err := f.SetCellStyle(sheetName, first, last, id); err != nil {
				return fmt.Errorf("style row %d: %w", n, err)
			}
		}
	}
	if err := f.SetColWidth(sheetName, "A", lastCol, 14); err != nil {
		return fmt.Errorf("column width: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("render xlsx: %w", err)
	}
	return nil
}

func cellOptional(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
