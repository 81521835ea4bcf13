package services

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/senpow/italy-restaurant-booking/booking"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ReportService renders the staff reports of one service day.
type ReportService struct {
	Restaurant string
}

func NewReportService(restaurant string) *ReportService {
	return &ReportService{Restaurant: restaurant}
}

var (
	lunchColor  = drawing.ColorFromHex("c8a165")
	dinnerColor = drawing.ColorFromHex("7a2e2e")
)

// OccupancyChart writes a PNG bar chart of the booked seats per slot.
func (rs *ReportService) OccupancyChart(w io.Writer, date string, occupancy []booking.SlotOccupancy) error {
	if len(occupancy) == 0 {
		return fmt.Errorf("no slots to chart for %s", date)
	}

	maxSeats := 1
	bars := make([]chart.Value, 0, len(occupancy))
	for _, o := range occupancy {
		if o.TotalSeats > maxSeats {
			maxSeats = o.TotalSeats
		}
		color := lunchColor
		if o.Period == booking.PeriodDinner {
			color = dinnerColor
		}
		bars = append(bars, chart.Value{
			Label: o.Time,
			Value: float64(o.SeatsBooked),
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
	}

	graph := chart.BarChart{
		Title:      fmt.Sprintf("%s - booked seats %s", rs.Restaurant, date),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}},
		Width:      1024,
		Height:     420,
		BarWidth:   40,
		BarSpacing: 20,
		XAxis:      chart.Style{StrokeColor: drawing.ColorBlack},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxSeats)},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return strconv.Itoa(int(f))
				}
				return ""
			},
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render occupancy chart: %w", err)
	}
	return nil
}

// DaySheetPDF writes the printable reservation list of a day followed by the
// occupancy chart.
func (rs *ReportService) DaySheetPDF(w io.Writer, sheet booking.DaySheet, occupancy []booking.SlotOccupancy) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(fmt.Sprintf("%s %s", rs.Restaurant, sheet.Date)), false)
	pdf.SetAuthor(tr(rs.Restaurant), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("%s - Reservations %s", rs.Restaurant, sheet.Date)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Bookings: %d    Guests: %d", sheet.Bookings, sheet.Guests), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	headers := []string{"Time", "Table", "Guests", "Name", "Phone", "Status", "Source"}
	widths := []float64{16, 14, 16, 52, 36, 26, 22}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	if len(sheet.Reservations) == 0 {
		pdf.CellFormat(sum(widths), 7, "No reservations", "1", 1, "C", false, 0, "")
	}
	for _, r := range sheet.Reservations {
		row := []string{
			r.TimeSlot,
			strconv.Itoa(r.TableNumber),
			strconv.Itoa(r.PartySize),
			tr(r.UserName),
			tr(r.PhoneNumber),
			r.Status,
			r.Source,
		}
		for i, cell := range row {
			align := "L"
			if i < 3 {
				align = "C"
			}
			pdf.CellFormat(widths[i], 7, cell, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(occupancy) > 0 {
		var png bytes.Buffer
		if err := rs.OccupancyChart(&png, sheet.Date, occupancy); err != nil {
			return err
		}
		opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.RegisterImageOptionsReader("occupancy", opts, &png)
		pdf.Ln(6)
		pdf.ImageOptions("occupancy", 10, pdf.GetY(), 190, 0, true, opts, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write day sheet: %w", err)
	}
	return nil
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
