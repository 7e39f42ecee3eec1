// Package export renders the active proxy pool in the bulk formats the
// read API offers: CSV, XLSX via excelize, and a one-page PDF summary via
// maroto.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	maroconfig "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/xuri/excelize/v2"

	"proxypool/internal/store"
)

var csvHeader = []string{"ip", "port", "protocol", "country", "anonymity", "speed", "success_count", "fail_count", "status", "last_success"}

func proxyRow(p store.Proxy) []string {
	country, anonymity, speed, lastSuccess := "", "", "", ""
	if p.Country != nil {
		country = *p.Country
	}
	if p.Anonymity != nil {
		anonymity = *p.Anonymity
	}
	if p.Speed != nil {
		speed = fmt.Sprintf("%.3f", *p.Speed)
	}
	if p.LastSuccess != nil {
		lastSuccess = p.LastSuccess.Format(time.RFC3339)
	}
	return []string{
		p.IP,
		fmt.Sprintf("%d", p.Port),
		p.Protocol,
		country,
		anonymity,
		speed,
		fmt.Sprintf("%d", p.SuccessCount),
		fmt.Sprintf("%d", p.FailCount),
		p.Status.String(),
		lastSuccess,
	}
}

// WriteActiveCSV streams the active proxy list as CSV.
func WriteActiveCSV(w io.Writer, proxies []store.Proxy) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range proxies {
		if err := cw.Write(proxyRow(p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var xlsxHeaderStyle = &excelize.Style{
	Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
	Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	Alignment: &excelize.Alignment{Horizontal: "center"},
}

// WriteActiveXLSX renders the active proxy list as a single-sheet workbook.
func WriteActiveXLSX(w io.Writer, proxies []store.Proxy) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Active Proxies"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(xlsxHeaderStyle)
	if err != nil {
		return err
	}

	for i, h := range csvHeader {
		cell := cellAddr(i, 1)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, "A1", cellAddr(len(csvHeader)-1, 1), headerStyle)

	for rowIdx, p := range proxies {
		row := rowIdx + 2
		for colIdx, v := range proxyRow(p) {
			f.SetCellValue(sheet, cellAddr(colIdx, row), v)
		}
	}

	f.SetColWidth(sheet, "A", "J", 16)
	return f.Write(w)
}

func cellAddr(zeroBasedCol, row int) string {
	name, err := excelize.ColumnNumberToName(zeroBasedCol + 1)
	if err != nil {
		name = "A"
	}
	return fmt.Sprintf("%s%d", name, row)
}

var (
	primaryColor  = &props.Color{Red: 52, Green: 152, Blue: 219}
	headerBgColor = &props.Color{Red: 44, Green: 62, Blue: 80}
	darkGrayColor = &props.Color{Red: 127, Green: 140, Blue: 141}

	titleStyle = props.Text{Size: 20, Style: fontstyle.Bold, Align: align.Center, Color: headerBgColor}
	h2Style    = props.Text{Size: 14, Style: fontstyle.Bold, Color: headerBgColor, Top: 5}
	smallStyle = props.Text{Size: 8, Color: darkGrayColor}
	boldStyle  = props.Text{Size: 10, Style: fontstyle.Bold}
	normalStyle = props.Text{Size: 10}

	metricValueStyle = props.Text{Size: 18, Style: fontstyle.Bold, Align: align.Center, Color: primaryColor}
	metricLabelStyle = props.Text{Size: 9, Align: align.Center, Color: darkGrayColor}

	tableHeaderStyle     = &props.Cell{BackgroundColor: primaryColor}
	tableHeaderTextStyle = props.Text{Size: 9, Style: fontstyle.Bold, Color: &props.Color{Red: 255, Green: 255, Blue: 255}, Align: align.Center}
	tableCellStyle       = &props.Cell{BorderType: border.Bottom, BorderColor: darkGrayColor}
	tableCellTextStyle   = props.Text{Size: 9, Align: align.Center}
)

const pdfMaxRows = 50

// WriteStatsPDF renders a one-page pool summary followed by a capped table
// of the currently active proxies.
func WriteStatsPDF(w io.Writer, stats store.Stats, proxies []store.Proxy) error {
	cfg := maroconfig.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12, text.NewCol(12, "Proxy Pool Report", titleStyle))
	m.AddRow(4, line.NewCol(12, props.Line{Color: primaryColor}))
	m.AddRow(6, text.NewCol(12, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")), smallStyle))
	m.AddRow(8)

	m.AddRow(10, text.NewCol(12, "Pool Summary", h2Style))
	m.AddRow(18,
		statCard("Total", fmt.Sprintf("%d", stats.Total)),
		statCard("Active", fmt.Sprintf("%d", stats.Active)),
		statCard("Pending", fmt.Sprintf("%d", stats.Pending)),
		statCard("Inactive", fmt.Sprintf("%d", stats.Inactive)),
	)
	m.AddRow(6)
	m.AddRow(6,
		text.NewCol(6, fmt.Sprintf("Distinct protocols: %d", stats.DistinctProtocols), normalStyle),
		text.NewCol(6, fmt.Sprintf("Distinct countries: %d", stats.DistinctCountries), normalStyle),
	)
	m.AddRow(6, text.NewCol(12, fmt.Sprintf("Average speed: %.3fs", stats.AvgSpeed), normalStyle))

	if len(proxies) > 0 {
		m.AddRow(10)
		m.AddRow(10, text.NewCol(12, "Active Proxies", h2Style))
		addProxyTable(m, proxies)
	}

	doc, err := m.Generate()
	if err != nil {
		return fmt.Errorf("generate pdf: %w", err)
	}
	_, err = w.Write(doc.GetBytes())
	return err
}

func statCard(label, value string) core.Col {
	return col.New(3).Add(
		text.New(value, metricValueStyle),
		text.New(label, metricLabelStyle),
	)
}

func addProxyTable(m core.Maroto, proxies []store.Proxy) {
	m.AddRow(8,
		text.NewCol(3, "Address", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Protocol", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Country", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Anonymity", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(3, "Speed", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
	)

	rows := proxies
	truncated := false
	if len(rows) > pdfMaxRows {
		rows = rows[:pdfMaxRows]
		truncated = true
	}

	for _, p := range rows {
		country, anonymity, speed := "-", "-", "-"
		if p.Country != nil {
			country = *p.Country
		}
		if p.Anonymity != nil {
			anonymity = *p.Anonymity
		}
		if p.Speed != nil {
			speed = fmt.Sprintf("%.3fs", *p.Speed)
		}
		m.AddRow(6,
			text.NewCol(3, fmt.Sprintf("%s:%d", p.IP, p.Port), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, p.Protocol, tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, country, tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, anonymity, tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(3, speed, tableCellTextStyle).WithStyle(tableCellStyle),
		)
	}

	if truncated {
		m.AddRow(6, text.NewCol(12, fmt.Sprintf("... and %d more rows", len(proxies)-pdfMaxRows), boldStyle))
	}
}
