package export

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"
)

const timelineSheet = "TableFlow Timeline"

var cellLook = map[Cell]struct {
	text  string
	fill  string
	color string
}{
	CellClosed: {text: "●", fill: "000000", color: "000000"},
	CellOpen:   {text: "O", fill: "00B050", color: "FFFFFF"},
	CellBreak:  {text: "X", fill: "FF0000", color: "FFFFFF"},
}

type xlsxWriter struct {
	file   *excelize.File
	styles map[string]int
}

// WriteTimelineXLSX writes g as a single-sheet workbook with the table column
// frozen.
func WriteTimelineXLSX(w io.Writer, g Grid) error {
	xw := &xlsxWriter{file: excelize.NewFile(), styles: make(map[string]int)}
	defer xw.file.Close()

	if err := xw.file.SetSheetName("Sheet1", timelineSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := xw.writeHeader(g); err != nil {
		return err
	}
	colors := TableColors(len(g.Rows))
	for i, row := range g.Rows {
		if err := xw.writeRow(i+2, row, colors[i]); err != nil {
			return fmt.Errorf("write row %s: %w", row.Table, err)
		}
	}
	if err := xw.file.SetPanes(timelineSheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return fmt.Errorf("freeze panes: %w", err)
	}
	if len(g.Headers) > 0 {
		last, err := excelize.ColumnNumberToName(len(g.Headers) + 1)
		if err != nil {
			return err
		}
		if err := xw.file.SetColWidth(timelineSheet, "B", last, 9); err != nil {
			return err
		}
	}
	return xw.file.Write(w)
}

func (xw *xlsxWriter) writeHeader(g Grid) error {
	tableStyle, err := xw.style("70AD47", "FFFFFF", true)
	if err != nil {
		return err
	}
	slotStyle, err := xw.style("4472C4", "FFFFFF", true)
	if err != nil {
		return err
	}
	if err := xw.set(1, 1, "Table", tableStyle); err != nil {
		return err
	}
	for i, h := range g.Headers {
		if err := xw.set(i+2, 1, h, slotStyle); err != nil {
			return err
		}
	}
	return nil
}

func (xw *xlsxWriter) writeRow(r int, row Row, tableFill string) error {
	labelStyle, err := xw.style(tableFill, "000000", true)
	if err != nil {
		return err
	}
	if err := xw.set(1, r, row.Table, labelStyle); err != nil {
		return err
	}
	for i, c := range row.Cells {
		look := cellLook[c]
		st, err := xw.style(look.fill, look.color, c != CellClosed)
		if err != nil {
			return err
		}
		if err := xw.set(i+2, r, look.text, st); err != nil {
			return err
		}
	}
	return nil
}

func (xw *xlsxWriter) set(col, row int, value any, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := xw.file.SetCellValue(timelineSheet, cell, value); err != nil {
		return err
	}
	return xw.file.SetCellStyle(timelineSheet, cell, cell, style)
}

// style returns a cached centered, bordered style with a solid fill.
func (xw *xlsxWriter) style(fill, font string, bold bool) (int, error) {
	key := fmt.Sprintf("%s/%s/%t", fill, font, bold)
	if id, ok := xw.styles[key]; ok {
		return id, nil
	}
	border := make([]excelize.Border, 0, 4)
	for _, side := range []string{"left", "right", "top", "bottom"} {
		border = append(border, excelize.Border{Type: side, Color: "000000", Style: 1})
	}
	id, err := xw.file.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}},
		Font:      &excelize.Font{Bold: bold, Color: font, Size: 9},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return 0, fmt.Errorf("new style: %w", err)
	}
	xw.styles[key] = id
	return id, nil
}

// TableColors spreads n pastel fills evenly around the hue circle.
func TableColors(n int) []string {
	out := make([]string, n)
	for i := range out {
		hue := float64(i) * 360 / float64(n)
		out[i] = hslHex(hue, 0.40, 0.85)
	}
	return out
}

func hslHex(h, s, l float64) string {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	to := func(v float64) int { return int(math.Round((v + m) * 255)) }
	return fmt.Sprintf("%02X%02X%02X", to(r), to(g), to(b))
}
