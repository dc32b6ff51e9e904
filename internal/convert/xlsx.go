// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXConverter renders each worksheet as a "## <sheet>" section holding a
// pipe table. The first row is the header. Legacy .xls files are not
// readable by excelize and stay with markitdown.
type XLSXConverter struct{}

// Convert implements Converter.
func (XLSXConverter) Convert(ctx context.Context, path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		fmt.Fprintf(&b, "## %s\n\n", sheet)
		writeTable(&b, rows)
	}
	return b.String(), nil
}

func writeTable(b *strings.Builder, rows [][]string) {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	if width == 0 {
		return
	}

	writeRow := func(r []string) {
		b.WriteString("|")
		for i := 0; i < width; i++ {
			b.WriteString(" ")
			if i < len(r) {
				b.WriteString(cellText(r[i]))
			}
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}

	writeRow(rows[0])
	b.WriteString("|" + strings.Repeat(" --- |", width) + "\n")
	for _, r := range rows[1:] {
		writeRow(r)
	}
	b.WriteString("\n")
}

var cellReplacer = strings.NewReplacer("|", `\|`, "\r\n", "<br>", "\n", "<br>")

func cellText(s string) string {
	return cellReplacer.Replace(strings.TrimSpace(s))
}
