// AngelaMos | 2026
// export.go

package product

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tealeg/xlsx"
)

const (
	exportSheet       = "Products"
	exportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeaders = []string{
	"ID", "Title", "Description", "Price", "Sizes", "Images",
	"Category ID", "Created At", "Updated At",
}

// WriteWorkbook renders products as a single-sheet xlsx workbook.
func WriteWorkbook(w io.Writer, products []Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetString(h)
	}

	for i := range products {
		p := &products[i]
		row := sheet.AddRow()

		row.AddCell().SetInt64(p.ID)
		row.AddCell().SetString(p.Title)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetFloatWithFormat(p.Price.InexactFloat64(), "0.00")
		row.AddCell().SetString(strings.Join(p.Size, ", "))
		row.AddCell().SetString(strings.Join(p.Images, "\n"))

		category := ""
		if p.CategoryID != nil {
			category = strconv.FormatInt(*p.CategoryID, 10)
		}
		row.AddCell().SetString(category)

		row.AddCell().SetString(p.CreatedAt.UTC().Format(time.DateTime))
		row.AddCell().SetString(p.UpdatedAt.UTC().Format(time.DateTime))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func exportFilename(now time.Time) string {
	return "products-" + now.UTC().Format("20060102") + ".xlsx"
}
