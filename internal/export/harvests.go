// Package export renders report data as downloadable spreadsheets.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/stwalsh4118/agricoop/api/internal/models"
	"github.com/xuri/excelize/v2"
)

// ContentTypeXLSX is the MIME type of the generated workbooks.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	harvestSheet = "Récoltes"
	headerRow    = 4
)

var harvestHeaders = []string{
	"Date", "Producteur", "Parcelle", "Culture", "Quantité (kg)", "Arrondissement", "Commune", "Enregistré le",
}

// HarvestFilename returns the attachment name for an export generated at t.
func HarvestFilename(t time.Time) string {
	return fmt.Sprintf("recoltes_%s.xlsx", t.Format("20060102_150405"))
}

// HarvestWorkbook writes rows to a single-sheet workbook. The sheet starts
// with a title, the generation time and the applied filter, then a header
// row, one row per harvest and a total row.
func HarvestWorkbook(rows []models.HarvestRow, filter models.HarvestFilter, generatedAt time.Time) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(harvestSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#2E7D32"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, err
	}
	quantityStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	cells := map[string]interface{}{
		"A1": "Récoltes de la coopérative",
		"A2": "Généré le " + generatedAt.Format("2006-01-02 15:04:05"),
		"A3": describeFilter(filter),
	}
	for cell, value := range cells {
		if err := f.SetCellValue(harvestSheet, cell, value); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(harvestSheet, "A1", "A1", titleStyle); err != nil {
		return nil, err
	}

	for col, header := range harvestHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, headerRow)
		if err := f.SetCellValue(harvestSheet, cell, header); err != nil {
			return nil, err
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	last, _ := excelize.CoordinatesToCellName(len(harvestHeaders), headerRow)
	if err := f.SetCellStyle(harvestSheet, first, last, headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(harvestSheet, "A", "H", 18); err != nil {
		return nil, err
	}

	for i, h := range rows {
		values := []interface{}{
			h.HarvestDate.Format("2006-01-02"),
			h.ProducerName,
			h.ParcelName,
			models.CropLabel(h.CropName),
			h.Quantity.InexactFloat64(),
			h.DistrictName,
			h.CommuneName,
			h.RecordedAt.Format("2006-01-02 15:04"),
		}
		start, _ := excelize.CoordinatesToCellName(1, headerRow+1+i)
		if err := f.SetSheetRow(harvestSheet, start, &values); err != nil {
			return nil, err
		}
	}

	totalRow := headerRow + 1 + len(rows)
	if err := f.SetCellValue(harvestSheet, fmt.Sprintf("D%d", totalRow), "Total"); err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		formula := fmt.Sprintf("SUM(E%d:E%d)", headerRow+1, totalRow-1)
		if err := f.SetCellFormula(harvestSheet, fmt.Sprintf("E%d", totalRow), formula); err != nil {
			return nil, err
		}
	} else if err := f.SetCellValue(harvestSheet, fmt.Sprintf("E%d", totalRow), 0); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(harvestSheet, fmt.Sprintf("E%d", headerRow+1), fmt.Sprintf("E%d", totalRow), quantityStyle); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

func describeFilter(filter models.HarvestFilter) string {
	desc := "Filtres : "
	if filter.CropTypeName == nil && filter.DistrictID == nil {
		return desc + "aucun"
	}
	if filter.CropTypeName != nil {
		desc += "culture=" + *filter.CropTypeName
	}
	if filter.DistrictID != nil {
		if filter.CropTypeName != nil {
			desc += ", "
		}
		desc += fmt.Sprintf("arrondissement=%d", *filter.DistrictID)
	}
	return desc
}
