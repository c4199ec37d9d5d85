package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	common_models "go-opsboard/internal/common/models"
)

var exportColumns = []string{
	"ID", "Name", "Description", "Category", "Tags", "Public", "Active",
	"Refresh Interval (s)", "View Count", "Last Accessed", "Created", "Updated", "Version",
}

// ExportOwned renders every dashboard owned by the user, active or not,
// into a single-sheet XLSX workbook.
func (s *DashboardServiceImpl) ExportOwned(ctx context.Context, userID primitive.ObjectID) ([]byte, string, error) {
	page := common_models.PageRequest{Page: 1, Limit: common_models.MaxPageSize}

	var dashboards []Dashboard
	for {
		batch, total, err := s.DashboardRepo.ListOwned(ctx, userID, false, page)
		if err != nil {
			return nil, "", err
		}
		dashboards = append(dashboards, batch...)
		if len(batch) == 0 || int64(len(dashboards)) >= total {
			break
		}
		page.Page++
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Dashboards"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, d := range dashboards {
		lastAccessed := ""
		if !d.LastAccessedAt.IsZero() {
			lastAccessed = d.LastAccessedAt.Format("2006-01-02 15:04:05")
		}
		values := []interface{}{
			d.ID.Hex(),
			d.Name,
			d.Description,
			d.Category,
			strings.Join(d.Tags, ", "),
			d.IsPublic,
			d.IsActive,
			d.RefreshInterval,
			d.ViewCount,
			lastAccessed,
			d.CreatedAt.Format("2006-01-02 15:04:05"),
			d.UpdatedAt.Format("2006-01-02 15:04:05"),
			d.Version,
		}
		for colIdx, val := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, val)
		}
	}

	for i := range exportColumns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 15)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("dashboards_%s.xlsx", time.Now().Format("20060102_150405"))
	return buffer.Bytes(), filename, nil
}
