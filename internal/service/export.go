package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"huronportal/internal/apperror"
	"huronportal/internal/model"
	"huronportal/internal/repository"
)

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
	ExportXLSX ExportFormat = "xlsx"
)

// ParseExportFormat accepts csv, json or xlsx in any case. An empty value
// means csv.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return ExportCSV, nil
	case ExportCSV, ExportJSON, ExportXLSX:
		return f, nil
	default:
		return "", apperror.NewValidation("Unsupported export format", apperror.FieldError{
			Field:   "format",
			Message: "format must be one of csv, json, xlsx",
		})
	}
}

func (f ExportFormat) ContentType() string {
	switch f {
	case ExportJSON:
		return "application/json"
	case ExportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// ExportFile is a rendered export ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

const exportSheet = "Machine Types"

var exportHeader = []string{
	"ID", "Machine Type ID", "Machine Type Name", "Manufacturer", "Description",
	"X (mm)", "Y (mm)", "Z (mm)", "A (deg)", "B (deg)", "C (deg)",
	"Created At", "Created By", "Updated At", "Updated By",
}

func (s *machineTypeService) ExportMachineTypes(ctx context.Context, format ExportFormat) (*ExportFile, error) {
	page, err := s.machineTypes.List(ctx, repository.MachineTypeFilter{}, repository.PageRequest{})
	if err != nil {
		return nil, repoError(err, "Machine type")
	}

	var data []byte
	switch format {
	case ExportCSV:
		data, err = exportCSV(page.Items)
	case ExportJSON:
		data, err = json.MarshalIndent(page.Items, "", "  ")
	case ExportXLSX:
		data, err = exportXLSX(page.Items)
	default:
		_, err = ParseExportFormat(string(format))
		return nil, err
	}
	if err != nil {
		return nil, apperror.NewInternal("failed to render export", err)
	}

	s.log.Info("machine types exported", "format", format, "count", len(page.Items))
	return &ExportFile{
		Filename:    fmt.Sprintf("machine-types-%s.%s", s.now().Format("2006-01-02"), format),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

func exportRow(mt *model.MachineType, rotation func(decimal.Decimal) string) []string {
	return []string{
		mt.ID,
		strconv.Itoa(mt.MachineTypeID),
		mt.Name,
		mt.Manufacturer,
		mt.Description,
		strconv.Itoa(mt.X),
		strconv.Itoa(mt.Y),
		strconv.Itoa(mt.Z),
		rotation(mt.A),
		rotation(mt.B),
		rotation(mt.C),
		mt.CreatedAt.UTC().Format(time.RFC3339),
		mt.CreatedBy,
		mt.UpdatedAt.UTC().Format(time.RFC3339),
		mt.UpdatedBy,
	}
}

func plainRotation(v decimal.Decimal) string { return v.String() }

// symbolRotation renders an unlimited axis as the infinity sign.
func symbolRotation(v decimal.Decimal) string {
	if v.Equal(model.UnlimitedRotation) {
		return "∞"
	}
	return v.String()
}

func exportCSV(items []model.MachineType) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for i := range items {
		if err := w.Write(exportRow(&items[i], plainRotation)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportXLSX(items []model.MachineType) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	for i := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := exportRow(&items[i], symbolRotation)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
