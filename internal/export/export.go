// Package export — выгрузка таблиц в CSV/XLSX по фиксированной схеме колонок и импорт цен.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/graindesk/internal/infra/metrics"
)

// ErrNoData — выгружать нечего, файл не создаётся.
var ErrNoData = errors.New("no data to export")

type Column[T any] struct {
	Header string
	Kind   Kind
	Value  func(T) any
}

type Schema[T any] struct {
	Name    string
	Columns []Column[T]
}

func (s Schema[T]) Headers() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Header
	}
	return out
}

func (s Schema[T]) Row(v T) []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = Cell(c.Kind, c.Value(v))
	}
	return out
}

func WriteCSV[T any](w io.Writer, s Schema[T], items []T) error {
	if len(items) == 0 {
		return ErrNoData
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(s.Headers()); err != nil {
		return err
	}
	for _, it := range items {
		if err := cw.Write(s.Row(it)); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	metrics.Exports.WithLabelValues(s.Name, "csv").Inc()
	return nil
}

func WriteXLSX[T any](w io.Writer, s Schema[T], items []T) error {
	if len(items) == 0 {
		return ErrNoData
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	header := make([]interface{}, len(s.Columns))
	for i, h := range s.Headers() {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(s.Columns), 1)
		_ = f.SetCellStyle(sheet, "A1", last, bold)
	}

	for i, it := range items {
		cells := s.Row(it)
		row := make([]interface{}, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}
	if err := f.Write(w); err != nil {
		return err
	}
	metrics.Exports.WithLabelValues(s.Name, "xlsx").Inc()
	return nil
}
