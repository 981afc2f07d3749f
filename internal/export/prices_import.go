package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/graindesk/internal/domain/prices"
	"github.com/Spok95/graindesk/internal/fault"
	"github.com/Spok95/graindesk/internal/form"
)

// ErrBadHeader — первая строка файла не совпадает с колонками выгрузки цен.
var ErrBadHeader = errors.New("unexpected header, expected: Commodity, Date, Price, Quality, Comment")

// ReadPricesCSV читает файл в формате выгрузки цен. Пустые строки пропускаются.
func ReadPricesCSV(r io.Reader) ([]prices.Line, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]string
	var lines []int
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fault.Validation("read prices", err)
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, rec)
		lines = append(lines, line)
	}
	return parsePrices(rows, lines)
}

func ReadPricesXLSX(data []byte) ([]prices.Line, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fault.Validation("read prices", fmt.Errorf("not an xlsx file: %w", err))
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fault.Validation("read prices", err)
	}
	lines := make([]int, len(rows))
	for i := range rows {
		lines[i] = i + 1
	}
	return parsePrices(rows, lines)
}

func parsePrices(rows [][]string, lines []int) ([]prices.Line, error) {
	if len(rows) == 0 {
		return nil, fault.Validation("read prices", ErrNoData)
	}
	want := Prices.Headers()
	head := rows[0]
	if len(head) < len(want) {
		return nil, fault.Validation("read prices", ErrBadHeader)
	}
	for i, h := range want {
		if !strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(head[i], "\ufeff")), h) {
			return nil, fault.Validation("read prices", ErrBadHeader)
		}
	}

	errs := form.Errors{}
	var out []prices.Line
	for i := 1; i < len(rows); i++ {
		rec := pad(rows[i], len(want))
		if blank(rec) {
			continue
		}
		n := lines[i]
		p := prices.Price{
			Commodity: strings.TrimSpace(rec[0]),
			Quality:   strings.TrimSpace(rec[3]),
			Comment:   strings.TrimSpace(rec[4]),
		}
		if s := strings.TrimSpace(rec[1]); s != "" {
			d, err := parseDate(s)
			if err != nil {
				errs.Add(fmt.Sprintf("row %d: date", n), "must be a date (DD/MM/YYYY)")
			}
			p.Date = d
		}
		if s := strings.TrimSpace(rec[2]); s != "" {
			d, err := parseMoney(s)
			if err != nil {
				errs.Add(fmt.Sprintf("row %d: price", n), "must be a number")
			}
			p.Price = d
		}
		out = append(out, prices.Line{N: n, Price: p})
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fault.Validation("read prices", ErrNoData)
	}
	return out, nil
}

func pad(rec []string, n int) []string {
	for len(rec) < n {
		rec = append(rec, "")
	}
	return rec
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	return decimal.NewFromString(s)
}
