package export

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Kind — как выводить значение ячейки.
type Kind int

const (
	Text Kind = iota
	Money
	Number
	Date
)

const DateLayout = "02/01/2006"

// Разделители берём из локали, а цифры из decimal как есть: без float и потери точности.
var groupSep, decimalSep = separators(message.NewPrinter(language.MustParse("en-AU")))

func separators(p *message.Printer) (group, point string) {
	group = strings.Trim(p.Sprint(number.Decimal(1000)), "0123456789")
	point = strings.Trim(p.Sprint(number.Decimal(1.5, number.MinFractionDigits(1))), "0123456789")
	return group, point
}

// grouped расставляет разделители тысяч в десятичной строке без знака ("1234567.5").
func grouped(digits string) string {
	whole, frac, hasFrac := strings.Cut(digits, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(groupSep)
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteString(decimalSep)
		b.WriteString(frac)
	}
	return b.String()
}

// Cell форматирует значение по виду колонки. Отсутствующее значение — пустая строка.
func Cell(k Kind, v any) string {
	d, ok := asDecimal(v)
	switch k {
	case Money:
		if !ok {
			return ""
		}
		s := grouped(d.Abs().StringFixed(2))
		if d.Round(2).IsNegative() {
			return "-$" + s
		}
		return "$" + s
	case Number:
		if !ok {
			return ""
		}
		d = d.Round(2)
		s := grouped(d.Abs().String())
		if d.IsNegative() {
			return "-" + s
		}
		return s
	case Date:
		t, ok := v.(time.Time)
		if !ok || t.IsZero() {
			return ""
		}
		return t.Format(DateLayout)
	}
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case interface{ String() string }:
		return x.String()
	}
	return ""
}

func asDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case decimal.NullDecimal:
		return x.Decimal, x.Valid
	case *decimal.Decimal:
		if x == nil {
			return decimal.Decimal{}, false
		}
		return *x, true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case float64:
		return decimal.NewFromFloat(x), true
	}
	return decimal.Decimal{}, false
}

// FileName — имя файла выгрузки с текущей датой: contracts_2026-10-15.csv.
func FileName(name, ext string, now time.Time) string {
	return strings.ToLower(name) + "_" + now.Format(time.DateOnly) + "." + ext
}
