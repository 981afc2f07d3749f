package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/graindesk/internal/domain/bids"
	"github.com/Spok95/graindesk/internal/domain/contracts"
	"github.com/Spok95/graindesk/internal/fault"
	"github.com/Spok95/graindesk/internal/form"
)

func sample() []contracts.Contract {
	return []contracts.Contract{
		{
			Number: "GD-1001", Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			Seller: contracts.PartyRef{Name: "Smith Farms", NGR: "11112222"}, Buyer: contracts.PartyRef{Name: "Coastal Feeds"},
			Commodity: "Wheat", Grade: "APW1", Tonnes: decimal.RequireFromString("1250.5"), Price: decimal.RequireFromString("312.5"),
			Status: contracts.StatusNotDone,
		},
		{Number: "GD-1002", Commodity: "Barley", Tonnes: decimal.NewFromInt(80), Price: decimal.NewFromInt(1280), Status: contracts.StatusInvoiced},
	}
}

func TestCellFormatting(t *testing.T) {
	assert.Equal(t, "$312.50", Cell(Money, decimal.RequireFromString("312.5")))
	assert.Equal(t, "$1,280.00", Cell(Money, decimal.NewFromInt(1280)))
	assert.Equal(t, "-$5.25", Cell(Money, decimal.RequireFromString("-5.25")))
	assert.Equal(t, "1,250.5", Cell(Number, decimal.RequireFromString("1250.5")))
	assert.Equal(t, "12,000", Cell(Number, 12000))
	assert.Equal(t, "02/03/2026", Cell(Date, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)))

	assert.Equal(t, "$123,456,789,012,345,678.91", Cell(Money, decimal.RequireFromString("123456789012345678.905")))
	assert.Equal(t, "90,071,992,547,409.93", Cell(Number, decimal.RequireFromString("90071992547409.93")))
	assert.Equal(t, "-1,000", Cell(Number, decimal.NewFromInt(-1000)))
	assert.Equal(t, "$0.00", Cell(Money, decimal.RequireFromString("-0.001")))

	assert.Equal(t, "", Cell(Date, time.Time{}))
	assert.Equal(t, "", Cell(Money, decimal.NullDecimal{}))
	assert.Equal(t, "", Cell(Text, nil))
}

func TestWriteCSVContracts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Contracts, sample()))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3, "header plus one row per contract")
	assert.Equal(t, []string{"Date", "Contract Number", "NGR", "Seller", "Buyer", "Commodity", "Grade", "Tonnes", "Contract Price", "Status"}, recs[0])
	assert.Equal(t, []string{"02/03/2026", "GD-1001", "11112222", "Smith Farms", "Coastal Feeds", "Wheat", "APW1", "1,250.5", "$312.50", "Not done"}, recs[1])
	assert.Equal(t, []string{"", "GD-1002", "", "", "", "Barley", "", "80", "$1,280.00", "Invoiced"}, recs[2])
}

func TestEmptyExportProducesNothing(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteCSV(&buf, Contracts, nil), ErrNoData)
	assert.ErrorIs(t, WriteXLSX(&buf, Contracts, []contracts.Contract{}), ErrNoData)
	assert.Zero(t, buf.Len())
}

func TestBidHeaders(t *testing.T) {
	assert.Equal(t, []string{"Date", "Port Zone", "Commodity", "Grade", "Season", "Price"}, PortZoneBids.Headers())
	assert.Equal(t, []string{"Date", "Delivery Site", "Commodity", "Grade", "Season", "Price"}, DeliveredBids.Headers())

	book, err := bids.Load()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, PortZoneBids, book.PortZone))
	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, recs, len(book.PortZone)+1)
	assert.Equal(t, "", recs[len(recs)-1][5], "missing price renders empty")
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, Contracts, sample()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Contract Price", rows[0][8])
	assert.Equal(t, "$312.50", rows[1][8])
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "contracts_2026-10-15.csv", FileName("Contracts", "csv", time.Date(2026, 10, 15, 13, 0, 0, 0, time.UTC)))
}

func TestReadPricesCSV(t *testing.T) {
	in := "Commodity,Date,Price,Quality,Comment\n" +
		"Wheat,03/11/2025,$318.50,APW1,Harvest\n" +
		",,,,\n" +
		"Barley,2025-12-01,\"1,281.25\",BAR1,\n"
	lines, err := ReadPricesCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].N)
	assert.Equal(t, time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC), lines[0].Price.Date)
	assert.Equal(t, 4, lines[1].N)
	assert.True(t, decimal.RequireFromString("1281.25").Equal(lines[1].Price.Price))
}

func TestReadPricesErrors(t *testing.T) {
	_, err := ReadPricesCSV(strings.NewReader("Name,When\nx,y\n"))
	assert.ErrorIs(t, err, ErrBadHeader)
	assert.Equal(t, fault.KindValidation, fault.KindOf(err))

	_, err = ReadPricesCSV(strings.NewReader("Commodity,Date,Price,Quality,Comment\nWheat,31/02/2025,abc,,\n"))
	fields, ok := form.FieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "must be a date (DD/MM/YYYY)", fields["row 2: date"])
	assert.Equal(t, "must be a number", fields["row 2: price"])

	_, err = ReadPricesCSV(strings.NewReader("Commodity,Date,Price,Quality,Comment\n"))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestReadPricesXLSXRoundTrip(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Commodity", "Date", "Price", "Quality", "Comment"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"Canola", "10/11/2025", "688", "CAN1", "GM-free"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	_ = f.Close()

	lines, err := ReadPricesXLSX(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].N)
	assert.Equal(t, "Canola", lines[0].Price.Commodity)
}
