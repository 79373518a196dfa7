package dataset

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	fcErrors "github.com/ezoic/fuelcast/pkg/errors"
)

const kochiCSV = `Date,District,Fuel_Type,Price
01-01-2023,Kochi,Petrol,100.0
01-06-2023,Kochi,Petrol,110.0
01-01-2023,Kochi,Diesel,90.0
01-06-2023,Kochi,Diesel,95.0
`

func TestOrdinal(t *testing.T) {
	tests := []struct {
		date time.Time
		want int
	}{
		{time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC), 1},
		{time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), 719163},
		{time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 738521},
		{time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), 738672},
		{time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC), 738886},
	}

	for _, tt := range tests {
		t.Run(tt.date.Format("2006-01-02"), func(t *testing.T) {
			assert.Equal(t, tt.want, Ordinal(tt.date))
			assert.True(t, FromOrdinal(tt.want).Equal(Day(tt.date)))
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{
		"01-03-2023",
		"1-3-2023",
		"01/03/2023",
		"01.03.2023",
		"01-03-23",
		"01-Mar-2023",
		"1 Mar 2023",
		"2023-03-01",
		"2023/03/01",
		"2023/3/1",
		"2023/03/01 10:30",
		"01-03-2023 10:30:00",
		" 01/03/2023 ",
	} {
		t.Run(in, func(t *testing.T) {
			got, err := ParseDate(in)
			require.NoError(t, err)
			assert.True(t, got.Equal(want), "got %s", got)
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "tomorrow", "32-01-2023", "01-13-2023", "2023/13/01"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseDate(in)
			require.Error(t, err)

			var pe *fcErrors.ParseError
			require.True(t, fcErrors.As(err, &pe))
			assert.Equal(t, ColDate, pe.Field)
		})
	}
}

func TestRead_CSV(t *testing.T) {
	ds, err := Read(strings.NewReader(kochiCSV), "kochi.csv", FormatCSV)
	require.NoError(t, err)

	require.Len(t, ds.Records, 4)
	assert.Equal(t, "kochi.csv", ds.Source)
	assert.Equal(t, PriceRecord{
		Date:     time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		District: "Kochi",
		FuelType: "Petrol",
		Price:    100.0,
	}, ds.Records[0])
	assert.Equal(t, []string{"Kochi"}, ds.Districts())
	assert.Len(t, ds.ByFuel(Petrol), 2)
	assert.Len(t, ds.ByFuel(Diesel), 2)
	assert.Zero(t, ds.Unmodelled())

	first, last := ds.DateRange()
	assert.Equal(t, "2023-01-01", first.Format("2006-01-02"))
	assert.Equal(t, "2023-06-01", last.Format("2006-01-02"))
}

func TestRead_CSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantRow int
		parse   bool
	}{
		{
			name:    "missing column",
			csv:     "Date,District,Price\n01-01-2023,Kochi,100\n",
			wantRow: 0,
		},
		{
			name:    "bad date",
			csv:     "Date,District,Fuel_Type,Price\n01-01-2023,Kochi,Petrol,100\nsoon,Kochi,Petrol,101\n",
			wantRow: 2,
			parse:   true,
		},
		{
			name:    "bad price",
			csv:     "Date,District,Fuel_Type,Price\n01-01-2023,Kochi,Petrol,abc\n",
			wantRow: 1,
			parse:   true,
		},
		{
			name:    "NaN price",
			csv:     "Date,District,Fuel_Type,Price\n01-01-2023,Kochi,Petrol,100\n02-01-2023,Kochi,Petrol,NaN\n",
			wantRow: 2,
			parse:   true,
		},
		{
			name:    "infinite price",
			csv:     "Date,District,Fuel_Type,Price\n01-01-2023,Kochi,Diesel,Inf\n",
			wantRow: 1,
			parse:   true,
		},
		{
			name:    "negative infinite price",
			csv:     "Date,District,Fuel_Type,Price\n01-01-2023,Kochi,Diesel,90\n02-01-2023,Kochi,Diesel,95\n03-01-2023,Kochi,Diesel,-inf\n",
			wantRow: 3,
			parse:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.csv), "bad.csv", FormatCSV)
			require.Error(t, err)

			var le *fcErrors.LoadError
			require.True(t, fcErrors.As(err, &le))
			assert.Equal(t, "bad.csv", le.Source)
			assert.Equal(t, tt.wantRow, le.Row)

			var pe *fcErrors.ParseError
			assert.Equal(t, tt.parse, fcErrors.As(err, &pe))
		})
	}
}

func TestRead_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Date", "District", "Fuel_Type", "Price"},
		{"01-01-2023", "Kochi", "Petrol", "100"},
		{"01-01-2023", "Kollam", "Diesel", "90.5"},
		{"02-01-2023", "Kochi", "CNG", "80"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	ds, err := Read(&buf, "prices.xlsx", FormatXLSX)
	require.NoError(t, err)
	require.Len(t, ds.Records, 3)
	assert.Equal(t, []string{"Kochi", "Kollam"}, ds.Districts())
	assert.Equal(t, 90.5, ds.Records[1].Price)
	assert.Equal(t, 1, ds.Unmodelled())
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatXLSX, FormatFor("data/fuel.xlsx"))
	assert.Equal(t, FormatXLSX, FormatFor("https://example.com/fuel.XLSX?dl=1"))
	assert.Equal(t, FormatCSV, FormatFor("file:///tmp/fuel.csv"))
	assert.Equal(t, FormatCSV, FormatFor("fuel"))
}

func TestLoad_Sources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fuel.csv")
	require.NoError(t, os.WriteFile(path, []byte(kochiCSV), 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fuel.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(kochiCSV))
	}))
	defer srv.Close()

	for _, location := range []string{path, "file://" + path, srv.URL + "/fuel.csv"} {
		t.Run(location, func(t *testing.T) {
			ds, err := Load(context.Background(), location)
			require.NoError(t, err)
			assert.Len(t, ds.Records, 4)
			assert.Equal(t, location, ds.Source)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(context.Background(), filepath.Join(dir, "absent.csv"))
		var le *fcErrors.LoadError
		require.True(t, fcErrors.As(err, &le))
		assert.Zero(t, le.Row)
	})

	t.Run("http status", func(t *testing.T) {
		_, err := Load(context.Background(), srv.URL+"/missing.csv")
		var le *fcErrors.LoadError
		require.True(t, fcErrors.As(err, &le))
		assert.Contains(t, err.Error(), "404")
	})
}
