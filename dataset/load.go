package dataset

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	fcErrors "github.com/ezoic/fuelcast/pkg/errors"
	"github.com/ezoic/fuelcast/pkg/log"
)

// Format is the encoding of a source table.
type Format int

const (
	FormatCSV Format = iota
	FormatXLSX
)

// FormatFor picks the format from the location's file extension.
func FormatFor(location string) Format {
	p := location
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

// Load reads the dataset at location: a filesystem path, a file:// URI or
// an http(s):// URL. Every failure is a *errors.LoadError.
func Load(ctx context.Context, location string) (*Dataset, error) {
	logger := log.GetLoggerWithName("dataset")
	start := time.Now()

	rc, err := open(ctx, location)
	if err != nil {
		return nil, fcErrors.NewLoadError(location, 0, err)
	}
	defer func() { _ = rc.Close() }()

	ds, err := Read(rc, location, FormatFor(location))
	if err != nil {
		return nil, err
	}

	logger.Info("Dataset loaded",
		log.OperationKey, log.OperationLoad,
		log.SourceKey, location,
		log.SamplesKey, len(ds.Records),
		"n_districts", len(ds.Districts()),
		"n_unmodelled", ds.Unmodelled(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return ds, nil
}

func open(ctx context.Context, location string) (io.ReadCloser, error) {
	u, err := url.Parse(location)
	// Single-letter schemes are Windows drive letters.
	if err != nil || len(u.Scheme) <= 1 {
		return os.Open(location)
	}

	switch u.Scheme {
	case "file":
		p := u.Path
		if p == "" {
			p = u.Opaque
		}
		return os.Open(p)
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, fcErrors.Newf("unexpected HTTP status %s", resp.Status)
		}
		return resp.Body, nil
	default:
		return nil, fcErrors.Newf("unsupported scheme %q", u.Scheme)
	}
}

// Read parses a dataset from r. source names the origin in errors.
func Read(r io.Reader, source string, format Format) (*Dataset, error) {
	var df dataframe.DataFrame
	switch format {
	case FormatXLSX:
		rows, err := readWorkbook(r)
		if err != nil {
			return nil, fcErrors.NewLoadError(source, 0, err)
		}
		df = dataframe.LoadRecords(rows, stringColumns()...)
	default:
		df = dataframe.ReadCSV(r, stringColumns()...)
	}
	if df.Err != nil {
		return nil, fcErrors.NewLoadError(source, 0, df.Err)
	}

	return fromFrame(df, source)
}

// Every column is read as text; conversion happens per row so that errors
// can name the offending row.
func stringColumns() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	}
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fcErrors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fcErrors.New("sheet is empty")
	}

	// excelize drops trailing empty cells; the frame needs rectangular rows.
	width := len(rows[0])
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		}
		out = append(out, row[:width])
	}
	return out, nil
}

func fromFrame(df dataframe.DataFrame, source string) (*Dataset, error) {
	present := make(map[string]bool)
	for _, name := range df.Names() {
		present[name] = true
	}
	for _, col := range []string{ColDate, ColDistrict, ColFuelType, ColPrice} {
		if !present[col] {
			return nil, fcErrors.NewLoadError(source, 0, fmt.Errorf("missing column %q", col))
		}
	}

	dates := df.Col(ColDate).Records()
	districts := df.Col(ColDistrict).Records()
	fuels := df.Col(ColFuelType).Records()
	prices := df.Col(ColPrice).Records()

	records := make([]PriceRecord, df.Nrow())
	for i := range records {
		row := i + 1
		date, err := ParseDate(dates[i])
		if err != nil {
			return nil, fcErrors.NewLoadError(source, row, err)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(prices[i]), 64)
		if err != nil {
			return nil, fcErrors.NewLoadError(source, row, fcErrors.NewParseError(ColPrice, prices[i], "a number"))
		}
		// ParseFloat accepts NaN and Inf literals.
		if math.IsNaN(price) || math.IsInf(price, 0) {
			return nil, fcErrors.NewLoadError(source, row, fcErrors.NewParseError(ColPrice, prices[i], "a finite number"))
		}
		records[i] = PriceRecord{
			Date:     date,
			District: districts[i],
			FuelType: fuels[i],
			Price:    price,
		}
	}

	return &Dataset{Source: source, Records: records}, nil
}
