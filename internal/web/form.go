package web

import (
	"bytes"
	"html/template"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ezoic/fuelcast/dataset"
	"github.com/ezoic/fuelcast/forecast"
	fcErrors "github.com/ezoic/fuelcast/pkg/errors"
)

// Bounds of the date picker. Both ends are selectable.
var (
	MinDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	MaxDate = time.Date(2034, 12, 31, 0, 0, 0, 0, time.UTC)
)

// FuelPlaceholder is the unselected entry of the fuel menu.
const FuelPlaceholder = "Select fuel type"

// MsgDateOutOfRange is shown for a date outside [MinDate, MaxDate].
var MsgDateOutOfRange = "Please select a date between " +
	MinDate.Format(time.DateOnly) + " and " + MaxDate.Format(time.DateOnly) + "."

// ParseFormDate parses a date picker value (YYYY-MM-DD). An empty value
// yields a nil date so the prediction service reports it as missing.
func ParseFormDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fcErrors.NewInputError(fcErrors.ErrMissingDate, "date", forecast.MsgMissingDate, s)
	}
	if t.Before(MinDate) || t.After(MaxDate) {
		return nil, fcErrors.NewInputError(fcErrors.ErrDateOutOfRange, "date", MsgDateOutOfRange, s)
	}
	return &t, nil
}

// FormatPrice renders a price in rupees with two decimals. Rounding is
// applied to the exact binary value, so 2.675 renders as 2.67.
func FormatPrice(price float64) string {
	return "₹" + strconv.FormatFloat(price, 'f', 2, 64)
}

// PriceAmount is the price rounded the same way as FormatPrice. Non-finite
// prices yield zero.
func PriceAmount(price float64) decimal.Decimal {
	d, err := decimal.NewFromString(strconv.FormatFloat(price, 'f', 2, 64))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ResultText is the sentence shown after a successful prediction.
func ResultText(fuel string, date time.Time, district string, price float64) string {
	return "Predicted " + fuel + " price on " + date.Format(time.DateOnly) +
		" in " + district + ": " + FormatPrice(price)
}

func chartURL(date time.Time, district, fuel string) string {
	q := url.Values{}
	q.Set("date", date.Format(time.DateOnly))
	q.Set("district", district)
	q.Set("fuel_type", fuel)
	return "/chart.png?" + q.Encode()
}

type formView struct {
	FuelPlaceholder     string
	DistrictPlaceholder string
	FuelTypes           []string
	Districts           []string
	MinDate             string
	MaxDate             string

	Fuel     string
	Date     string
	District string

	Error    string
	Result   string
	ChartURL string
}

func newFormView(districts []string) formView {
	fuels := make([]string, len(dataset.FuelTypes))
	for i, ft := range dataset.FuelTypes {
		fuels[i] = ft.String()
	}
	return formView{
		FuelPlaceholder:     FuelPlaceholder,
		DistrictPlaceholder: forecast.DistrictPlaceholder,
		FuelTypes:           fuels,
		Districts:           districts,
		MinDate:             MinDate.Format(time.DateOnly),
		MaxDate:             MaxDate.Format(time.DateOnly),
	}
}

var formTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Kerala Fuel Price Prediction</title>
<style>
body { font-family: sans-serif; max-width: 40rem; margin: 2rem auto; }
label { display: block; margin-top: 1rem; }
.error { color: #b00020; }
.result { color: #1b5e20; font-weight: bold; }
</style>
</head>
<body>
<h1>Kerala Fuel Price Prediction</h1>
<form method="post" action="/predict">
  <label>Fuel type
    <select name="fuel_type">
      <option value="">{{.FuelPlaceholder}}</option>
      {{- range .FuelTypes}}
      <option value="{{.}}"{{if eq . $.Fuel}} selected{{end}}>{{.}}</option>
      {{- end}}
    </select>
  </label>
  <label>Date
    <input type="date" name="date" min="{{.MinDate}}" max="{{.MaxDate}}" value="{{.Date}}">
  </label>
  <label>District
    <select name="district">
      <option value="{{.DistrictPlaceholder}}">{{.DistrictPlaceholder}}</option>
      {{- range .Districts}}
      <option value="{{.}}"{{if eq . $.District}} selected{{end}}>{{.}}</option>
      {{- end}}
    </select>
  </label>
  <p><button type="submit">Predict Price</button></p>
</form>
{{- if .Error}}
<p class="error">{{.Error}}</p>
{{- end}}
{{- if .Result}}
<p class="result">{{.Result}}</p>
<img src="{{.ChartURL}}" alt="Price trend" width="640" height="320">
{{- end}}
</body>
</html>
`))

func renderForm(v formView) ([]byte, error) {
	var buf bytes.Buffer
	if err := formTemplate.Execute(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
