// Package dataset loads historical fuel price records.
//
// A dataset is a table with the columns Date, District, Fuel_Type and
// Price, read from CSV (through a go-gota DataFrame) or from the first
// sheet of an XLSX workbook (excelize). Dates are day-first. Records are
// immutable once loaded.
package dataset

import (
	"time"
)

// Column names expected in the source table.
const (
	ColDate     = "Date"
	ColDistrict = "District"
	ColFuelType = "Fuel_Type"
	ColPrice    = "Price"
)

// FuelType is a fuel label the models are trained for.
type FuelType string

const (
	Petrol FuelType = "Petrol"
	Diesel FuelType = "Diesel"
)

// FuelTypes lists the modelled fuel types in menu order.
var FuelTypes = []FuelType{Petrol, Diesel}

// ParseFuelType returns the FuelType named by s. Labels are matched
// exactly, as they appear in the source data.
func ParseFuelType(s string) (FuelType, bool) {
	switch FuelType(s) {
	case Petrol:
		return Petrol, true
	case Diesel:
		return Diesel, true
	default:
		return "", false
	}
}

func (f FuelType) String() string { return string(f) }

// PriceRecord is one observed price.
type PriceRecord struct {
	Date     time.Time
	District string
	FuelType string
	Price    float64
}

// Dataset is the full set of records read from one source.
type Dataset struct {
	Source  string
	Records []PriceRecord
}

// Districts returns the distinct district names in first-occurrence order.
func (d *Dataset) Districts() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range d.Records {
		if _, ok := seen[r.District]; ok {
			continue
		}
		seen[r.District] = struct{}{}
		out = append(out, r.District)
	}
	return out
}

// ByFuel returns the records labelled exactly ft, in source order.
func (d *Dataset) ByFuel(ft FuelType) []PriceRecord {
	var out []PriceRecord
	for _, r := range d.Records {
		if r.FuelType == string(ft) {
			out = append(out, r)
		}
	}
	return out
}

// Unmodelled counts records whose fuel label is neither Petrol nor Diesel.
func (d *Dataset) Unmodelled() int {
	n := 0
	for _, r := range d.Records {
		if _, ok := ParseFuelType(r.FuelType); !ok {
			n++
		}
	}
	return n
}

// DateRange returns the earliest and latest record dates.
func (d *Dataset) DateRange() (first, last time.Time) {
	for i, r := range d.Records {
		if i == 0 || r.Date.Before(first) {
			first = r.Date
		}
		if i == 0 || r.Date.After(last) {
			last = r.Date
		}
	}
	return first, last
}
