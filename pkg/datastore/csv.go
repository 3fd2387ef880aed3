package datastore

import (
	"encoding/csv"
	"strconv"
	"strings"
	"time"
)

// DestinationsToCSV renders destinations as comma-separated text with a
// fixed header order and RFC 4180 quoting. Empty input yields an empty
// string.
func DestinationsToCSV(destinations []Destination) string {
	if len(destinations) == 0 {
		return ""
	}

	rows := make([][]string, 0, len(destinations)+1)
	rows = append(rows, []string{
		"ID", "Name", "Company", "Street", "City", "State", "ZipCode", "Country", "Phone", "Email", "Notes",
	})
	for _, d := range destinations {
		rows = append(rows, []string{
			d.ID,
			d.Name,
			d.Company,
			d.Address.Street,
			d.Address.City,
			d.Address.State,
			d.Address.ZipCode,
			d.Address.Country,
			d.Phone,
			d.Email,
			d.Notes,
		})
	}
	return writeCSV(rows)
}

// ShipmentsToCSV renders shipments as comma-separated text. The Destination
// column carries the destination's name when the record is resolved, its ID
// otherwise.
func ShipmentsToCSV(shipments []Shipment) string {
	if len(shipments) == 0 {
		return ""
	}

	rows := make([][]string, 0, len(shipments)+1)
	rows = append(rows, []string{
		"ID", "TrackingNumber", "Carrier", "Status", "ShipDate", "ExpectedDelivery", "Destination", "Cost",
	})
	for _, s := range shipments {
		destination := s.DestinationID
		if s.Destination != nil {
			destination = s.Destination.Name
		}
		rows = append(rows, []string{
			s.ID,
			s.TrackingNumber,
			s.Carrier,
			s.Status,
			csvDate(&s.ShipDate),
			csvDate(s.ExpectedDelivery),
			destination,
			strconv.FormatFloat(s.Cost, 'f', 2, 64),
		})
	}
	return writeCSV(rows)
}

func writeCSV(rows [][]string) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.WriteAll(rows); err != nil {
		return ""
	}
	w.Flush()
	return strings.TrimSuffix(sb.String(), "\n")
}

func csvDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
