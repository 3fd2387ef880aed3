package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MauroRinelli/Solship/pkg/logger"
)

// APIStore talks to the shipment server's REST API. Read operations degrade
// gracefully: when the server is unreachable they log a warning and return
// empty results so the caller keeps working offline. Writes surface errors.
type APIStore struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ Store = (*APIStore)(nil)

func NewAPIStore(baseURL, token string) *APIStore {
	return &APIStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// envelope mirrors the server's response format.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

func (s *APIStore) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("unexpected response from %s: %w", path, err)
		}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusBadRequest && env.Error == "DESTINATION_IN_USE":
		return ErrConflict
	case resp.StatusCode >= 400:
		if env.Message != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, env.Message)
		}
		return fmt.Errorf("server error (%d)", resp.StatusCode)
	}

	if out != nil && env.Data != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

// readList fetches a collection, swallowing transport errors.
func (s *APIStore) readList(ctx context.Context, path string, out interface{}) error {
	if err := s.do(ctx, http.MethodGet, path, nil, out); err != nil {
		logger.Warn("Read from API failed, returning empty result", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
	return nil
}

func (s *APIStore) Destinations(ctx context.Context) ([]Destination, error) {
	destinations := []Destination{}
	err := s.readList(ctx, "/api/destinations", &destinations)
	return destinations, err
}

func (s *APIStore) Destination(ctx context.Context, id string) (*Destination, error) {
	var destination Destination
	if err := s.do(ctx, http.MethodGet, "/api/destinations/"+url.PathEscape(id), nil, &destination); err != nil {
		if err == ErrNotFound {
			return nil, err
		}
		logger.Warn("Destination read from API failed, returning nil record", map[string]interface{}{
			"destination_id": id,
			"error":          err.Error(),
		})
		return nil, nil
	}
	return &destination, nil
}

func (s *APIStore) CreateDestination(ctx context.Context, destination *Destination) (*Destination, error) {
	var created Destination
	if err := s.do(ctx, http.MethodPost, "/api/destinations", destination, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *APIStore) UpdateDestination(ctx context.Context, id string, patch DestinationPatch) (*Destination, error) {
	var updated Destination
	if err := s.do(ctx, http.MethodPut, "/api/destinations/"+url.PathEscape(id), patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *APIStore) DeleteDestination(ctx context.Context, id string, force bool) error {
	err := s.do(ctx, http.MethodDelete, "/api/destinations/"+url.PathEscape(id), nil, nil)
	if err == ErrConflict && force {
		// The API refuses deletes with referencing shipments; honor force
		// by removing those shipments first.
		shipments, listErr := s.Shipments(ctx)
		if listErr != nil {
			return listErr
		}
		for _, sh := range shipments {
			if sh.DestinationID != id {
				continue
			}
			if delErr := s.DeleteShipment(ctx, sh.ID); delErr != nil {
				return delErr
			}
		}
		return s.do(ctx, http.MethodDelete, "/api/destinations/"+url.PathEscape(id), nil, nil)
	}
	return err
}

func (s *APIStore) SearchDestinations(ctx context.Context, query string) ([]Destination, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.Destinations(ctx)
	}
	destinations := []Destination{}
	err := s.readList(ctx, "/api/destinations?q="+url.QueryEscape(query), &destinations)
	return destinations, err
}

func (s *APIStore) Shipments(ctx context.Context) ([]Shipment, error) {
	shipments := []Shipment{}
	err := s.readList(ctx, "/api/shipments", &shipments)
	return shipments, err
}

func (s *APIStore) Shipment(ctx context.Context, id string) (*Shipment, error) {
	var shipment Shipment
	if err := s.do(ctx, http.MethodGet, "/api/shipments/"+url.PathEscape(id), nil, &shipment); err != nil {
		if err == ErrNotFound {
			return nil, err
		}
		logger.Warn("Shipment read from API failed, returning nil record", map[string]interface{}{
			"shipment_id": id,
			"error":       err.Error(),
		})
		return nil, nil
	}
	return &shipment, nil
}

func (s *APIStore) CreateShipment(ctx context.Context, shipment *Shipment) (*Shipment, error) {
	var created Shipment
	if err := s.do(ctx, http.MethodPost, "/api/shipments", newShipmentPayload(shipment), &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *APIStore) UpdateShipment(ctx context.Context, id string, patch ShipmentPatch) (*Shipment, error) {
	var updated Shipment
	if err := s.do(ctx, http.MethodPut, "/api/shipments/"+url.PathEscape(id), patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *APIStore) DeleteShipment(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/api/shipments/"+url.PathEscape(id), nil, nil)
}

func (s *APIStore) SearchShipments(ctx context.Context, query string) ([]Shipment, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.Shipments(ctx)
	}
	shipments := []Shipment{}
	err := s.readList(ctx, "/api/shipments?q="+url.QueryEscape(query), &shipments)
	return shipments, err
}

func (s *APIStore) Settings(ctx context.Context) (*Settings, error) {
	var settings Settings
	if err := s.do(ctx, http.MethodGet, "/api/settings", nil, &settings); err != nil {
		logger.Warn("Settings read from API failed, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		defaults := DefaultSettings()
		return &defaults, nil
	}
	return &settings, nil
}

func (s *APIStore) SaveSettings(ctx context.Context, settings *Settings) error {
	return s.do(ctx, http.MethodPut, "/api/settings", settings, nil)
}

func (s *APIStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		StatusCounts:  map[string]int64{},
		CarrierCounts: map[string]int64{},
	}
	if err := s.do(ctx, http.MethodGet, "/api/shipments/stats", nil, stats); err != nil {
		logger.Warn("Stats read from API failed, returning zeros", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return stats, nil
}

func (s *APIStore) Export(ctx context.Context) (*Snapshot, error) {
	var snapshot Snapshot
	if err := s.do(ctx, http.MethodGet, "/api/export", nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (s *APIStore) Import(ctx context.Context, snapshot *Snapshot) error {
	if snapshot == nil {
		return ErrInvalidSnapshot
	}
	return s.do(ctx, http.MethodPost, "/api/import", snapshot, nil)
}

// ExportCSV renders from fetched records; the CSV itself is built locally so
// both variants produce identical output.
func (s *APIStore) ExportCSV(ctx context.Context, kind EntityKind) (string, error) {
	switch kind {
	case KindDestinations:
		destinations, err := s.Destinations(ctx)
		if err != nil {
			return "", err
		}
		return DestinationsToCSV(destinations), nil
	case KindShipments:
		shipments, err := s.Shipments(ctx)
		if err != nil {
			return "", err
		}
		return ShipmentsToCSV(shipments), nil
	}
	return "", ErrUnknownKind
}

// shipmentPayload matches the server's create request, which takes dates as
// YYYY-MM-DD strings.
type shipmentPayload struct {
	DestinationID    string     `json:"destinationId"`
	TrackingNumber   string     `json:"trackingNumber"`
	Carrier          string     `json:"carrier"`
	Status           string     `json:"status,omitempty"`
	ShipDate         string     `json:"shipDate,omitempty"`
	ExpectedDelivery string     `json:"expectedDelivery,omitempty"`
	Weight           float64    `json:"weight,omitempty"`
	WeightUnit       string     `json:"weightUnit,omitempty"`
	Dimensions       Dimensions `json:"dimensions,omitempty"`
	Cost             float64    `json:"cost,omitempty"`
	Currency         string     `json:"currency,omitempty"`
	Items            string     `json:"items,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

func newShipmentPayload(sh *Shipment) shipmentPayload {
	p := shipmentPayload{
		DestinationID:  sh.DestinationID,
		TrackingNumber: sh.TrackingNumber,
		Carrier:        sh.Carrier,
		Status:         sh.Status,
		Weight:         sh.Weight,
		WeightUnit:     sh.WeightUnit,
		Dimensions:     sh.Dimensions,
		Cost:           sh.Cost,
		Currency:       sh.Currency,
		Items:          sh.Items,
		Notes:          sh.Notes,
	}
	if !sh.ShipDate.IsZero() {
		p.ShipDate = sh.ShipDate.Format("2006-01-02")
	}
	if sh.ExpectedDelivery != nil {
		p.ExpectedDelivery = sh.ExpectedDelivery.Format("2006-01-02")
	}
	return p
}
