package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MauroRinelli/Solship/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyDestinations = "solship:destinations"
	keyShipments    = "solship:shipments"
	keySettings     = "solship:settings"
)

// LocalStore keeps each collection as a single JSON blob in a key-value
// store. Reads load the whole blob, writes rewrite it; the data volumes
// this tool handles make that a non-issue.
type LocalStore struct {
	rdb *redis.Client

	// Serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

var _ Store = (*LocalStore)(nil)

func NewLocalStore(rdb *redis.Client) *LocalStore {
	return &LocalStore{rdb: rdb}
}

func (s *LocalStore) loadDestinations(ctx context.Context) ([]Destination, error) {
	var destinations []Destination
	if err := s.loadBlob(ctx, keyDestinations, &destinations); err != nil {
		return nil, err
	}
	return destinations, nil
}

func (s *LocalStore) loadShipments(ctx context.Context) ([]Shipment, error) {
	var shipments []Shipment
	if err := s.loadBlob(ctx, keyShipments, &shipments); err != nil {
		return nil, err
	}
	return shipments, nil
}

func (s *LocalStore) loadBlob(ctx context.Context, key string, out interface{}) error {
	raw, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		logger.Error("Failed to read blob from store", err, map[string]interface{}{
			"key": key,
		})
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		logger.Error("Failed to decode blob", err, map[string]interface{}{
			"key": key,
		})
		return fmt.Errorf("corrupt blob at %s: %w", key, err)
	}
	return nil
}

func (s *LocalStore) saveBlob(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, key, raw, 0).Err(); err != nil {
		logger.Error("Failed to write blob to store", err, map[string]interface{}{
			"key": key,
		})
		return err
	}
	return nil
}

func (s *LocalStore) Destinations(ctx context.Context) ([]Destination, error) {
	return s.loadDestinations(ctx)
}

func (s *LocalStore) Destination(ctx context.Context, id string) (*Destination, error) {
	destinations, err := s.loadDestinations(ctx)
	if err != nil {
		return nil, err
	}
	for i := range destinations {
		if destinations[i].ID == id {
			return &destinations[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *LocalStore) CreateDestination(ctx context.Context, destination *Destination) (*Destination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	destinations, err := s.loadDestinations(ctx)
	if err != nil {
		return nil, err
	}

	record := *destination
	record.ID = uuid.NewString()
	record.ApplyDefaults()
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	destinations = append(destinations, record)
	if err := s.saveBlob(ctx, keyDestinations, destinations); err != nil {
		return nil, err
	}

	logger.Debug("Destination created in local store", map[string]interface{}{
		"destination_id": record.ID,
	})
	return &record, nil
}

func (s *LocalStore) UpdateDestination(ctx context.Context, id string, patch DestinationPatch) (*Destination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	destinations, err := s.loadDestinations(ctx)
	if err != nil {
		return nil, err
	}

	for i := range destinations {
		if destinations[i].ID != id {
			continue
		}

		d := &destinations[i]
		setString(&d.Name, patch.Name)
		setString(&d.Company, patch.Company)
		setString(&d.Address.Street, patch.Street)
		setString(&d.Address.City, patch.City)
		setString(&d.Address.State, patch.State)
		setString(&d.Address.ZipCode, patch.ZipCode)
		setString(&d.Address.Country, patch.Country)
		setString(&d.Phone, patch.Phone)
		setString(&d.Email, patch.Email)
		setString(&d.Notes, patch.Notes)
		d.UpdatedAt = time.Now()

		if err := s.saveBlob(ctx, keyDestinations, destinations); err != nil {
			return nil, err
		}
		record := *d
		return &record, nil
	}
	return nil, ErrNotFound
}

func (s *LocalStore) DeleteDestination(ctx context.Context, id string, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	destinations, err := s.loadDestinations(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i := range destinations {
		if destinations[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	shipments, err := s.loadShipments(ctx)
	if err != nil {
		return err
	}

	var referencing int
	remaining := make([]Shipment, 0, len(shipments))
	for _, shipment := range shipments {
		if shipment.DestinationID == id {
			referencing++
			continue
		}
		remaining = append(remaining, shipment)
	}

	if referencing > 0 && !force {
		logger.Warn("Destination delete blocked in local store", map[string]interface{}{
			"destination_id": id,
			"shipments":      referencing,
		})
		return ErrConflict
	}

	if referencing > 0 {
		if err := s.saveBlob(ctx, keyShipments, remaining); err != nil {
			return err
		}
	}

	destinations = append(destinations[:idx], destinations[idx+1:]...)
	if err := s.saveBlob(ctx, keyDestinations, destinations); err != nil {
		return err
	}

	logger.Debug("Destination deleted from local store", map[string]interface{}{
		"destination_id":    id,
		"removed_shipments": referencing,
	})
	return nil
}

func (s *LocalStore) SearchDestinations(ctx context.Context, query string) ([]Destination, error) {
	destinations, err := s.loadDestinations(ctx)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return destinations, nil
	}

	matched := make([]Destination, 0, len(destinations))
	for _, d := range destinations {
		haystack := []string{
			d.Name,
			d.Company,
			d.Address.City,
			d.Address.Street,
			d.Email,
			digits(d.Phone),
		}
		if containsFold(haystack, term) {
			matched = append(matched, d)
		}
	}
	return matched, nil
}

func (s *LocalStore) Shipments(ctx context.Context) ([]Shipment, error) {
	shipments, err := s.loadShipments(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolveDestinations(ctx, shipments)
}

func (s *LocalStore) Shipment(ctx context.Context, id string) (*Shipment, error) {
	shipments, err := s.Shipments(ctx)
	if err != nil {
		return nil, err
	}
	for i := range shipments {
		if shipments[i].ID == id {
			return &shipments[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *LocalStore) CreateShipment(ctx context.Context, shipment *Shipment) (*Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shipments, err := s.loadShipments(ctx)
	if err != nil {
		return nil, err
	}

	record := *shipment
	record.ID = uuid.NewString()
	record.Destination = nil
	record.ApplyDefaults()
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	shipments = append(shipments, record)
	if err := s.saveBlob(ctx, keyShipments, shipments); err != nil {
		return nil, err
	}

	// Track how often each destination is shipped to.
	s.bumpUsage(ctx, record.DestinationID)

	logger.Debug("Shipment created in local store", map[string]interface{}{
		"shipment_id": record.ID,
	})
	return &record, nil
}

func (s *LocalStore) UpdateShipment(ctx context.Context, id string, patch ShipmentPatch) (*Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shipments, err := s.loadShipments(ctx)
	if err != nil {
		return nil, err
	}

	for i := range shipments {
		if shipments[i].ID != id {
			continue
		}

		sh := &shipments[i]
		setString(&sh.DestinationID, patch.DestinationID)
		setString(&sh.TrackingNumber, patch.TrackingNumber)
		setString(&sh.Carrier, patch.Carrier)
		setString(&sh.WeightUnit, patch.WeightUnit)
		setString(&sh.Currency, patch.Currency)
		setString(&sh.Items, patch.Items)
		setString(&sh.Notes, patch.Notes)
		if patch.Weight != nil {
			sh.Weight = *patch.Weight
		}
		if patch.Cost != nil {
			sh.Cost = *patch.Cost
		}
		if patch.Dimensions != nil {
			sh.Dimensions = *patch.Dimensions
		}
		if patch.ShipDate != nil {
			if t, ok := asTime(*patch.ShipDate); ok {
				sh.ShipDate = t
			}
		}
		if patch.ExpectedDelivery != nil {
			sh.ExpectedDelivery = parseOptionalDate(*patch.ExpectedDelivery)
		}
		if patch.ActualDelivery != nil {
			sh.ActualDelivery = parseOptionalDate(*patch.ActualDelivery)
		}
		if patch.Status != nil {
			// The delivery date is stamped on the first transition to
			// delivered and never overwritten afterwards.
			if *patch.Status == StatusDelivered && sh.ActualDelivery == nil {
				now := time.Now()
				sh.ActualDelivery = &now
			}
			sh.Status = *patch.Status
		}
		sh.UpdatedAt = time.Now()

		if err := s.saveBlob(ctx, keyShipments, shipments); err != nil {
			return nil, err
		}
		record := *sh
		return &record, nil
	}
	return nil, ErrNotFound
}

func (s *LocalStore) DeleteShipment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shipments, err := s.loadShipments(ctx)
	if err != nil {
		return err
	}

	for i := range shipments {
		if shipments[i].ID == id {
			shipments = append(shipments[:i], shipments[i+1:]...)
			return s.saveBlob(ctx, keyShipments, shipments)
		}
	}
	return ErrNotFound
}

func (s *LocalStore) SearchShipments(ctx context.Context, query string) ([]Shipment, error) {
	shipments, err := s.Shipments(ctx)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return shipments, nil
	}

	matched := make([]Shipment, 0, len(shipments))
	for _, sh := range shipments {
		haystack := []string{
			sh.TrackingNumber,
			sh.Carrier,
			sh.Status,
			sh.Items,
		}
		if containsFold(haystack, term) {
			matched = append(matched, sh)
		}
	}
	return matched, nil
}

func (s *LocalStore) Settings(ctx context.Context) (*Settings, error) {
	raw, err := s.rdb.Get(ctx, keySettings).Result()
	if err == redis.Nil {
		defaults := DefaultSettings()
		return &defaults, nil
	}
	if err != nil {
		return nil, err
	}

	var settings Settings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, fmt.Errorf("corrupt blob at %s: %w", keySettings, err)
	}
	return &settings, nil
}

func (s *LocalStore) SaveSettings(ctx context.Context, settings *Settings) error {
	return s.saveBlob(ctx, keySettings, settings)
}

// Stats computes the dashboard aggregate in-process. "This month" starts at
// the first of the current calendar month; "this week" is the last 7*24h.
func (s *LocalStore) Stats(ctx context.Context) (*Stats, error) {
	destinations, err := s.loadDestinations(ctx)
	if err != nil {
		return nil, err
	}
	shipments, err := s.loadShipments(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	weekStart := now.Add(-7 * 24 * time.Hour)

	stats := &Stats{
		TotalDestinations: int64(len(destinations)),
		TotalShipments:    int64(len(shipments)),
		StatusCounts:      map[string]int64{},
		CarrierCounts:     map[string]int64{},
	}

	for _, sh := range shipments {
		if sh.Status == StatusPending || sh.Status == StatusInTransit {
			stats.ActiveShipments++
		}
		if sh.Status == StatusDelivered {
			stats.DeliveredShipments++
		}
		if !sh.CreatedAt.Before(monthStart) {
			stats.ShipmentsThisMonth++
			stats.CostThisMonth += sh.Cost
		}
		if !sh.CreatedAt.Before(weekStart) {
			stats.ShipmentsThisWeek++
		}
		stats.TotalCost += sh.Cost
		stats.StatusCounts[sh.Status]++
		if sh.Carrier != "" {
			stats.CarrierCounts[sh.Carrier]++
		}
	}
	if len(shipments) > 0 {
		stats.AvgCost = stats.TotalCost / float64(len(shipments))
	}

	return stats, nil
}

func (s *LocalStore) Export(ctx context.Context) (*Snapshot, error) {
	destinations, err := s.loadDestinations(ctx)
	if err != nil {
		return nil, err
	}
	shipments, err := s.loadShipments(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Destinations: destinations,
		Shipments:    shipments,
		Settings:     settings,
		ExportDate:   time.Now(),
		Version:      SnapshotVersion,
	}, nil
}

// Import replaces the sections present in the snapshot; nil sections leave
// the current data untouched.
func (s *LocalStore) Import(ctx context.Context, snapshot *Snapshot) error {
	if snapshot == nil {
		return ErrInvalidSnapshot
	}
	if snapshot.Version != "" && snapshot.Version != SnapshotVersion {
		return fmt.Errorf("%w: version %s", ErrInvalidSnapshot, snapshot.Version)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot.Destinations != nil {
		if err := s.saveBlob(ctx, keyDestinations, snapshot.Destinations); err != nil {
			return err
		}
	}
	if snapshot.Shipments != nil {
		for i := range snapshot.Shipments {
			snapshot.Shipments[i].Destination = nil
		}
		if err := s.saveBlob(ctx, keyShipments, snapshot.Shipments); err != nil {
			return err
		}
	}
	if snapshot.Settings != nil {
		if err := s.saveBlob(ctx, keySettings, snapshot.Settings); err != nil {
			return err
		}
	}

	logger.Info("Snapshot imported into local store", map[string]interface{}{
		"destinations": len(snapshot.Destinations),
		"shipments":    len(snapshot.Shipments),
	})
	return nil
}

func (s *LocalStore) ExportCSV(ctx context.Context, kind EntityKind) (string, error) {
	switch kind {
	case KindDestinations:
		destinations, err := s.loadDestinations(ctx)
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

// resolveDestinations attaches the destination record to each shipment.
func (s *LocalStore) resolveDestinations(ctx context.Context, shipments []Shipment) ([]Shipment, error) {
	if len(shipments) == 0 {
		return shipments, nil
	}
	destinations, err := s.loadDestinations(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Destination, len(destinations))
	for i := range destinations {
		byID[destinations[i].ID] = &destinations[i]
	}
	for i := range shipments {
		shipments[i].Destination = byID[shipments[i].DestinationID]
	}
	return shipments, nil
}

func (s *LocalStore) bumpUsage(ctx context.Context, destinationID string) {
	destinations, err := s.loadDestinations(ctx)
	if err != nil {
		return
	}
	for i := range destinations {
		if destinations[i].ID == destinationID {
			destinations[i].UsageCount++
			if err := s.saveBlob(ctx, keyDestinations, destinations); err != nil {
				logger.Warn("Failed to update destination usage", map[string]interface{}{
					"destination_id": destinationID,
					"error":          err.Error(),
				})
			}
			return
		}
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func parseOptionalDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	if t, ok := asTime(value); ok {
		return &t
	}
	return nil
}

func containsFold(haystack []string, term string) bool {
	for _, h := range haystack {
		if h != "" && strings.Contains(strings.ToLower(h), term) {
			return true
		}
	}
	return false
}

func digits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
