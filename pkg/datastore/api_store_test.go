package datastore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apiTestServer(t *testing.T, handler http.HandlerFunc) *APIStore {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAPIStore(srv.URL, "")
}

func writeEnvelope(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": status < 400,
		"data":    data,
	})
}

func TestAPIStoreDecodesListEnvelope(t *testing.T) {
	store := apiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/destinations", r.URL.Path)
		writeEnvelope(w, http.StatusOK, []Destination{
			{ID: "d-1", Name: "Mario Rossi"},
			{ID: "d-2", Name: "Anna Bianchi"},
		})
	})

	destinations, err := store.Destinations(context.Background())
	require.NoError(t, err)
	require.Len(t, destinations, 2)
	assert.Equal(t, "Mario Rossi", destinations[0].Name)
}

func TestAPIStoreReadFailureReturnsEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	store := NewAPIStore(srv.URL, "")
	srv.Close() // unreachable server

	destinations, err := store.Destinations(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, destinations)

	shipments, err := store.Shipments(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, shipments)

	stats, err := store.Stats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalShipments)

	// Single-record reads degrade the same way.
	destination, err := store.Destination(context.Background(), "d-1")
	assert.NoError(t, err)
	assert.Nil(t, destination)

	shipment, err := store.Shipment(context.Background(), "s-1")
	assert.NoError(t, err)
	assert.Nil(t, shipment)
}

func TestAPIStoreWhitespaceSearchReturnsAll(t *testing.T) {
	store := apiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		// A blank query never reaches the search endpoint.
		assert.Equal(t, "/api/destinations", r.URL.Path)
		assert.False(t, r.URL.Query().Has("q"))
		writeEnvelope(w, http.StatusOK, []Destination{
			{ID: "d-1", Name: "Mario Rossi"},
			{ID: "d-2", Name: "Anna Bianchi"},
		})
	})

	destinations, err := store.SearchDestinations(context.Background(), "   ")
	require.NoError(t, err)
	assert.Len(t, destinations, 2)

	shipmentStore := apiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/shipments", r.URL.Path)
		assert.False(t, r.URL.Query().Has("q"))
		writeEnvelope(w, http.StatusOK, []Shipment{{ID: "s-1"}})
	})

	shipments, err := shipmentStore.SearchShipments(context.Background(), "\t ")
	require.NoError(t, err)
	assert.Len(t, shipments, 1)
}

func TestAPIStoreWriteFailureSurfacesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	store := NewAPIStore(srv.URL, "")
	srv.Close()

	_, err := store.CreateDestination(context.Background(), &Destination{Name: "Mario Rossi"})
	assert.Error(t, err)
}

func TestAPIStoreMapsNotFound(t *testing.T) {
	store := apiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":"DESTINATION_NOT_FOUND","message":"destination not found"}`))
	})

	_, err := store.Destination(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAPIStoreMapsDestinationInUseToConflict(t *testing.T) {
	store := apiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"DESTINATION_IN_USE","message":"cannot delete destination with associated shipments"}`))
	})

	err := store.DeleteDestination(context.Background(), "d-1", false)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAPIStoreForceDeleteRemovesShipmentsFirst(t *testing.T) {
	var deletedShipments []string
	destinationDeletes := 0

	store := apiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/api/destinations/d-1":
			destinationDeletes++
			if destinationDeletes == 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"success":false,"error":"DESTINATION_IN_USE","message":"in use"}`))
				return
			}
			writeEnvelope(w, http.StatusOK, nil)
		case r.Method == http.MethodGet && r.URL.Path == "/api/shipments":
			writeEnvelope(w, http.StatusOK, []Shipment{
				{ID: "s-1", DestinationID: "d-1"},
				{ID: "s-2", DestinationID: "d-2"},
			})
		case r.Method == http.MethodDelete:
			deletedShipments = append(deletedShipments, r.URL.Path)
			writeEnvelope(w, http.StatusOK, nil)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	require.NoError(t, store.DeleteDestination(context.Background(), "d-1", true))
	assert.Equal(t, []string{"/api/shipments/s-1"}, deletedShipments)
	assert.Equal(t, 2, destinationDeletes)
}

func TestAPIStoreSendsBearerTokenAndQuery(t *testing.T) {
	var gotAuth, gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("q")
		writeEnvelope(w, http.StatusOK, []Shipment{})
	}))
	t.Cleanup(srv.Close)
	store := NewAPIStore(srv.URL, "secret-token")

	_, err := store.SearchShipments(context.Background(), "dhl express")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "dhl express", gotQuery)
}

func TestAPIStoreUpdateSendsPatchFields(t *testing.T) {
	var body map[string]interface{}

	store := apiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeEnvelope(w, http.StatusOK, Destination{ID: "d-1", Name: "Mario Rossi", Address: Address{City: "Torino"}})
	})

	city := "Torino"
	updated, err := store.UpdateDestination(context.Background(), "d-1", DestinationPatch{City: &city})
	require.NoError(t, err)

	// Only the patched field is on the wire.
	assert.Equal(t, map[string]interface{}{"city": "Torino"}, body)
	assert.Equal(t, "Torino", updated.Address.City)
}

func TestAPIStoreStatsEndpoint(t *testing.T) {
	store := apiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/shipments/stats", r.URL.Path)
		writeEnvelope(w, http.StatusOK, Stats{
			TotalShipments:     3,
			ActiveShipments:    2,
			DeliveredShipments: 1,
			TotalCost:          150,
		})
	})

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalShipments)
	assert.Equal(t, int64(2), stats.ActiveShipments)
	assert.Equal(t, float64(150), stats.TotalCost)
}

func TestAPIStoreImportPostsSnapshot(t *testing.T) {
	var gotPath string

	store := apiTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		writeEnvelope(w, http.StatusOK, nil)
	})

	err := store.Import(context.Background(), &Snapshot{Version: SnapshotVersion})
	require.NoError(t, err)
	assert.Equal(t, "/api/import", gotPath)

	assert.ErrorIs(t, store.Import(context.Background(), nil), ErrInvalidSnapshot)
}
