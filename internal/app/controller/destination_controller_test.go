package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MauroRinelli/Solship/internal/app/repository"
	"github.com/MauroRinelli/Solship/internal/app/service"
	"github.com/MauroRinelli/Solship/internal/db"
	"github.com/MauroRinelli/Solship/internal/events"
	"github.com/MauroRinelli/Solship/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupControllerTest(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	gormDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(gormDB) })

	bus := events.NewBus()
	destinationRepo := repository.NewDestinationRepository(gormDB)
	shipmentRepo := repository.NewShipmentRepository(gormDB)

	destinationCtrl := NewDestinationController(service.NewDestinationService(destinationRepo, bus))
	shipmentCtrl := NewShipmentController(service.NewShipmentService(shipmentRepo, destinationRepo, bus))

	auth := middleware.NewAuthMiddleware("test-secret")

	r := gin.New()
	api := r.Group("/api", auth.Identify())
	{
		api.GET("/destinations", destinationCtrl.ListDestinations)
		api.POST("/destinations", destinationCtrl.CreateDestination)
		api.GET("/destinations/:id", destinationCtrl.GetDestination)
		api.PUT("/destinations/:id", destinationCtrl.UpdateDestination)
		api.DELETE("/destinations/:id", destinationCtrl.DeleteDestination)
		api.POST("/shipments", shipmentCtrl.CreateShipment)
		api.GET("/shipments/stats", shipmentCtrl.GetStats)
	}
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func createTestDestination(t *testing.T, r *gin.Engine) string {
	w, resp := doJSON(t, r, http.MethodPost, "/api/destinations", gin.H{
		"name": "Mario Rossi",
		"address": gin.H{
			"street":  "Via Roma 1",
			"city":    "Milano",
			"zipCode": "20100",
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	data := resp["data"].(map[string]interface{})
	return data["id"].(string)
}

func TestDestinationAPI_CreateAndList(t *testing.T) {
	r := setupControllerTest(t)

	id := createTestDestination(t, r)
	require.NotEmpty(t, id)

	w, resp := doJSON(t, r, http.MethodGet, "/api/destinations", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])

	items := resp["data"].([]interface{})
	require.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "Mario Rossi", first["name"])

	address := first["address"].(map[string]interface{})
	assert.Equal(t, "Milano", address["city"])
	assert.Equal(t, "Italy", address["country"])
}

func TestDestinationAPI_GetUnknownReturns404Envelope(t *testing.T) {
	r := setupControllerTest(t)

	w, resp := doJSON(t, r, http.MethodGet, "/api/destinations/missing-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "DESTINATION_NOT_FOUND", resp["error"])
}

func TestDestinationAPI_CreateValidationReturns400(t *testing.T) {
	r := setupControllerTest(t)

	w, resp := doJSON(t, r, http.MethodPost, "/api/destinations", gin.H{
		"name":  "Mario Rossi",
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, resp["success"])

	fields := resp["fields"].(map[string]interface{})
	assert.Contains(t, fields, "email")
}

func TestDestinationAPI_UpdatePartial(t *testing.T) {
	r := setupControllerTest(t)

	id := createTestDestination(t, r)

	w, resp := doJSON(t, r, http.MethodPut, "/api/destinations/"+id, gin.H{
		"city": "Napoli",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	data := resp["data"].(map[string]interface{})
	address := data["address"].(map[string]interface{})
	assert.Equal(t, "Napoli", address["city"])
	assert.Equal(t, "Mario Rossi", data["name"])
}

func TestDestinationAPI_DeleteInUseReturns400(t *testing.T) {
	r := setupControllerTest(t)

	id := createTestDestination(t, r)

	w, _ := doJSON(t, r, http.MethodPost, "/api/shipments", gin.H{
		"destinationId":  id,
		"trackingNumber": "TRK12345678",
		"carrier":        "ACME Express",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := doJSON(t, r, http.MethodDelete, "/api/destinations/"+id, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "DESTINATION_IN_USE", resp["error"])
}

func TestShipmentAPI_StatsEnvelope(t *testing.T) {
	r := setupControllerTest(t)

	id := createTestDestination(t, r)

	w, _ := doJSON(t, r, http.MethodPost, "/api/shipments", gin.H{
		"destinationId":  id,
		"trackingNumber": "TRK12345678",
		"carrier":        "ACME Express",
		"cost":           25.5,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := doJSON(t, r, http.MethodGet, "/api/shipments/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["totalShipments"])
	assert.Equal(t, float64(1), data["activeShipments"])
	assert.InDelta(t, 25.5, data["totalCost"], 0.001)
}
