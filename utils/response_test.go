package utils_test

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"carenest/utils"

	"github.com/stretchr/testify/assert"
)

func TestRespondWithJSONSetsHeaderAndBody(t *testing.T) {
	rec := httptest.NewRecorder()
	utils.RespondWithJSON(rec, http.StatusCreated, utils.M{"insertedId": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "abc", resp["insertedId"])
}

func TestRespondWithErrorUsesErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	utils.RespondWithError(rec, http.StatusNotFound, "booking not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "booking not found", resp["error"])
}

func TestRespondWithJSONUnencodableValue(t *testing.T) {
	rec := httptest.NewRecorder()
	utils.RespondWithJSON(rec, http.StatusOK, utils.M{"bad": math.NaN()})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
