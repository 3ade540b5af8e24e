package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lpielikys/pokedextracker-backend/internal/services"
)

func authHeader(userID string) string {
	payload, _ := json.Marshal(map[string]string{"userId": userID, "userDetails": userID + "@example.com"})
	return base64.StdEncoding.EncodeToString(payload)
}

func doRequest(handler http.HandlerFunc, method, target, userID, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	r := httptest.NewRequest(method, target, reader)
	if userID != "" {
		r.Header.Set(services.PrincipalHeader, authHeader(userID))
	}
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func withBlobService(t *testing.T) {
	t.Helper()
	svc, err := services.NewBlobService("demo", "key", "secret", "screenshots")
	require.NoError(t, err)
	prev := blobService
	blobService = svc
	t.Cleanup(func() { blobService = prev })
}

func TestHandlersRejectUnauthenticated(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		method  string
		target  string
	}{
		{"get collection", GetUserdex, http.MethodGet, "/api/userdex"},
		{"upsert entry", UpsertUserdex, http.MethodPut, "/api/userdex"},
		{"delete entry", DeleteUserdex, http.MethodDelete, "/api/userdex"},
		{"search", Search, http.MethodGet, "/api/search?q=pika"},
		{"upload media", UploadMedia, http.MethodPost, "/api/media"},
		{"delete media", DeleteMedia, http.MethodDelete, "/api/media?blobName=u1/25/a.png"},
		{"enable sharing", EnableShare, http.MethodPost, "/api/userdex/share"},
		{"disable sharing", DisableShare, http.MethodPost, "/api/userdex/unshare"},
		{"admin users", AdminUsers, http.MethodPost, "/api/admin/users"},
		{"admin media", AdminMedia, http.MethodPost, "/api/admin/media"},
		{"audit log", AuditLog, http.MethodPost, "/api/admin/auditlog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(tt.handler, tt.method, tt.target, "", "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestUpsertUserdex_Validation(t *testing.T) {
	w := doRequest(UpsertUserdex, http.MethodPut, "/api/userdex", "u1", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(UpsertUserdex, http.MethodPut, "/api/userdex", "u1", `{"caught":true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "pokemonId")
}

func TestDeleteUserdex_Validation(t *testing.T) {
	w := doRequest(DeleteUserdex, http.MethodDelete, "/api/userdex", "u1", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadMedia_Validation(t *testing.T) {
	withBlobService(t)

	w := doRequest(UploadMedia, http.MethodPost, "/api/media", "u1", `{"pokemonId":25}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(UploadMedia, http.MethodPost, "/api/media", "u1", `{"pokemonId":25,"file":"!!not-base64!!"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "base64")
}

func TestUploadMedia_NotConfigured(t *testing.T) {
	prev := blobService
	blobService = nil
	t.Cleanup(func() { blobService = prev })

	w := doRequest(UploadMedia, http.MethodPost, "/api/media", "u1", `{"pokemonId":25,"file":"aGVsbG8="}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDeleteMedia_OwnershipEnforced(t *testing.T) {
	withBlobService(t)

	w := doRequest(DeleteMedia, http.MethodDelete, "/api/media?blobName=u2/25/abc.png", "u1", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Prefix tricks don't grant ownership either
	w = doRequest(DeleteMedia, http.MethodDelete, "/api/media?blobName=u11/25/abc.png", "u1", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteMedia_MissingBlobName(t *testing.T) {
	withBlobService(t)

	w := doRequest(DeleteMedia, http.MethodDelete, "/api/media", "u1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPokedex_RegionValidation(t *testing.T) {
	w := doRequest(GetPokedex, http.MethodGet, "/api/pokedex", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["availableRegions"])

	w = doRequest(GetPokedex, http.MethodGet, "/api/pokedex?region=orre", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPokedex_ReturnsRegionCatalog(t *testing.T) {
	w := doRequest(GetPokedex, http.MethodGet, "/api/pokedex?region=kalos", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "kalos", body["region"])
	assert.Equal(t, float64(72), body["count"])
}

func TestParseBoolParam(t *testing.T) {
	require.NotNil(t, parseBoolParam("true"))
	assert.True(t, *parseBoolParam("true"))
	assert.True(t, *parseBoolParam("1"))
	assert.False(t, *parseBoolParam("false"))
	assert.False(t, *parseBoolParam("0"))
	assert.Nil(t, parseBoolParam(""))
	assert.Nil(t, parseBoolParam("maybe"))
}
