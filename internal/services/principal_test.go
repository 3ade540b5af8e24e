package services

import (
	"encoding/base64"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePrincipal(t *testing.T, payload string) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestGetClientPrincipal(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/userdex", nil)
	r.Header.Set(PrincipalHeader, encodePrincipal(t,
		`{"identityProvider":"aad","userId":"user-1","userDetails":"ash@example.com","userRoles":["authenticated"]}`))

	principal := GetClientPrincipal(r)
	require.NotNil(t, principal)
	assert.Equal(t, "user-1", principal.UserID)
	assert.Equal(t, "ash@example.com", principal.UserDetails)
	assert.Equal(t, "aad", principal.IdentityProvider)
}

func TestGetClientPrincipal_MissingHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/userdex", nil)
	assert.Nil(t, GetClientPrincipal(r))
}

func TestGetClientPrincipal_MalformedHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/userdex", nil)
	r.Header.Set(PrincipalHeader, "!!not-base64!!")
	assert.Nil(t, GetClientPrincipal(r))

	r.Header.Set(PrincipalHeader, encodePrincipal(t, "{not json"))
	assert.Nil(t, GetClientPrincipal(r))
}

func TestGetClientPrincipal_EmptyUserID(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/userdex", nil)
	r.Header.Set(PrincipalHeader, encodePrincipal(t, `{"userDetails":"ash@example.com"}`))
	assert.Nil(t, GetClientPrincipal(r))
}
