package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lpielikys/pokedextracker-backend/internal/models"
)

// fakeDirectory serves the token endpoint plus the handful of directory
// routes the service calls, recording every $filter it sees.
type fakeDirectory struct {
	server *httptest.Server

	filters     []string
	matchFilter string // filter substring that yields a user hit
	matchID     string

	assignments map[string][]map[string]string // objectID -> assignments
	appRoles    map[string]string              // appRoleId -> value
	failAll     bool
}

func newFakeDirectory(t *testing.T) *fakeDirectory {
	f := &fakeDirectory{
		assignments: map[string][]map[string]string{},
		appRoles:    map[string]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-token",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if f.failAll {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}

		path := r.URL.Path
		switch {
		case path == "/users" && r.URL.Query().Get("$filter") != "":
			filter := r.URL.Query().Get("$filter")
			f.filters = append(f.filters, filter)
			var users []map[string]string
			if f.matchFilter != "" && strings.Contains(filter, f.matchFilter) {
				users = append(users, map[string]string{"id": f.matchID})
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"value": users})

		case strings.HasPrefix(path, "/users/") && strings.HasSuffix(path, "/appRoleAssignments"):
			objectID := strings.TrimSuffix(strings.TrimPrefix(path, "/users/"), "/appRoleAssignments")
			json.NewEncoder(w).Encode(map[string]interface{}{"value": f.assignments[objectID]})

		case strings.HasPrefix(path, "/servicePrincipals/"):
			var roles []map[string]string
			for id, value := range f.appRoles {
				roles = append(roles, map[string]string{"id": id, "value": value})
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"appRoles": roles})

		default:
			http.NotFound(w, r)
		}
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeDirectory) service() *DirectoryService {
	svc := NewDirectoryService(f.server.URL, "trackertenant.onmicrosoft.com", "client-id", "secret", "app-object-id", "Admin")
	svc.tokenURL = f.server.URL + "/token"
	return svc
}

func TestResolveObjectID_ObjectIDShortCircuits(t *testing.T) {
	fake := newFakeDirectory(t)
	svc := fake.service()

	principal := &models.Principal{UserID: "1b2e4f6a-8c0d-4e2f-9a1b-3c5d7e9f1a2b", UserDetails: "ash@example.com"}
	id := svc.ResolveObjectID(context.Background(), principal)

	assert.Equal(t, principal.UserID, id)
	assert.Empty(t, fake.filters, "no directory lookup expected for a direct object id")
}

func TestResolveObjectID_CascadeOrderAndFirstMatchWins(t *testing.T) {
	fake := newFakeDirectory(t)
	fake.matchFilter = "mail eq 'ash.ketchum@gmail.com'"
	fake.matchID = "resolved-object-id"
	svc := fake.service()

	principal := &models.Principal{UserID: "sid:abc123", UserDetails: "ash.ketchum@gmail.com"}
	id := svc.ResolveObjectID(context.Background(), principal)

	assert.Equal(t, "resolved-object-id", id)

	// All strategies up to and including the match ran, in order
	require.Len(t, fake.filters, 3)
	assert.Equal(t, "userPrincipalName eq 'ash.ketchum@gmail.com'", fake.filters[0])
	assert.Equal(t, "userPrincipalName eq 'ash_ketchum_gmail_com#EXT#@trackertenant.onmicrosoft.com'", fake.filters[1])
	assert.Equal(t, "mail eq 'ash.ketchum@gmail.com'", fake.filters[2])
}

func TestResolveObjectID_NoMatchTriesAllStrategies(t *testing.T) {
	fake := newFakeDirectory(t)
	svc := fake.service()

	principal := &models.Principal{UserID: "sid:abc123", UserDetails: "ash.ketchum@gmail.com"}
	id := svc.ResolveObjectID(context.Background(), principal)

	assert.Empty(t, id)
	// userPrincipalName, guestUPN, mail, otherMails, upnPrefix
	assert.Len(t, fake.filters, 5)
	assert.Contains(t, fake.filters[3], "otherMails/any")
	assert.Contains(t, fake.filters[4], "startswith(userPrincipalName,'ash.ketchum')")
}

func TestResolveIsAdmin_HappyPath(t *testing.T) {
	fake := newFakeDirectory(t)
	objectID := "1b2e4f6a-8c0d-4e2f-9a1b-3c5d7e9f1a2b"
	fake.assignments[objectID] = []map[string]string{
		{"id": "assignment-1", "appRoleId": "role-1", "resourceId": "app-object-id"},
	}
	fake.appRoles["role-1"] = "Admin"
	svc := fake.service()

	isAdmin, roles := svc.ResolveIsAdmin(context.Background(), &models.Principal{UserID: objectID})
	assert.True(t, isAdmin)
	assert.Equal(t, []string{"Admin"}, roles)
}

func TestResolveIsAdmin_NonAdminRole(t *testing.T) {
	fake := newFakeDirectory(t)
	objectID := "1b2e4f6a-8c0d-4e2f-9a1b-3c5d7e9f1a2b"
	fake.assignments[objectID] = []map[string]string{
		{"id": "assignment-1", "appRoleId": "role-2", "resourceId": "app-object-id"},
	}
	fake.appRoles["role-2"] = "Viewer"
	svc := fake.service()

	isAdmin, roles := svc.ResolveIsAdmin(context.Background(), &models.Principal{UserID: objectID})
	assert.False(t, isAdmin)
	assert.Equal(t, []string{"Viewer"}, roles)
}

func TestResolveIsAdmin_FailsClosed(t *testing.T) {
	fake := newFakeDirectory(t)
	fake.failAll = true
	svc := fake.service()

	isAdmin, roles := svc.ResolveIsAdmin(context.Background(), &models.Principal{
		UserID:      "1b2e4f6a-8c0d-4e2f-9a1b-3c5d7e9f1a2b",
		UserDetails: "ash@example.com",
	})
	assert.False(t, isAdmin)
	assert.Nil(t, roles)
}

func TestResolveIsAdmin_NilPrincipal(t *testing.T) {
	fake := newFakeDirectory(t)
	svc := fake.service()

	isAdmin, roles := svc.ResolveIsAdmin(context.Background(), nil)
	assert.False(t, isAdmin)
	assert.Nil(t, roles)

	isAdmin, _ = svc.ResolveIsAdmin(context.Background(), &models.Principal{})
	assert.False(t, isAdmin)
}

func TestGuestUPN(t *testing.T) {
	tests := []struct {
		email  string
		tenant string
		want   string
	}{
		{"ash.ketchum@gmail.com", "tenant.onmicrosoft.com", "ash_ketchum_gmail_com#EXT#@tenant.onmicrosoft.com"},
		{"misty@water.example.org", "tenant.onmicrosoft.com", "misty_water_example_org#EXT#@tenant.onmicrosoft.com"},
		{"not-an-email", "tenant.onmicrosoft.com", ""},
		{"ash@gmail.com", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, guestUPN(tt.email, tt.tenant), "guestUPN(%q, %q)", tt.email, tt.tenant)
	}
}

func TestDemoteAdmin_AbsentAssignmentSucceeds(t *testing.T) {
	fake := newFakeDirectory(t)
	fake.appRoles["role-1"] = "Admin"
	svc := fake.service()

	err := svc.DemoteAdmin(context.Background(), "1b2e4f6a-8c0d-4e2f-9a1b-3c5d7e9f1a2b")
	assert.NoError(t, err)
}

func TestEscapeFilterValue(t *testing.T) {
	assert.Equal(t, "o''hara", escapeFilterValue("o'hara"))
	assert.Equal(t, "plain", escapeFilterValue("plain"))
}
