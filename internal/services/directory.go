package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lpielikys/pokedextracker-backend/internal/models"
)

// DirectoryService resolves principals against the identity directory and
// manages application role assignments for the admin dashboard.
//
// The directory knows users under two representations (direct object ID and
// email-derived guest UPN) that are not always interchangeable, so resolution
// runs an ordered list of lookup strategies and the first non-empty match wins.
type DirectoryService struct {
	endpoint  string
	tenant    string
	clientID  string
	secret    string
	appID     string // service principal object id carrying the app roles
	adminRole string
	tokenURL  string
	client    *http.Client

	mu       sync.Mutex
	token    string
	tokenExp time.Time
	// appRoleId -> role value, cached after the first servicePrincipal lookup
	roleNames map[string]string
}

func NewDirectoryService(endpoint, tenant, clientID, secret, appID, adminRole string) *DirectoryService {
	if adminRole == "" {
		adminRole = "Admin"
	}
	return &DirectoryService{
		endpoint:  strings.TrimRight(endpoint, "/"),
		tenant:    tenant,
		clientID:  clientID,
		secret:    secret,
		appID:     appID,
		adminRole: adminRole,
		tokenURL:  fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", tenant),
		client:    &http.Client{Timeout: 4 * time.Second},
		roleNames: make(map[string]string),
	}
}

// DirectoryAccount is the projection of a directory user shown on the admin
// dashboard.
type DirectoryAccount struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Blocked bool   `json:"blocked"`
}

type directoryUser struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	UserPrincipalName string `json:"userPrincipalName"`
	Mail              string `json:"mail"`
	AccountEnabled    *bool  `json:"accountEnabled"`
}

type directoryUserList struct {
	Value []directoryUser `json:"value"`
}

// getToken fetches (and caches) a client-credentials access token.
func (s *DirectoryService) getToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" && time.Now().Before(s.tokenExp) {
		return s.token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {s.clientID},
		"client_secret": {s.secret},
		"scope":         {"https://graph.microsoft.com/.default"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("token request failed: %s - %s", resp.Status, string(text))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", err
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("token response had no access_token")
	}

	s.token = tokenResp.AccessToken
	s.tokenExp = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - time.Minute)
	return s.token, nil
}

// doJSON performs an authenticated directory call and decodes the response.
func (s *DirectoryService) doJSON(ctx context.Context, method, path string, body interface{}, dest interface{}, headers map[string]string) error {
	token, err := s.getToken(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpoint+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("directory call %s %s failed: %s - %s", method, path, resp.Status, string(text))
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// findUserByFilter runs a $filter users query and returns the first match's id.
func (s *DirectoryService) findUserByFilter(ctx context.Context, filter string) (string, error) {
	path := fmt.Sprintf("/users?$filter=%s&$select=id,userPrincipalName", url.QueryEscape(filter))
	var list directoryUserList
	if err := s.doJSON(ctx, http.MethodGet, path, nil, &list, nil); err != nil {
		return "", err
	}
	if len(list.Value) == 0 {
		return "", nil
	}
	return list.Value[0].ID, nil
}

// guestUPN builds the external-collaboration UPN for an email address, e.g.
// ash.ketchum@gmail.com -> ash_ketchum_gmail_com#EXT#@<tenant>.
func guestUPN(email, tenant string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 || tenant == "" {
		return ""
	}
	local := strings.ReplaceAll(email[:at], ".", "_")
	domain := strings.ReplaceAll(email[at+1:], ".", "_")
	return fmt.Sprintf("%s_%s#EXT#@%s", local, domain, tenant)
}

// resolverStrategy is one way to resolve a principal to a directory object id.
// An empty id with nil error means "no match, try the next one".
type resolverStrategy struct {
	name    string
	resolve func(ctx context.Context, p *models.Principal) (string, error)
}

func (s *DirectoryService) resolverStrategies() []resolverStrategy {
	return []resolverStrategy{
		{"objectId", func(ctx context.Context, p *models.Principal) (string, error) {
			// Some auth providers hand us the directory object id directly
			if _, err := uuid.Parse(p.UserID); err == nil {
				return p.UserID, nil
			}
			return "", nil
		}},
		{"userPrincipalName", func(ctx context.Context, p *models.Principal) (string, error) {
			if p.UserDetails == "" {
				return "", nil
			}
			return s.findUserByFilter(ctx, fmt.Sprintf("userPrincipalName eq '%s'", escapeFilterValue(p.UserDetails)))
		}},
		{"guestUPN", func(ctx context.Context, p *models.Principal) (string, error) {
			upn := guestUPN(p.UserDetails, s.tenant)
			if upn == "" {
				return "", nil
			}
			return s.findUserByFilter(ctx, fmt.Sprintf("userPrincipalName eq '%s'", escapeFilterValue(upn)))
		}},
		{"mail", func(ctx context.Context, p *models.Principal) (string, error) {
			if p.UserDetails == "" {
				return "", nil
			}
			return s.findUserByFilter(ctx, fmt.Sprintf("mail eq '%s'", escapeFilterValue(p.UserDetails)))
		}},
		{"otherMails", func(ctx context.Context, p *models.Principal) (string, error) {
			if p.UserDetails == "" {
				return "", nil
			}
			return s.findUserByFilter(ctx, fmt.Sprintf("otherMails/any(x:x eq '%s')", escapeFilterValue(p.UserDetails)))
		}},
		{"upnPrefix", func(ctx context.Context, p *models.Principal) (string, error) {
			at := strings.Index(p.UserDetails, "@")
			if at <= 0 {
				return "", nil
			}
			return s.findUserByFilter(ctx, fmt.Sprintf("startswith(userPrincipalName,'%s')", escapeFilterValue(p.UserDetails[:at])))
		}},
	}
}

// ResolveObjectID maps a principal to a directory object id by trying each
// resolver strategy in order. Strategy errors are logged and skipped so a
// flaky lookup path never masks a later one.
func (s *DirectoryService) ResolveObjectID(ctx context.Context, principal *models.Principal) string {
	for _, strategy := range s.resolverStrategies() {
		id, err := strategy.resolve(ctx, principal)
		if err != nil {
			log.Printf("directory lookup via %s failed: %v", strategy.name, err)
			continue
		}
		if id != "" {
			return id
		}
	}
	return ""
}

type appRoleAssignment struct {
	ID         string `json:"id"`
	AppRoleID  string `json:"appRoleId"`
	ResourceID string `json:"resourceId"`
}

type appRoleAssignmentList struct {
	Value []appRoleAssignment `json:"value"`
}

// roleName maps an appRoleId to its role value, caching the owning service
// principal's appRoles after the first lookup.
func (s *DirectoryService) roleName(ctx context.Context, resourceID, appRoleID string) string {
	s.mu.Lock()
	name, ok := s.roleNames[appRoleID]
	s.mu.Unlock()
	if ok {
		return name
	}

	var sp struct {
		AppRoles []struct {
			ID    string `json:"id"`
			Value string `json:"value"`
		} `json:"appRoles"`
	}
	if err := s.doJSON(ctx, http.MethodGet, fmt.Sprintf("/servicePrincipals/%s?$select=appRoles", resourceID), nil, &sp, nil); err != nil {
		log.Printf("failed to resolve app roles for %s: %v", resourceID, err)
		return ""
	}

	s.mu.Lock()
	for _, role := range sp.AppRoles {
		s.roleNames[role.ID] = role.Value
	}
	name = s.roleNames[appRoleID]
	s.mu.Unlock()
	return name
}

// UserRoles fetches the application role names assigned to a directory user.
func (s *DirectoryService) UserRoles(ctx context.Context, objectID string) ([]string, error) {
	var list appRoleAssignmentList
	if err := s.doJSON(ctx, http.MethodGet, fmt.Sprintf("/users/%s/appRoleAssignments", url.PathEscape(objectID)), nil, &list, nil); err != nil {
		return nil, err
	}

	var roles []string
	for _, assignment := range list.Value {
		if name := s.roleName(ctx, assignment.ResourceID, assignment.AppRoleID); name != "" {
			roles = append(roles, name)
		}
	}
	return roles, nil
}

// ResolveIsAdmin resolves a principal and checks its role assignments for the
// admin role. Every failure path yields isAdmin=false; admin-gated actions
// fail closed rather than erroring out.
func (s *DirectoryService) ResolveIsAdmin(ctx context.Context, principal *models.Principal) (bool, []string) {
	if principal == nil || principal.UserID == "" {
		return false, nil
	}

	objectID := s.ResolveObjectID(ctx, principal)
	if objectID == "" {
		return false, nil
	}

	roles, err := s.UserRoles(ctx, objectID)
	if err != nil {
		log.Printf("role lookup failed for %s: %v", objectID, err)
		return false, nil
	}

	for _, role := range roles {
		if role == s.adminRole {
			return true, roles
		}
	}
	return false, roles
}

// ListUsers returns directory accounts with admin and blocked flags for the
// admin dashboard. Per-user role lookup failures degrade to non-admin.
func (s *DirectoryService) ListUsers(ctx context.Context) ([]DirectoryAccount, error) {
	var list directoryUserList
	err := s.doJSON(ctx, http.MethodGet, "/users?$top=100&$count=true", nil, &list,
		map[string]string{"ConsistencyLevel": "eventual"})
	if err != nil {
		return nil, err
	}

	accounts := make([]DirectoryAccount, 0, len(list.Value))
	for _, u := range list.Value {
		name := u.DisplayName
		if name == "" {
			name = u.UserPrincipalName
		}
		email := u.Mail
		if email == "" {
			email = u.UserPrincipalName
		}

		isAdmin := false
		if roles, err := s.UserRoles(ctx, u.ID); err == nil {
			for _, role := range roles {
				if role == s.adminRole {
					isAdmin = true
					break
				}
			}
		}

		accounts = append(accounts, DirectoryAccount{
			ID:      u.ID,
			Name:    name,
			Email:   email,
			IsAdmin: isAdmin,
			Blocked: u.AccountEnabled != nil && !*u.AccountEnabled,
		})
	}
	return accounts, nil
}

// adminRoleID finds the appRoleId whose value is the admin role name.
func (s *DirectoryService) adminRoleID(ctx context.Context) (string, error) {
	if s.appID == "" {
		return "", fmt.Errorf("directory app object id is not configured")
	}

	var sp struct {
		AppRoles []struct {
			ID    string `json:"id"`
			Value string `json:"value"`
		} `json:"appRoles"`
	}
	if err := s.doJSON(ctx, http.MethodGet, fmt.Sprintf("/servicePrincipals/%s?$select=appRoles", s.appID), nil, &sp, nil); err != nil {
		return "", err
	}
	for _, role := range sp.AppRoles {
		if role.Value == s.adminRole {
			return role.ID, nil
		}
	}
	return "", fmt.Errorf("admin role %q not defined on the application", s.adminRole)
}

// PromoteAdmin assigns the admin app role to a directory user.
func (s *DirectoryService) PromoteAdmin(ctx context.Context, objectID string) error {
	roleID, err := s.adminRoleID(ctx)
	if err != nil {
		return err
	}
	body := map[string]string{
		"principalId": objectID,
		"resourceId":  s.appID,
		"appRoleId":   roleID,
	}
	return s.doJSON(ctx, http.MethodPost, fmt.Sprintf("/servicePrincipals/%s/appRoleAssignedTo", s.appID), body, nil, nil)
}

// DemoteAdmin removes the admin app role assignment from a directory user.
// A user without the assignment is already demoted, which is not an error.
func (s *DirectoryService) DemoteAdmin(ctx context.Context, objectID string) error {
	roleID, err := s.adminRoleID(ctx)
	if err != nil {
		return err
	}

	var list appRoleAssignmentList
	if err := s.doJSON(ctx, http.MethodGet, fmt.Sprintf("/users/%s/appRoleAssignments", url.PathEscape(objectID)), nil, &list, nil); err != nil {
		return err
	}
	for _, assignment := range list.Value {
		if assignment.AppRoleID == roleID {
			return s.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/users/%s/appRoleAssignments/%s", url.PathEscape(objectID), url.PathEscape(assignment.ID)), nil, nil, nil)
		}
	}
	return nil
}

// BlockUser disables a directory account.
func (s *DirectoryService) BlockUser(ctx context.Context, objectID string) error {
	return s.doJSON(ctx, http.MethodPatch, "/users/"+url.PathEscape(objectID), map[string]bool{"accountEnabled": false}, nil, nil)
}

// UnblockUser re-enables a directory account.
func (s *DirectoryService) UnblockUser(ctx context.Context, objectID string) error {
	return s.doJSON(ctx, http.MethodPatch, "/users/"+url.PathEscape(objectID), map[string]bool{"accountEnabled": true}, nil, nil)
}
