package models

// Principal is the authenticated identity forwarded by the hosting
// platform's auth layer. It is read-only input; only UserID is ever
// persisted (as the owner key on DexEntry documents).
type Principal struct {
	IdentityProvider string   `json:"identityProvider"`
	UserID           string   `json:"userId"`
	UserDetails      string   `json:"userDetails"` // email-like display identifier
	UserRoles        []string `json:"userRoles"`
}
