package contextkeys

type contextKey string

const (
	// DBContextKey holds the *gorm.DB (pool or transaction) used by a request.
	DBContextKey = contextKey("db")
	// ClaimsKey holds the parsed *auth.Claims of an authenticated request.
	ClaimsKey = contextKey("claims")
)
