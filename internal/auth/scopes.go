package auth

// Known OAuth scopes used by the fitness services.
const (
	ScopeActivitiesWrite = "activities:write"
	ScopeActivitiesRead  = "activities:read"
)
