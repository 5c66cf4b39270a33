package auth

// Known OAuth scopes issued by the identity provider.
const (
	ScopeWorkoutsRead  = "workouts:read"
	ScopeWorkoutsWrite = "workouts:write"
)
