package authoriser

const (
	RoleJobSeeker = "jobseeker"
	RoleEmployer  = "employer"
	RoleAdmin     = "admin"
)

var ValidRoles = map[string]struct{}{
	RoleJobSeeker: {},
	RoleEmployer:  {},
	RoleAdmin:     {},
}

// Actor is the authenticated caller, derived from a verified bearer token.
// Handlers pass it explicitly into every policy check, the policy never reads
// request-global state.
type Actor struct {
	ID    string
	Email string
	Role  string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanMutate reports whether the actor may update or delete a resource owned
// by ownerID. Admins may mutate anything, everyone else only what they own.
func CanMutate(a Actor, ownerID string) bool {
	return a.Role == RoleAdmin || a.ID == ownerID
}

// CanPostJobs reports whether the actor may create job postings and list
// their own postings.
func CanPostJobs(a Actor) bool {
	return a.Role == RoleEmployer || a.Role == RoleAdmin
}

func IsValidRole(role string) bool {
	_, ok := ValidRoles[role]
	return ok
}
