package permissions

// Role classifies what a caller is allowed to do. The zero value is not a
// valid role; anonymous callers never reach the predicates below.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a stored role string onto a Role, falling back to the
// regular user role for anything unknown.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleModerator:
		return RoleModerator
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}

func IsAdmin(r Role) bool {
	return r == RoleAdmin
}

func IsModerator(r Role) bool {
	return r == RoleModerator
}

// CanModerate reports whether the role may edit or delete content it does
// not own. Moderators moderate feedback only; catalog and user management
// stay admin-gated at the route level.
func CanModerate(r Role) bool {
	return r == RoleModerator || r == RoleAdmin
}

// CanModify is the per-object rule shared by reviews and comments:
// the author, a moderator or an admin may change the object.
func CanModify(actorID string, r Role, ownerID string) bool {
	return actorID == ownerID || CanModerate(r)
}
