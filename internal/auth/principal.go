package auth

// SuperuserID is the id carried in tokens issued to the configured superuser.
// No user row has it.
const SuperuserID = "superuser"

// Kind tags a Principal.
type Kind int

const (
	RegularUser Kind = iota
	Superuser
)

func (k Kind) String() string {
	if k == Superuser {
		return "superuser"
	}
	return "user"
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	Kind     Kind
	ID       string
	Username string
}

// IsSuperuser reports whether p bypasses ownership checks.
func (p Principal) IsSuperuser() bool { return p.Kind == Superuser }

// NewPrincipal resolves token claims into a Principal. The superuser is
// matched by username only.
func NewPrincipal(claims Claims, superuserUsername string) Principal {
	p := Principal{Kind: RegularUser, ID: claims.UserID, Username: claims.Username()}
	if superuserUsername != "" && claims.Username() == superuserUsername {
		p.Kind = Superuser
	}
	return p
}

// SuperuserPrincipal is the principal produced by a successful superuser login.
func SuperuserPrincipal(username string) Principal {
	return Principal{Kind: Superuser, ID: SuperuserID, Username: username}
}

// Claims returns the token claims that identify p.
func (p Principal) Claims() Claims {
	return NewClaims(p.Username, p.ID)
}
