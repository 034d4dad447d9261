package auth

import "bookkeeping/internal/domain"

// Authorize permits the superuser and the owner of a resource. kind only
// shapes the error message.
func Authorize(p Principal, ownerID, kind string) error {
	if p.IsSuperuser() {
		return nil
	}
	if p.ID != "" && p.ID == ownerID {
		return nil
	}
	return &domain.ForbiddenError{Reason: "access denied: you can only access your own " + kind}
}

// RequireSuperuser rejects every principal except the superuser.
func RequireSuperuser(p Principal) error {
	if p.IsSuperuser() {
		return nil
	}
	return &domain.ForbiddenError{Reason: "insufficient permissions"}
}
