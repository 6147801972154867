package auth

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mpoksari/catering-api/internal/enum"
)

// ErrInvalidSession is returned for a well-signed token whose claims do not
// describe a usable session.
var ErrInvalidSession = errors.New("invalid session")

// ValidateSession validates tokenStr and the role it carries. Member sessions
// must name a member.
func ValidateSession(secret, tokenStr string) (*Claims, error) {
	claims, err := ValidateToken(secret, tokenStr)
	if err != nil {
		return nil, err
	}
	switch claims.Role {
	case enum.RoleStaff:
	case enum.RoleMember:
		if claims.MemberID == uuid.Nil {
			return nil, fmt.Errorf("%w: member session without member id", ErrInvalidSession)
		}
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidSession, claims.Role)
	}
	return claims, nil
}

// CanAccess reports whether the session may see memberID's orders: staff see
// everyone, members only themselves.
func (c *Claims) CanAccess(memberID uuid.UUID) bool {
	return c.Role == enum.RoleStaff || c.MemberID == memberID
}
