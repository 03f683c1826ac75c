package businessflow

import (
	"log"

	"github.com/amirphl/morevans-pricing/app/services"
	"github.com/amirphl/morevans-pricing/models"
)

// SessionFlow resolves the current session once and routes it to a dashboard.
type SessionFlow interface {
	Session() models.Session
	ResolveDashboard() (models.Dashboard, error)
	RequireAdmin() error
}

type SessionFlowImpl struct {
	session models.Session
}

// NewSessionFlow wraps an already resolved session.
func NewSessionFlow(session models.Session) SessionFlow {
	return &SessionFlowImpl{session: session}
}

// ResolveSession builds the session from a bearer token when one is given, otherwise from the
// configured role. With a secret the token is verified, without one its claims are only read.
func ResolveSession(tokens services.SessionTokenService, token, fallbackRole, fallbackUserID string, verify bool) (models.Session, error) {
	if token == "" {
		return models.Session{UserID: fallbackUserID, Role: models.ParseRole(fallbackRole)}, nil
	}

	var claims *services.SessionClaims
	var err error
	if verify {
		claims, err = tokens.Validate(token)
	} else {
		claims, err = tokens.ParseUnverified(token)
	}
	if err != nil {
		log.Printf("session token rejected: %v", err)
		return models.Session{}, NewBusinessError("SESSION_TOKEN_INVALID", "Session token is invalid or expired", err)
	}
	return claims.Session(token), nil
}

func (f *SessionFlowImpl) Session() models.Session { return f.session }

// ResolveDashboard routes admin roles to the admin dashboard, providers to theirs and
// personal accounts to the member dashboard.
func (f *SessionFlowImpl) ResolveDashboard() (models.Dashboard, error) {
	role := f.session.Role
	switch {
	case role == "":
		return "", NewBusinessError("SESSION_MISSING", "No session, please sign in", ErrSessionMissing)
	case role.IsAdmin():
		return models.DashboardAdmin, nil
	case role == models.RoleProvider:
		return models.DashboardProvider, nil
	case role.IsPersonal():
		return models.DashboardMember, nil
	default:
		return "", NewBusinessError("UNAUTHORIZED_ACCESS", "Unauthorized Access", ErrUnauthorizedAccess)
	}
}

// RequireAdmin fails unless the session routes to the admin dashboard.
func (f *SessionFlowImpl) RequireAdmin() error {
	dashboard, err := f.ResolveDashboard()
	if err != nil {
		return err
	}
	if dashboard != models.DashboardAdmin {
		return NewBusinessError("ADMIN_REQUIRED", "Unauthorized Access", ErrAdminRequired)
	}
	return nil
}
