package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/shared"
)

// DirectoryResolver resolves the principal from the session and backs it
// with the user directory: the role is the session snapshot (refreshed only
// on explicit trigger), but isActive is always read fresh so a deactivated
// account is denied immediately, not at next login.
type DirectoryResolver struct {
	Repo Repository
}

// Resolve implements authz.Resolver.
func (d DirectoryResolver) Resolve(ctx context.Context, r *http.Request) (*authz.Principal, error) {
	sess := shared.SessionFromContext(ctx)
	if sess == nil || sess.UserID() == "" {
		return nil, nil
	}
	user, err := d.Repo.FindByID(ctx, sess.UserID())
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &authz.Principal{
		ID:       user.ID,
		Email:    user.Email,
		Role:     authz.ParseRole(sess.Role()),
		IsActive: user.IsActive,
	}, nil
}

var _ authz.Resolver = DirectoryResolver{}
