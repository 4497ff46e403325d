package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrUnknownMember is returned when neither id nor email resolves to a member.
	ErrUnknownMember = errors.New("member is not in the directory")

	// ErrMemberExists is returned when adding a member whose id or email is taken.
	ErrMemberExists = errors.New("member is already in the directory")
)

// Directory exposes read access to the member roster.
// Writes come from an external admin-edit flow and live on the concrete
// implementations, not on this interface.
type Directory interface {
	Get(ctx context.Context, memberID uuid.UUID) (Member, error)
	FindByEmail(ctx context.Context, email string) (Member, error)
	List(ctx context.Context) ([]Member, error)
}

// Resolve looks a member up by id first and falls back to email.
// This is the canonical resolution order for loan records, which carry both
// references and must join consistently.
func Resolve(ctx context.Context, dir Directory, memberID uuid.UUID, email string) (Member, error) {
	if memberID != uuid.Nil {
		member, err := dir.Get(ctx, memberID)
		if err == nil {
			return member, nil
		}
		if !errors.Is(err, ErrUnknownMember) {
			return Member{}, err
		}
	}

	return dir.FindByEmail(ctx, email)
}
