package directory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryDirectory is an in-memory Directory implementation, safe for
// concurrent use. Email lookup is case-insensitive.
type MemoryDirectory struct {
	mu      sync.RWMutex
	members map[uuid.UUID]Member
	byEmail map[string]uuid.UUID
}

// NewMemoryDirectory creates an empty in-memory member directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		members: make(map[uuid.UUID]Member),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Get returns the member with the given id.
func (d *MemoryDirectory) Get(_ context.Context, memberID uuid.UUID) (Member, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	member, ok := d.members[memberID]
	if !ok {
		return Member{}, ErrUnknownMember
	}

	return member, nil
}

// FindByEmail returns the member with the given email, ignoring case.
func (d *MemoryDirectory) FindByEmail(_ context.Context, email string) (Member, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byEmail[strings.ToLower(email)]
	if !ok {
		return Member{}, ErrUnknownMember
	}

	return d.members[id], nil
}

// List returns all members ordered by creation time, then id for stability.
func (d *MemoryDirectory) List(_ context.Context) ([]Member, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	members := make([]Member, 0, len(d.members))
	for _, member := range d.members {
		members = append(members, member)
	}

	sort.Slice(members, func(i, j int) bool {
		if !members[i].CreatedAt.Equal(members[j].CreatedAt) {
			return members[i].CreatedAt.Before(members[j].CreatedAt)
		}
		return members[i].ID.String() < members[j].ID.String()
	})

	return members, nil
}

// Add inserts a new member. Part of the admin-edit flow, not the Directory
// interface consumed by the loan ledger.
func (d *MemoryDirectory) Add(_ context.Context, member Member) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	email := strings.ToLower(member.Email)

	if _, ok := d.members[member.ID]; ok {
		return ErrMemberExists
	}
	if _, ok := d.byEmail[email]; ok {
		return ErrMemberExists
	}

	d.members[member.ID] = member
	d.byEmail[email] = member.ID

	return nil
}
