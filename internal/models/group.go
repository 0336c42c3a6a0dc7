package models

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// memberIDPrefix marks user ids generated for members without an external identity.
const memberIDPrefix = "user_"

// Member is one participant in a group.
type Member struct {
	// UserID is the primary key for every balance computation. It must not
	// change once an expense or settlement references it.
	UserID string `json:"user_id"`

	// Name is the display name.
	Name string `json:"name"`
}

// DisplayName returns the name, falling back to the local part of an
// e-mail style user id.
func (m Member) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	local, _, _ := strings.Cut(m.UserID, "@")
	return local
}

// Group is a named roster of members. Expenses and settlements reference it
// through their GroupID.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g., "Goa Trip", "Flat 4B").
	Name string `json:"name"`

	// Members is the roster, in the order members were added. That order is
	// the tie-break order used by the debt simplifier.
	Members []Member `json:"members"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the Unix timestamp of the last roster or name change.
	UpdatedAt int64 `json:"updated_at"`
}

// MemberIDs returns the user ids of the roster in order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.UserID
	}
	return ids
}

// FindMember looks up a member by user id.
func (g *Group) FindMember(userID string) (Member, bool) {
	for _, m := range g.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return Member{}, false
}

// HasMember reports whether userID is on the roster.
func (g *Group) HasMember(userID string) bool {
	_, ok := g.FindMember(userID)
	return ok
}

// Validate checks the group name and that member ids are present and unique.
func (g *Group) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	seen := make(map[string]bool, len(g.Members))
	for _, m := range g.Members {
		if m.UserID == "" {
			return ErrEmptyMemberID
		}
		if seen[m.UserID] {
			return ErrDuplicateMember
		}
		seen[m.UserID] = true
	}
	return nil
}

// AssignMemberIDs gives every member without a user id a generated one.
func (g *Group) AssignMemberIDs() {
	for i := range g.Members {
		if g.Members[i].UserID == "" {
			g.Members[i].UserID = NewMemberID()
		}
	}
}

// NewMemberID returns an opaque id of the form "user_" followed by nine
// lowercase alphanumerics.
func NewMemberID() string {
	id := uuid.New()
	token := strconv.FormatUint(binary.BigEndian.Uint64(id[:8]), 36)
	if len(token) < 9 {
		token = strings.Repeat("0", 9-len(token)) + token
	}
	return memberIDPrefix + token[:9]
}

// IsGeneratedMemberID reports whether userID was produced by NewMemberID.
func IsGeneratedMemberID(userID string) bool {
	return strings.HasPrefix(userID, memberIDPrefix) && !strings.Contains(userID, "@")
}
