package models

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleMember }

type GroupMember struct {
	UserID   string    `bson:"user_id" json:"user_id"`
	Role     Role      `bson:"role" json:"role"`
	JoinedAt time.Time `bson:"joined_at" json:"joined_at"`
}

// Group is the durable record for a chat group. Members is append-ordered;
// TotalMembers is a denormalized count kept equal to len(Members) on every
// mutation.
type Group struct {
	ID           string        `bson:"_id,omitempty" json:"id"`
	Name         string        `bson:"name" json:"name"`
	Description  string        `bson:"description,omitempty" json:"description,omitempty"`
	CreatedBy    string        `bson:"created_by" json:"created_by"`
	Members      []GroupMember `bson:"members" json:"members"`
	GroupImage   *Image        `bson:"group_image,omitempty" json:"group_image,omitempty"`
	TotalMembers int           `bson:"total_members" json:"total_members"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updated_at"`
}

// Member returns the membership entry for userID, if any.
func (g *Group) Member(userID string) (*GroupMember, bool) {
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			return &g.Members[i], true
		}
	}
	return nil, false
}

func (g *Group) IsAdmin(userID string) bool {
	m, ok := g.Member(userID)
	return ok && m.Role == RoleAdmin
}

func (g *Group) AdminCount() int {
	n := 0
	for i := range g.Members {
		if g.Members[i].Role == RoleAdmin {
			n++
		}
	}
	return n
}

// RemoveMember drops userID from the member list and recomputes TotalMembers.
// Returns false if userID was not a member.
func (g *Group) RemoveMember(userID string) bool {
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			g.TotalMembers = len(g.Members)
			return true
		}
	}
	return false
}
