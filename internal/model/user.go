package model

import "time"

type User struct {
	ID          int64       `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Password    string      `json:"-"`
	CreatedAt   time.Time   `json:"created_at"`
	Groups      []UserGroup `json:"groups,omitempty"`
	Authorities []Authority `json:"authorities,omitempty"`
}

// UserGroup is a group as seen from one of its members: the ids of the
// resources it owns, resolved at load time.
type UserGroup struct {
	GroupID         int64   `json:"group_id"`
	Name            string  `json:"name"`
	CreatorID       int64   `json:"creator_id"`
	PantryID        *int64  `json:"pantry_id"`
	ShoppingListIDs []int64 `json:"shopping_list_ids"`
}

// Group returns the membership for groupID, or nil if the user is not a member.
func (u *User) Group(groupID int64) *UserGroup {
	for i := range u.Groups {
		if u.Groups[i].GroupID == groupID {
			return &u.Groups[i]
		}
	}
	return nil
}

// GroupWithPantry returns the membership whose group owns pantryID.
func (u *User) GroupWithPantry(pantryID int64) *UserGroup {
	for i := range u.Groups {
		if p := u.Groups[i].PantryID; p != nil && *p == pantryID {
			return &u.Groups[i]
		}
	}
	return nil
}

// GroupWithShoppingList returns the membership whose group owns listID.
func (u *User) GroupWithShoppingList(listID int64) *UserGroup {
	for i := range u.Groups {
		for _, id := range u.Groups[i].ShoppingListIDs {
			if id == listID {
				return &u.Groups[i]
			}
		}
	}
	return nil
}

func (u *User) GroupIDs() []int64 {
	ids := make([]int64, 0, len(u.Groups))
	for _, g := range u.Groups {
		ids = append(ids, g.GroupID)
	}
	return ids
}

// CapabilitiesIn lists the capabilities u holds in groupID.
func (u *User) CapabilitiesIn(groupID int64) []Capability {
	var caps []Capability
	for _, a := range u.Authorities {
		if a.GroupID == groupID {
			caps = append(caps, a.Capability)
		}
	}
	return caps
}
