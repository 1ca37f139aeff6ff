package user

import (
	"sort"
	"strings"

	"github.com/trezcool/scola/core"
)

var defaultOrdering = []core.Ordering{{Field: "created_at"}, {Field: "name", Ascending: true}}

// Filter applies AND operation on available QueryFilter fields.
// QueryFilter.Search does a case-insensitive match on one of User.Name or User.Email.
func Filter(users []User, filter *QueryFilter) []User {
	if filter == nil || filter.IsEmpty() {
		return users
	}
	search := strings.ToLower(filter.Search)

	filtered := make([]User, 0, len(users))
	for _, usr := range users {
		if search != "" &&
			!strings.Contains(strings.ToLower(usr.Name), search) &&
			!strings.Contains(usr.Email, search) {
			continue
		}
		if filter.Roles != nil && !IsValidRole(usr.Role, filter.Roles...) {
			continue
		}
		if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
			continue
		}
		if !core.IsAllGrades(filter.Grade) && usr.Grade != filter.Grade {
			continue
		}
		filtered = append(filtered, usr)
	}
	return filtered
}

// Sort orders users in place. Unknown fields are ignored; defaults to `-created_at,name`.
func Sort(users []User, ordering []core.Ordering) {
	if len(ordering) == 0 {
		ordering = defaultOrdering
	}
	sort.SliceStable(users, func(i, j int) bool {
		for _, ord := range ordering {
			c := compare(users[i], users[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func compare(a, b User, field string) int {
	switch field {
	case "name":
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case "email":
		return strings.Compare(a.Email, b.Email)
	case "role":
		return strings.Compare(a.Role, b.Role)
	case "grade":
		return strings.Compare(a.Grade, b.Grade)
	case "is_active":
		switch {
		case a.IsActive == b.IsActive:
			return 0
		case b.IsActive:
			return -1
		default:
			return 1
		}
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "last_login":
		return a.LastLogin.Compare(b.LastLogin)
	}
	return 0
}
