// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

// User roles. The first registered account is created as admin,
// every later account as member.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// IsAdmin returns true if the user has the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
