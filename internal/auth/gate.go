// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"plume/internal/model"
)

// Gate decides admin privilege. There is exactly one admin, identified by
// the configured email address; no role column exists.
type Gate struct {
	adminEmail string
}

// NewGate returns a Gate for the configured admin address.
func NewGate(adminEmail string) *Gate {
	return &Gate{adminEmail: adminEmail}
}

// IsAdmin reports whether the user is the configured admin. The comparison
// is an exact match on the stored email.
func (g *Gate) IsAdmin(user *model.User) bool {
	if user == nil {
		return false
	}
	return user.Email == g.adminEmail
}

// AdminEmail returns the configured admin address.
func (g *Gate) AdminEmail() string {
	return g.adminEmail
}
