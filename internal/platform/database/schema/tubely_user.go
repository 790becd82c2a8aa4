// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the relational tables and columns used by the
// PostgreSQL repositories, so SQL is assembled from one definition.
package schema

import "strings"

// UserTable represents the 'users' table
type UserTable struct {
	Table        string
	ID           string
	Username     string
	Email        string
	Fullname     string
	Avatar       string
	CoverImage   string
	PasswordHash string
	RefreshToken string
	CreatedAt    string
	UpdatedAt    string
}

// User is the schema definition for users
var User = UserTable{
	Table:        "users",
	ID:           "id",
	Username:     "username",
	Email:        "email",
	Fullname:     "fullname",
	Avatar:       "avatar",
	CoverImage:   "cover_image",
	PasswordHash: "password_hash",
	RefreshToken: "refresh_token",
	CreatedAt:    "created_at",
	UpdatedAt:    "updated_at",
}

// Columns returns all standard column names
func (t UserTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.Fullname, t.Avatar, t.CoverImage,
		t.PasswordHash, t.RefreshToken, t.CreatedAt, t.UpdatedAt,
	}
}

// List joins column names for a SELECT list, qualifying them with alias when set.
func List(alias string, columns ...string) string {
	if alias == "" {
		return strings.Join(columns, ", ")
	}

	qualified := make([]string, len(columns))
	for i, column := range columns {
		qualified[i] = alias + "." + column
	}
	return strings.Join(qualified, ", ")
}
