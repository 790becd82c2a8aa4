// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ident generates and checks the public identifiers of stored records.
//
// Identifiers are 24-character hex ObjectIDs on every backend, so a URL minted
// against the document store stays valid against the relational one.
package ident

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// New returns a fresh identifier.
func New() string {
	return primitive.NewObjectID().Hex()
}

// Valid reports whether id is a well-formed identifier.
func Valid(id string) bool {
	return primitive.IsValidObjectID(id)
}
