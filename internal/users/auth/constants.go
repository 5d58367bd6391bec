// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Authentication Constraints

const (
	// MinPasswordLength is the shortest password accepted at sign-up.
	MinPasswordLength = 8

	// MaxPasswordLength matches bcrypt's 72-byte input ceiling.
	MaxPasswordLength = 72

	// MaxNameLength bounds the display name stored on the account.
	MaxNameLength = 120

	// CredentialProviderID marks an accounts row that holds an email/password credential.
	CredentialProviderID = "credential"
)
