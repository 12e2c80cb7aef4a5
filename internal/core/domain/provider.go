package domain

import (
	"fmt"
	"strings"
)

// ProviderKind identifies the backend family that supplies persistence, auth and storage
type ProviderKind string

const (
	ProviderKindSupabase ProviderKind = "supabase"
	ProviderKindFirebase ProviderKind = "firebase"
	ProviderKindMySQL    ProviderKind = "mysql"
)

// ProviderInfo provides metadata about a provider kind
type ProviderInfo struct {
	Kind        ProviderKind `json:"kind"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Available   bool         `json:"available"` // Whether an adapter is implemented
}

// AllProviderKinds returns every declared provider kind
func AllProviderKinds() []ProviderKind {
	return []ProviderKind{
		ProviderKindSupabase,
		ProviderKindFirebase,
		ProviderKindMySQL,
	}
}

// ParseProviderKind normalises and validates a provider tag
func ParseProviderKind(s string) (ProviderKind, error) {
	kind := ProviderKind(strings.ToLower(strings.TrimSpace(s)))
	if !kind.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidProvider, s)
	}
	return kind, nil
}

// IsValid returns true if the kind is one of the declared kinds
func (k ProviderKind) IsValid() bool {
	switch k {
	case ProviderKindSupabase, ProviderKindFirebase, ProviderKindMySQL:
		return true
	}
	return false
}

// DisplayName returns a human readable name
func (k ProviderKind) DisplayName() string {
	switch k {
	case ProviderKindSupabase:
		return "Supabase"
	case ProviderKindFirebase:
		return "Firebase"
	case ProviderKindMySQL:
		return "MySQL"
	default:
		return string(k)
	}
}

// Privilege selects which credential an operation runs with
type Privilege string

const (
	// PrivilegeRestricted uses the public (anon) credential
	PrivilegeRestricted Privilege = "restricted"

	// PrivilegeElevated uses the service credential when one is configured
	PrivilegeElevated Privilege = "elevated"
)
