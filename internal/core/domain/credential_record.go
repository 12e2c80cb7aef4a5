package domain

import "fmt"

// StorageKey names a persisted credential entry. Stores add their namespace prefix.
type StorageKey string

const (
	StorageKeyDatabaseProvider       StorageKey = "database_provider"
	StorageKeySupabaseURL            StorageKey = "supabase_url"
	StorageKeySupabaseAnonKey        StorageKey = "supabase_anon_key"
	StorageKeySupabaseServiceRoleKey StorageKey = "supabase_service_role_key"
)

// AllStorageKeys returns every key a credential store may hold
func AllStorageKeys() []StorageKey {
	return []StorageKey{
		StorageKeyDatabaseProvider,
		StorageKeySupabaseURL,
		StorageKeySupabaseAnonKey,
		StorageKeySupabaseServiceRoleKey,
	}
}

// storageKeysByKind lists the credential keys each persistable kind declares
var storageKeysByKind = map[ProviderKind][]StorageKey{
	ProviderKindSupabase: {
		StorageKeySupabaseURL,
		StorageKeySupabaseAnonKey,
		StorageKeySupabaseServiceRoleKey,
	},
}

// StorageKeysFor returns the keys declared by kind, excluding the provider key
func StorageKeysFor(kind ProviderKind) []StorageKey {
	return storageKeysByKind[kind]
}

// StoredCredentialRecord is the persisted form of ProviderCredentials.
// Empty values mean "remove this key".
type StoredCredentialRecord map[StorageKey]string

// ToStoredRecord flattens credentials into the keys their kind declares.
// Kinds with no persisted layout fail closed.
func ToStoredRecord(c ProviderCredentials) (StoredCredentialRecord, error) {
	if _, ok := storageKeysByKind[c.Kind]; !ok {
		return nil, fmt.Errorf("%w: %s credentials cannot be persisted", ErrProviderNotSupported, c.Kind)
	}
	if c.Supabase == nil {
		return nil, fmt.Errorf("%w: no supabase credentials", ErrMissingCredentials)
	}

	return StoredCredentialRecord{
		StorageKeyDatabaseProvider:       string(c.Kind),
		StorageKeySupabaseURL:            c.Supabase.URL,
		StorageKeySupabaseAnonKey:        c.Supabase.AnonKey,
		StorageKeySupabaseServiceRoleKey: c.Supabase.ServiceRoleKey,
	}, nil
}

// FromStoredRecord rebuilds credentials for kind using the lookup function.
// Absent keys yield empty fields; validation is left to the caller.
func FromStoredRecord(kind ProviderKind, get func(StorageKey) (string, bool)) (ProviderCredentials, error) {
	switch kind {
	case ProviderKindSupabase:
		url, _ := get(StorageKeySupabaseURL)
		anon, _ := get(StorageKeySupabaseAnonKey)
		service, _ := get(StorageKeySupabaseServiceRoleKey)
		return NewSupabaseCredentials(url, anon, service), nil
	default:
		if !kind.IsValid() {
			return ProviderCredentials{}, fmt.Errorf("%w: %q", ErrInvalidProvider, kind)
		}
		return ProviderCredentials{}, fmt.Errorf("%w: %s", ErrProviderNotSupported, kind)
	}
}
