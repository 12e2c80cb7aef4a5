package services

import (
	"context"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

// saveCredentials writes the stored record for creds. Keys left empty by the
// new credentials are removed so stale secrets do not survive a switch.
func saveCredentials(ctx context.Context, store driven.CredentialStore, creds domain.ProviderCredentials) error {
	record, err := domain.ToStoredRecord(creds)
	if err != nil {
		return err
	}

	// Provider key last: a partially written record is never picked up on
	// the next start.
	for _, key := range domain.StorageKeysFor(creds.Kind) {
		value := record[key]
		if value == "" {
			if err := store.Remove(ctx, key); err != nil {
				return err
			}
			continue
		}
		if err := store.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return store.Set(ctx, domain.StorageKeyDatabaseProvider, record[domain.StorageKeyDatabaseProvider])
}

// loadCredentials reads the stored record. ok is false when no provider is stored.
func loadCredentials(ctx context.Context, store driven.CredentialStore) (creds domain.ProviderCredentials, ok bool, err error) {
	raw, found := store.Get(ctx, domain.StorageKeyDatabaseProvider)
	if !found || raw == "" {
		return domain.ProviderCredentials{}, false, nil
	}

	kind, err := domain.ParseProviderKind(raw)
	if err != nil {
		return domain.ProviderCredentials{}, true, err
	}

	creds, err = domain.FromStoredRecord(kind, func(key domain.StorageKey) (string, bool) {
		return store.Get(ctx, key)
	})
	if err != nil {
		// Keep the kind so the status names the provider that failed
		return domain.ProviderCredentials{Kind: kind}, true, err
	}
	return creds, true, nil
}
