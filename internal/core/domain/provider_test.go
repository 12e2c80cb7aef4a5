package domain

import (
	"errors"
	"testing"
)

func TestParseProviderKind(t *testing.T) {
	tests := []struct {
		input   string
		want    ProviderKind
		wantErr bool
	}{
		{"supabase", ProviderKindSupabase, false},
		{" Supabase ", ProviderKindSupabase, false},
		{"firebase", ProviderKindFirebase, false},
		{"MYSQL", ProviderKindMySQL, false},
		{"", "", true},
		{"postgres", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseProviderKind(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidProvider) {
					t.Fatalf("expected ErrInvalidProvider, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestAllProviderKinds(t *testing.T) {
	kinds := AllProviderKinds()
	if len(kinds) != 3 {
		t.Fatalf("expected 3 provider kinds, got %d", len(kinds))
	}
	for _, k := range kinds {
		if !k.IsValid() {
			t.Errorf("%s should be valid", k)
		}
		if k.DisplayName() == string(k) {
			t.Errorf("%s should have a display name", k)
		}
	}
}
