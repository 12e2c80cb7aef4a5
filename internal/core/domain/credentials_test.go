package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestProviderCredentials_Validate(t *testing.T) {
	tests := []struct {
		name    string
		creds   ProviderCredentials
		wantErr error
	}{
		{
			name:  "supabase valid",
			creds: NewSupabaseCredentials("https://x.example/", "abc123", ""),
		},
		{
			name:  "supabase with service key",
			creds: NewSupabaseCredentials("https://x.example/", "abc123", "service"),
		},
		{
			name:    "supabase missing url",
			creds:   NewSupabaseCredentials("", "abc123", ""),
			wantErr: ErrMissingCredentials,
		},
		{
			name:    "supabase whitespace anon key",
			creds:   NewSupabaseCredentials("https://x.example/", "   ", ""),
			wantErr: ErrMissingCredentials,
		},
		{
			name:    "supabase member missing",
			creds:   ProviderCredentials{Kind: ProviderKindSupabase},
			wantErr: ErrMissingCredentials,
		},
		{
			name:    "unknown kind",
			creds:   ProviderCredentials{Kind: "oracle"},
			wantErr: ErrInvalidProvider,
		},
		{
			name: "two members",
			creds: ProviderCredentials{
				Kind:     ProviderKindSupabase,
				Supabase: &SupabaseCredentials{URL: "u", AnonKey: "k"},
				MySQL:    &MySQLCredentials{Host: "h"},
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "mysql valid",
			creds: ProviderCredentials{
				Kind:  ProviderKindMySQL,
				MySQL: &MySQLCredentials{Host: "db", Database: "hub", Username: "root"},
			},
		},
		{
			name: "firebase missing project",
			creds: ProviderCredentials{
				Kind:     ProviderKindFirebase,
				Firebase: &FirebaseCredentials{APIKey: "k", AuthDomain: "d", AppID: "a"},
			},
			wantErr: ErrMissingCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestProviderCredentials_Validate_ReportsEveryMissingField(t *testing.T) {
	err := NewSupabaseCredentials("", "", "").Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "supabase.url") || !strings.Contains(msg, "supabase.anon_key") {
		t.Errorf("expected both fields in error, got %q", msg)
	}
}

func TestProviderCredentials_HasElevated(t *testing.T) {
	if NewSupabaseCredentials("u", "k", "").HasElevated() {
		t.Error("expected no elevated access without service key")
	}
	if !NewSupabaseCredentials("u", "k", "s").HasElevated() {
		t.Error("expected elevated access with service key")
	}
}

func TestProviderCredentials_SummaryHasNoSecrets(t *testing.T) {
	creds := NewSupabaseCredentials("https://x.example/", "anon-secret", "service-secret")
	s := creds.Summary()

	if s.Kind != ProviderKindSupabase {
		t.Errorf("expected kind supabase, got %s", s.Kind)
	}
	if s.Endpoint != "https://x.example/" {
		t.Errorf("unexpected endpoint %q", s.Endpoint)
	}
	if !s.HasElevated {
		t.Error("expected HasElevated")
	}

	mysql := ProviderCredentials{Kind: ProviderKindMySQL, MySQL: &MySQLCredentials{Host: "db", Database: "hub", Password: "pw"}}
	if got := mysql.Summary().Endpoint; got != "db:3306/hub" {
		t.Errorf("expected default port in endpoint, got %q", got)
	}
}
