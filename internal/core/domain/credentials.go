package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultMySQLPort is used when no port is configured for the relational backend
const DefaultMySQLPort = 3306

// SupabaseCredentials holds the connection parameters of a hosted Supabase project
type SupabaseCredentials struct {
	URL            string `json:"url" yaml:"url"`
	AnonKey        string `json:"anon_key" yaml:"anon_key"`                                     // Restricted (public) key
	ServiceRoleKey string `json:"service_role_key,omitempty" yaml:"service_role_key,omitempty"` // Elevated key, optional
}

// FirebaseCredentials holds the web config of a Firebase project
type FirebaseCredentials struct {
	APIKey            string `json:"api_key" yaml:"api_key"`
	AuthDomain        string `json:"auth_domain" yaml:"auth_domain"`
	ProjectID         string `json:"project_id" yaml:"project_id"`
	StorageBucket     string `json:"storage_bucket" yaml:"storage_bucket"`
	MessagingSenderID string `json:"messaging_sender_id" yaml:"messaging_sender_id"`
	AppID             string `json:"app_id" yaml:"app_id"`
}

// MySQLCredentials holds the parameters of a relational MySQL backend
type MySQLCredentials struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Database string `json:"database" yaml:"database"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	SSL      bool   `json:"ssl" yaml:"ssl"`
}

// ProviderCredentials is a tagged union keyed by Kind.
// Only the member matching Kind is meaningful; the others must be nil.
type ProviderCredentials struct {
	Kind     ProviderKind         `json:"provider" yaml:"provider"`
	Supabase *SupabaseCredentials `json:"supabase,omitempty" yaml:"supabase,omitempty"`
	Firebase *FirebaseCredentials `json:"firebase,omitempty" yaml:"firebase,omitempty"`
	MySQL    *MySQLCredentials    `json:"mysql,omitempty" yaml:"mysql,omitempty"`
}

// NewSupabaseCredentials builds credentials for the supabase kind
func NewSupabaseCredentials(url, anonKey, serviceRoleKey string) ProviderCredentials {
	return ProviderCredentials{
		Kind: ProviderKindSupabase,
		Supabase: &SupabaseCredentials{
			URL:            url,
			AnonKey:        anonKey,
			ServiceRoleKey: serviceRoleKey,
		},
	}
}

// Validate checks the union shape and that every required field of Kind is non-empty.
// Missing fields are reported together.
func (c ProviderCredentials) Validate() error {
	if !c.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidProvider, c.Kind)
	}

	if c.members() > 1 {
		return fmt.Errorf("%w: credentials for more than one provider supplied", ErrInvalidInput)
	}

	var missing []string
	switch c.Kind {
	case ProviderKindSupabase:
		if c.Supabase == nil {
			return fmt.Errorf("%w: no supabase credentials", ErrMissingCredentials)
		}
		missing = requireFields(map[string]string{
			"url":      c.Supabase.URL,
			"anon_key": c.Supabase.AnonKey,
		})
	case ProviderKindFirebase:
		if c.Firebase == nil {
			return fmt.Errorf("%w: no firebase credentials", ErrMissingCredentials)
		}
		missing = requireFields(map[string]string{
			"api_key":     c.Firebase.APIKey,
			"auth_domain": c.Firebase.AuthDomain,
			"project_id":  c.Firebase.ProjectID,
			"app_id":      c.Firebase.AppID,
		})
	case ProviderKindMySQL:
		if c.MySQL == nil {
			return fmt.Errorf("%w: no mysql credentials", ErrMissingCredentials)
		}
		missing = requireFields(map[string]string{
			"host":     c.MySQL.Host,
			"database": c.MySQL.Database,
			"username": c.MySQL.Username,
		})
	}

	if len(missing) > 0 {
		errs := make([]error, 0, len(missing))
		for _, field := range missing {
			errs = append(errs, fmt.Errorf("%w: %s.%s", ErrMissingCredentials, c.Kind, field))
		}
		return errors.Join(errs...)
	}
	return nil
}

// HasElevated reports whether an elevated credential is present
func (c ProviderCredentials) HasElevated() bool {
	return c.Kind == ProviderKindSupabase && c.Supabase != nil && strings.TrimSpace(c.Supabase.ServiceRoleKey) != ""
}

// Summary returns a secret-free view suitable for logs and API responses
func (c ProviderCredentials) Summary() CredentialSummary {
	s := CredentialSummary{
		Kind:        c.Kind,
		HasElevated: c.HasElevated(),
	}
	switch {
	case c.Supabase != nil:
		s.Endpoint = c.Supabase.URL
	case c.Firebase != nil:
		s.Endpoint = c.Firebase.AuthDomain
	case c.MySQL != nil:
		port := c.MySQL.Port
		if port == 0 {
			port = DefaultMySQLPort
		}
		s.Endpoint = fmt.Sprintf("%s:%d/%s", c.MySQL.Host, port, c.MySQL.Database)
	}
	return s
}

// CredentialSummary provides a safe view without sensitive data
type CredentialSummary struct {
	Kind        ProviderKind `json:"provider"`
	Endpoint    string       `json:"endpoint,omitempty"`
	HasElevated bool         `json:"has_elevated"`
}

func (c ProviderCredentials) members() int {
	n := 0
	if c.Supabase != nil {
		n++
	}
	if c.Firebase != nil {
		n++
	}
	if c.MySQL != nil {
		n++
	}
	return n
}

// requireFields returns the sorted names of empty fields
func requireFields(fields map[string]string) []string {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
