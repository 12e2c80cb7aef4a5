package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
)

var (
	providerKind           string
	providerURL            string
	providerAnonKey        string
	providerServiceRoleKey string
)

var providerCmd = &cobra.Command{
	Use:   "provider",
	Short: "Manage the database provider",
}

var providerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(contextOrBackground(cmd), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KIND\tNAME\tAVAILABLE")
		for _, info := range a.factory.Providers() {
			fmt.Fprintf(w, "%s\t%s\t%t\n", info.Kind, info.Name, info.Available)
		}
		return w.Flush()
	},
}

var providerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the configured provider and connection state",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := contextOrBackground(cmd)
		a, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		// The error is part of the reported status
		_ = a.initialize(ctx, cfg)

		status := a.providers.Status()
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			domain.ConnectionStatus
			Store string `json:"store"`
		}{status, a.store.Backend()})
	},
}

var providerSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Connect to a provider and save its credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := providerFlagCredentials()
		if err != nil {
			return err
		}

		ctx := contextOrBackground(cmd)
		a, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.providers.Switch(ctx, creds); err != nil {
			return fmt.Errorf("failed to switch provider: %w", err)
		}

		status := a.providers.Status()
		fmt.Printf("Connected to %s (elevated access: %t)\n", status.Kind.DisplayName(), status.HasElevatedAccess)
		return nil
	},
}

var providerTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Test provider credentials without saving them",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := providerFlagCredentials()
		if err != nil {
			return err
		}

		ctx := contextOrBackground(cmd)
		a, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.providers.TestConnection(ctx, creds)
		if err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("connection test failed: %s", result.Message)
		}
		fmt.Println(result.Message)
		return nil
	},
}

var providerResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove saved provider credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := contextOrBackground(cmd)
		a, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.providers.Reset(ctx); err != nil {
			return err
		}
		fmt.Println("Provider credentials removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(providerCmd)
	providerCmd.AddCommand(providerListCmd, providerStatusCmd, providerSetCmd, providerTestCmd, providerResetCmd)

	for _, c := range []*cobra.Command{providerSetCmd, providerTestCmd} {
		c.Flags().StringVar(&providerKind, "kind", string(domain.ProviderKindSupabase), "Provider kind (supabase, firebase, mysql)")
		c.Flags().StringVar(&providerURL, "url", "", "Project URL")
		c.Flags().StringVar(&providerAnonKey, "anon-key", "", "Public (anon) key")
		c.Flags().StringVar(&providerServiceRoleKey, "service-role-key", "", "Elevated key (optional)")
	}
}

// providerFlagCredentials builds credentials from the set/test flags
func providerFlagCredentials() (domain.ProviderCredentials, error) {
	kind, err := domain.ParseProviderKind(providerKind)
	if err != nil {
		return domain.ProviderCredentials{}, err
	}
	if kind != domain.ProviderKindSupabase {
		return domain.ProviderCredentials{}, fmt.Errorf("%w: %s", domain.ErrProviderNotSupported, kind)
	}
	return domain.NewSupabaseCredentials(providerURL, providerAnonKey, providerServiceRoleKey), nil
}
