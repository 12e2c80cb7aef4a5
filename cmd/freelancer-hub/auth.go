package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
)

var (
	loginEmail    string
	loginPassword string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate against the configured provider",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Long:  `Sign in with email and password. The password is read from stdin when --password is omitted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := loginPassword
		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		ctx := contextOrBackground(cmd)
		a, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.initialize(ctx, cfg); err != nil {
			return err
		}

		session, err := a.auth.SignIn(ctx, domain.SignInRequest{Email: loginEmail, Password: password})
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCredentials) {
				return errors.New("invalid email or password")
			}
			return err
		}
		fmt.Printf("Signed in as %s (%s)\n", session.User.Email, session.User.ID)

		return a.auth.SignOut(ctx)
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authLoginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	authLoginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	_ = authLoginCmd.MarkFlagRequired("email")
}
