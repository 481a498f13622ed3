package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/karim-saade/daybook/internal/service"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the vault is enabled",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *service.Service) error {
			enabled, err := svc.IsEnabled()
			if err != nil {
				return err
			}
			if enabled {
				fmt.Fprintln(os.Stdout, "vault: enabled (locked; every process starts locked)")
			} else {
				fmt.Fprintln(os.Stdout, "vault: not enabled")
			}
			return nil
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a passphrase or recovery code without changing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *service.Service) error {
			secret, err := promptSecret("Passphrase or recovery code")
			if err != nil {
				return err
			}
			if err := svc.UnlockWithPassphrase(secret); err == nil {
				fmt.Fprintln(os.Stdout, "passphrase ok")
				return nil
			}
			if err := svc.UnlockWithRecoveryCode(secret); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "recovery code ok")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(verifyCmd)
}
