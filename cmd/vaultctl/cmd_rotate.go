package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/karim-saade/daybook/internal/service"
)

var changePassphraseCmd = &cobra.Command{
	Use:   "change-passphrase",
	Short: "Rotate the vault passphrase",
	Long: `Rotates the passphrase wrap of the data encryption key. The recovery
code keeps working unchanged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *service.Service) error {
			oldPw, err := promptSecret("Current passphrase")
			if err != nil {
				return err
			}
			newPw, err := promptNewPassphrase("New passphrase")
			if err != nil {
				return err
			}
			if err := svc.ChangePassphrase(oldPw, newPw); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, color.GreenString("Passphrase changed."))
			return nil
		})
	},
}

var regenRecoveryCmd = &cobra.Command{
	Use:   "regen-recovery",
	Short: "Generate a new recovery code, invalidating the old one",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *service.Service) error {
			pw, err := promptSecret("Passphrase")
			if err != nil {
				return err
			}
			if err := svc.UnlockWithPassphrase(pw); err != nil {
				return err
			}

			code, err := svc.RegenerateRecoveryCode()
			if err != nil {
				return err
			}

			fmt.Fprintln(os.Stdout, "New recovery code (the previous one no longer works):")
			fmt.Fprintln(os.Stdout)
			fmt.Fprintf(os.Stdout, "    %s\n", color.New(color.Bold).Sprint(code))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(changePassphraseCmd)
	rootCmd.AddCommand(regenRecoveryCmd)
}
