package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/karim-saade/daybook/auth"
	"github.com/karim-saade/daybook/internal/service"
)

var flagCheckBreach bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Enable the vault for the first time",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *service.Service) error {
			enabled, err := svc.IsEnabled()
			if err != nil {
				return err
			}
			if enabled {
				return service.ErrAlreadyEnabled
			}

			pw, err := promptNewPassphrase("New vault passphrase")
			if err != nil {
				return err
			}

			opts := auth.DefaultOptions()
			opts.EnableHIBP = flagCheckBreach
			if err := auth.ValidatePassphraseAdvanced(cmd.Context(), pw, opts); err != nil {
				return err
			}

			code, err := svc.Enable(pw)
			if err != nil {
				return err
			}

			fmt.Fprintln(os.Stdout, color.GreenString("Vault enabled."))
			fmt.Fprintln(os.Stdout)
			fmt.Fprintln(os.Stdout, "Your recovery code (write it down, it will not be shown again):")
			fmt.Fprintln(os.Stdout)
			fmt.Fprintf(os.Stdout, "    %s\n", color.New(color.Bold).Sprint(code))
			return nil
		})
	},
}

func init() {
	initCmd.Flags().BoolVar(&flagCheckBreach, "check-breach", false,
		"check the passphrase against the HIBP breach corpus (sends a 5-char hash prefix)")
	rootCmd.AddCommand(initCmd)
}
