package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/karim-saade/daybook/internal/backup"
	"github.com/karim-saade/daybook/internal/service"
	"github.com/karim-saade/daybook/krypto"
)

var (
	flagExportOut   string
	flagImportOut   string
	flagUseRecovery bool
)

var exportCmd = &cobra.Command{
	Use:   "export <payload-file>",
	Short: "Encrypt a database export into a portable backup file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc *service.Service) error {
			plaintext, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read payload: %w", err)
			}

			pw, err := promptSecret("Passphrase")
			if err != nil {
				return err
			}
			if err := svc.UnlockWithPassphrase(pw); err != nil {
				return err
			}

			hdr, err := svc.ExportHeader()
			if err != nil {
				return err
			}
			payload, err := svc.EncryptBackup(plaintext)
			if err != nil {
				return err
			}

			out, err := os.OpenFile(flagExportOut, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
			if err != nil {
				return fmt.Errorf("create backup file: %w", err)
			}
			defer out.Close()

			f := backup.File{Header: hdr, Payload: payload}
			if err := f.Write(out); err != nil {
				return err
			}
			log.Infof("backup written to %s", flagExportOut)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <backup-file>",
	Short: "Decrypt a portable backup file",
	Long: `Decrypts a backup produced by export. The backup header carries its own
key-derivation parameters, so this works on any machine given the passphrase
or the recovery code that was current when the backup was made.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open backup file: %w", err)
		}
		defer in.Close()

		f, err := backup.Read(in)
		if err != nil {
			return err
		}

		kind := backup.SecretPassphrase
		label := "Passphrase"
		if flagUseRecovery {
			kind = backup.SecretRecoveryCode
			label = "Recovery code"
		}
		secret, err := promptSecret(label)
		if err != nil {
			return err
		}

		dek, err := backup.UnwrapDEK(f.Header, kind, secret)
		if err != nil {
			return err
		}
		defer krypto.Zeroize(dek)

		plaintext, err := backup.DecryptPayload(f.Payload, dek)
		if err != nil {
			return err
		}

		if flagImportOut == "" {
			return errors.New("--out is required for import")
		}
		if err := os.WriteFile(flagImportOut, plaintext, 0o600); err != nil {
			return fmt.Errorf("write decrypted payload: %w", err)
		}
		log.Infof("decrypted payload written to %s", flagImportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&flagExportOut, "out", "daybook-backup.json", "backup file to write")
	importCmd.Flags().StringVar(&flagImportOut, "out", "", "file to write the decrypted payload to")
	importCmd.Flags().BoolVar(&flagUseRecovery, "recovery", false, "unlock the backup with the recovery code instead of the passphrase")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
