package main

import (
	"github.com/spf13/cobra"

	"github.com/karim-saade/daybook/internal/logging"
	"github.com/karim-saade/daybook/internal/service"
	"github.com/karim-saade/daybook/store"
)

var (
	flagVaultDir string
	flagDBPath   string
	flagVerbose  bool
	flagDebug    bool

	log logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vaultctl",
	Short: "Manage the Daybook private vault",
	Long: `vaultctl manages the envelope-encryption vault that protects sensitive
Daybook records at rest and in exported backups.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logging.Logger{Verbose: flagVerbose, Debug: flagDebug}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagVaultDir, "vault-dir", "./daybook-vault",
		"directory for file-backed vault metadata")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "",
		"path to the Daybook SQLite database (stores metadata in its settings table instead of files)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "show info output")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "show debug output")
}

// openKV picks the persistence collaborator from the flags. The returned
// closer is nil for the file store.
func openKV() (store.KV, func() error, error) {
	if flagDBPath != "" {
		kv, err := store.OpenSQLiteKV(flagDBPath)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	}
	kv, err := store.NewFileKV(flagVaultDir)
	if err != nil {
		return nil, nil, err
	}
	return kv, nil, nil
}

// withService runs fn with a service over the configured store, locking the
// session and releasing the store afterwards.
func withService(fn func(s *service.Service) error) error {
	kv, closer, err := openKV()
	if err != nil {
		return err
	}
	svc := service.New(kv, service.WithLogger(log))
	defer svc.Close()
	if closer != nil {
		defer closer()
	}
	return fn(svc)
}
