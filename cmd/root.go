package cmd

import (
	"fmt"
	"os"
	"path"
	goruntime "runtime"

	"github.com/arenadata/sealctl/internal/config"
	"github.com/arenadata/sealctl/internal/ui"
	"github.com/arenadata/sealctl/pkg/errdefs"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "1.0.0-dev"

func newRootCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "sealctl",
		Short: "Manage sealed secret manifests committed to the repository",
		Long: `Fetch the sealing key of an environment and create, update or delete the sealed
secret manifests stored under its secrets directory.`,
		Example: `  sealctl -e prod -o fetch-seal-key
  sealctl -e prod -n payments -s db-credentials -o create --from-literal user=admin --from-file password=./pass.txt
  sealctl -e prod -n payments -s db-credentials -o update --from-literal token=abc -d password
  sealctl -e prod -n payments -s tls-cert -o create --secret-type tls --cert-path tls.crt --key-path tls.key
  sealctl -e prod -n payments -s db-credentials -o delete`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if getBool(cmd, "version") {
				cmd.Println(version)
				return nil
			}
			return runLifecycle(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose mode")
	cmd.PersistentFlags().String("config", "", "Config file (default <root>/"+config.DefaultFile+")")
	cmd.PersistentFlags().String("root", "", "Repository root (default is the git work tree of the current directory)")
	cmd.Flags().Bool("version", false, "Print the version and exit")
	addLifecycleFlags(cmd.Flags())

	cmd.AddCommand(newKeyCmd(), newShowCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s %s: %s\n", ui.Error.Sprint("✗"), errdefs.Kind(err), err)
		os.Exit(1)
	}
}

func init() {
	log.SetReportCaller(true)
	formatter := &log.TextFormatter{
		TimestampFormat:        "20060102150405",
		FullTimestamp:          true,
		DisableLevelTruncation: true,
		CallerPrettyfier: func(f *goruntime.Frame) (string, string) {
			return "", fmt.Sprintf(" %s:%d", path.Base(f.File), f.Line)
		},
	}
	log.SetFormatter(formatter)
}

func getBool(cmd *cobra.Command, key string) bool {
	ok, _ := cmd.Flags().GetBool(key)
	return ok
}

func getString(cmd *cobra.Command, key string) string {
	s, _ := cmd.Flags().GetString(key)
	return s
}

func getStrings(cmd *cobra.Command, key string) []string {
	s, _ := cmd.Flags().GetStringArray(key)
	return s
}
