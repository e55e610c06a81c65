package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the vox command tree.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "vox",
		Short: "Reading assistant with synchronized speech playback",
		Long: `Vox reads documents aloud, one word at a time, highlighting each word
as it is spoken. PDFs can be processed locally or by the vox service
(vox serve), which extracts per-page text, word positions, page images,
and repeated header/footer lines.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.vox/config.yaml)")

	cmd.AddCommand(newReadCmd(&cfgFile))
	cmd.AddCommand(newServeCmd(&cfgFile))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
