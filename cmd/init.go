package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/anderschbe/password-strength-meter/internal/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter config file",
	Long: `Write the effective configuration to a config file, .pwmeterrc.yaml by
default. A .json path writes JSON. Existing files are kept unless --force
is given.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runInit(cmd.OutOrStdout(), args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")
}

func runInit(out io.Writer, args []string) error {
	path := ".pwmeterrc.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := config.SaveConfig(cfg, path); err != nil {
		return err
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "Wrote %s\n", path)
	}
	return nil
}
