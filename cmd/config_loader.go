package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/kvi/internal/config"
)

// configLoader centralizes config resolution so commands share the same
// lookup and merge rules.
type configLoader struct {
	resolve func(explicit string) string
	load    func(path string) (config.File, error)
}

var cfgLoader = configLoader{resolve: config.ResolvePath, load: config.Load}

func loadConfig(explicit string) (config.File, error) {
	return cfgLoader.loadConfig(explicit)
}

func (l configLoader) loadConfig(explicit string) (config.File, error) {
	path := l.resolve(explicit)
	cfg, err := l.load(path)
	if err != nil {
		return config.File{}, err
	}
	return cfg, nil
}

// configCmd prints the merged configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the merged kvi configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(configFile)
		if err != nil {
			return err
		}
		return writeConfig(cmd.OutOrStdout(), cfg, configOutput)
	},
}

var configThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(configFile)
		if err != nil {
			return err
		}
		for _, name := range cfg.ThemeNames() {
			marker := " "
			if name == cfg.UI.Theme.Default {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
		}
		return nil
	},
}

var configDefaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Print the built-in default configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := cmd.OutOrStdout().Write(config.DefaultYAML())
		return err
	},
}

func writeConfig(w io.Writer, cfg config.File, format string) error {
	switch format {
	case "", "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		_, err = io.WriteString(w, addConfigComments(string(data)))
		return err
	case "json":
		data, err := json.Marshal(cfg, jsontext.WithIndent("  "), json.Deterministic(true))
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return usageErrorf("invalid output for config: %s (use yaml|json)", format)
	}
}

// addConfigComments annotates the behavior keys whose values are enums.
func addConfigComments(yml string) string {
	inline := func(find, repl string) {
		yml = strings.Replace(yml, find, repl, 1)
	}
	inline("        highlight: prefix\n", "        highlight: prefix # prefix|segment\n")
	inline("        highlight: segment\n", "        highlight: segment # prefix|segment\n")
	inline("        watch_debounce: ", "        # delay before a watched file is reloaded\n        watch_debounce: ")
	return yml
}

func init() { //nolint:gochecknoinits
	configCmd.Flags().StringVarP(&configOutput, "output", "o", "yaml", "output format: yaml|json")
	configCmd.AddCommand(configThemesCmd, configDefaultCmd)
}
