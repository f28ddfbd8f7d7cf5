package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/kvi/internal/config"
	"github.com/oakwood-commons/kvi/internal/formatter"
	"github.com/oakwood-commons/kvi/internal/render"
	"github.com/oakwood-commons/kvi/pkg/inspector"
	"github.com/oakwood-commons/kvi/pkg/settings"
)

// outputStyles colors text output only when it goes to a terminal.
func outputStyles(w io.Writer, cfg config.File, run *settings.Run) render.Styles {
	if run.NoColor || os.Getenv("NO_COLOR") != "" || !isTerminal(w) {
		return render.Styles{Indent: cfg.Indent()}
	}
	theme, err := interactiveTheme(cfg, run)
	if err != nil {
		return render.Styles{Indent: cfg.Indent()}
	}
	return theme.Lines
}

// treeOptions builds the tree output settings from the flags. With no
// explicit limit, values are cut to half the output width on a terminal.
func treeOptions(w io.Writer, in *inspector.Inspector) formatter.TreeOptions {
	maxLen := treeMaxStringLen
	if maxLen == 0 {
		cols := width
		if cols <= 0 {
			cols = terminalWidth(w)
		}
		if cols > 0 {
			maxLen = max(cols/2, 20)
		}
	}
	return formatter.TreeOptions{
		NoValues:     treeNoValues,
		MaxDepth:     treeMaxDepth,
		MaxStringLen: maxLen,
		ArrayStyle:   arrayStyle,
		Rules:        in.Rules(),
	}
}

type versionData struct {
	Name      string `json:"name" yaml:"name"`
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"buildTime" yaml:"buildTime"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

func printVersion(w io.Writer, format string) error {
	vi := settings.VersionInformation
	data := versionData{
		Name:      settings.CliBinaryName,
		Version:   vi.BuildVersion,
		Commit:    vi.Commit,
		BuildTime: vi.BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	switch format {
	case "", "text":
		_, err := fmt.Fprintf(w, "%s %s (commit %s, built %s, %s %s)\n",
			data.Name, data.Version, data.Commit, data.BuildTime, data.GoVersion, data.Platform)
		return err
	case "json":
		out, err := json.Marshal(data, jsontext.WithIndent("  "))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "yaml":
		out, err := yaml.Marshal(data)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return usageErrorf("invalid output for version: %s (use text|json|yaml)", format)
	}
}
