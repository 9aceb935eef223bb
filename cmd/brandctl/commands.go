package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/HerbHall/brandkit/internal/color"
	"github.com/HerbHall/brandkit/internal/settings"
	"github.com/HerbHall/brandkit/pkg/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active branding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			cfg, err := opts.client().Get(ctx)
			if err != nil {
				return err
			}
			renderTheme(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

// setFlags holds the raw values of the set command. Only flags the user
// actually passed end up in the patch.
type setFlags struct {
	appName    string
	primary    string
	accent     string
	sidebar    string
	logoURL    string
	faviconURL string
	customCSS  string
	cssFile    string
}

func newSetCommand(opts *rootOptions) *cobra.Command {
	f := &setFlags{}
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change branding fields",
		Long: `Change one or more branding fields. Colors accept "#rrggbb" hex or
"<h> <s>% <l>%" triples; hex is converted before sending.

Examples:
  brandctl set --primary "#ff0000"
  brandctl set --accent "45 90% 50%" --sidebar "152 35% 15%"
  brandctl set --custom-css-file overrides.css`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			patch, err := buildPatch(cmd, f)
			if err != nil {
				return err
			}
			if patch.IsEmpty() {
				return errors.New("nothing to change; pass at least one field flag")
			}

			ctx, cancel := opts.context()
			defer cancel()

			res, err := opts.client().Update(ctx, patch)
			if err != nil {
				return err
			}
			printUpdate(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.appName, "app-name", "", "application name")
	cmd.Flags().StringVar(&f.primary, "primary", "", "primary color")
	cmd.Flags().StringVar(&f.accent, "accent", "", "accent color")
	cmd.Flags().StringVar(&f.sidebar, "sidebar", "", "sidebar color")
	cmd.Flags().StringVar(&f.logoURL, "logo-url", "", "logo URL (empty clears)")
	cmd.Flags().StringVar(&f.faviconURL, "favicon-url", "", "favicon URL (empty clears)")
	cmd.Flags().StringVar(&f.customCSS, "custom-css", "", "custom CSS (empty clears)")
	cmd.Flags().StringVar(&f.cssFile, "custom-css-file", "", "read custom CSS from a file")
	cmd.MarkFlagsMutuallyExclusive("custom-css", "custom-css-file")
	return cmd
}

func buildPatch(cmd *cobra.Command, f *setFlags) (models.ThemePatch, error) {
	var p models.ThemePatch
	changed := cmd.Flags().Changed

	if changed("app-name") {
		p.AppName = &f.appName
	}
	for _, c := range []struct {
		flag  string
		value string
		dst   **string
	}{
		{"primary", f.primary, &p.PrimaryColor},
		{"accent", f.accent, &p.AccentColor},
		{"sidebar", f.sidebar, &p.SidebarColor},
	} {
		if !changed(c.flag) {
			continue
		}
		triple, err := color.ToTriple(c.value)
		if err != nil {
			return models.ThemePatch{}, fmt.Errorf("--%s: %w", c.flag, err)
		}
		*c.dst = &triple
	}
	if changed("logo-url") {
		p.LogoURL = &f.logoURL
	}
	if changed("favicon-url") {
		p.FaviconURL = &f.faviconURL
	}
	if changed("custom-css") {
		p.CustomCSS = &f.customCSS
	}
	if changed("custom-css-file") {
		data, err := os.ReadFile(f.cssFile)
		if err != nil {
			return models.ThemePatch{}, fmt.Errorf("read custom CSS: %w", err)
		}
		css := string(data)
		p.CustomCSS = &css
	}
	return p, nil
}

func newResetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default colors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			res, err := opts.client().Reset(ctx)
			if err != nil {
				return err
			}
			printUpdate(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func newRefreshCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Reload branding from the config service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := opts.context()
			defer cancel()

			res, err := opts.client().Refresh(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			renderTheme(out, res.Config)
			fmt.Fprintf(out, "\nloaded from: %s\n", res.Tier)
			if res.Tier != "remote" {
				renderWarning(out, "the config service could not be reached")
			}
			return nil
		},
	}
}

// exportDoc is the file layout written by export.
type exportDoc struct {
	ID           string `yaml:"id" json:"id"`
	AppName      string `yaml:"app_name" json:"app_name"`
	LogoURL      string `yaml:"logo_url,omitempty" json:"logo_url,omitempty"`
	FaviconURL   string `yaml:"favicon_url,omitempty" json:"favicon_url,omitempty"`
	PrimaryColor string `yaml:"primary_color" json:"primary_color"`
	AccentColor  string `yaml:"accent_color" json:"accent_color"`
	SidebarColor string `yaml:"sidebar_color" json:"sidebar_color"`
	CustomCSS    string `yaml:"custom_css,omitempty" json:"custom_css,omitempty"`
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the active branding as YAML or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "yaml" && format != "json" {
				return fmt.Errorf("unsupported format %q (want yaml or json)", format)
			}

			ctx, cancel := opts.context()
			defer cancel()

			cfg, err := opts.client().Get(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer file.Close()
				w = file
			}
			return writeExport(w, format, cfg)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func writeExport(w io.Writer, format string, cfg models.ThemeConfig) error {
	doc := exportDoc(cfg)
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func newConvertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <color>",
		Short: "Convert between hex and HSL triples",
		Long: `Convert a "#rrggbb" color to its "<h> <s>% <l>%" triple, or a triple
to hex. Runs locally; no daemon needed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := args[0]
			if color.IsTriple(in) {
				triple, err := color.ToTriple(in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.HSLToHex(triple), swatch(triple))
				return nil
			}
			if _, err := color.ParseHex(in); err != nil {
				return fmt.Errorf("%q is neither a hex color nor an HSL triple", in)
			}
			triple := color.HexToHSL(in)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", triple, swatch(triple))
			return nil
		},
	}
}

func newUploadCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "upload <logo|favicon> <file>",
		Short:     "Upload a logo or favicon",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"logo", "favicon"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, path := args[0], args[1]
			if kind != "logo" && kind != "favicon" {
				return fmt.Errorf("unknown upload kind %q (want logo or favicon)", kind)
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer f.Close()

			ctx, cancel := opts.context()
			defer cancel()

			res, err := opts.client().Upload(ctx, kind, filepath.Base(path), f)
			if err != nil {
				return err
			}
			printUpdate(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func printUpdate(w io.Writer, res settings.UpdateResponse) {
	renderTheme(w, res.Config)
	if res.Degraded {
		renderWarning(w, res.Warning)
	}
}
