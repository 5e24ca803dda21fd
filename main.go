// xclockit — xcloc Kit: Apple .xcloc localization bundle inspector and editor.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minios-linux/xclockit/config"
	"github.com/minios-linux/xclockit/i18n"
	"github.com/minios-linux/xclockit/langmeta"
	"github.com/minios-linux/xclockit/lockfile"
	"github.com/minios-linux/xclockit/xcloc"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "xclockit",
		Short: "xcloc Kit: inspect and edit Apple .xcloc localization bundles",
		Long: `xclockit — xcloc Kit: inspect and edit Apple .xcloc localization bundles.

Reads a bundle's contents.json manifest and its XLIFF 1.2 translation file,
lets you edit translations, and writes them back without disturbing anything
else in the file: untouched units, attribute order and whitespace survive
byte-for-byte.

Commands:
  status      Show per-bundle translation statistics
  units       List the translation units of a bundle
  set         Set the translated text (and note) of one unit
  add         Add a new unit to a bundle
  clear       Clear all translated text in a bundle
  init        Create an empty bundle`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flag — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")

	root.AddCommand(
		newStatusCmd(),
		newUnitsCmd(),
		newSetCmd(),
		newAddCmd(),
		newClearCmd(),
		newInitCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("xclockit version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// status (read-only: bundle list + translation stats)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [bundle]",
		Short: "Show per-bundle translation statistics",
		Long: `Show translation statistics for the given bundle, or for every bundle
declared in .xclockit.yaml (falling back to scanning the project root for
*.xcloc directories). Does not modify any files.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var paths []string
			if len(args) == 1 {
				paths = []string{args[0]}
			} else {
				cfg, err := config.Load(rootDir)
				if err != nil {
					return err
				}
				paths, err = cfg.BundlePaths(rootDir)
				if err != nil {
					return err
				}
			}
			if len(paths) == 0 {
				logInfo("%s", i18n.T("No bundles found"))
				return nil
			}

			lf, err := lockfile.Load(rootDir)
			if err != nil {
				return err
			}

			logInfo(i18n.N("Found %d bundle", "Found %d bundles", len(paths)), len(paths))
			fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
			for _, p := range paths {
				if err := printBundleStatus(p, lf); err != nil {
					logWarning("%s: %v", p, err)
				}
			}
			return nil
		},
	}
}

func printBundleStatus(path string, lf *lockfile.LockFile) error {
	b, err := xcloc.Load(path)
	if err != nil {
		return err
	}

	meta := langmeta.Resolve(b.Manifest.TargetLocale)
	total, translated, _ := b.Stats()
	percent := 0
	if total > 0 {
		percent = translated * 100 / total
	}

	// Units whose source text changed since the last recorded edit.
	contents := make(map[string]string, len(b.Units))
	for i := range b.Units {
		u := &b.Units[i]
		contents[u.ID] = lockfile.UnitContent(u.Source, u.Note)
	}
	changed := lf.FilterChanged(lockfile.BundleKey(path), contents)

	fmt.Fprintf(os.Stderr, "  %s %s → %s %s (%s)\n",
		filepath.Base(path),
		b.Manifest.DevelopmentRegion,
		b.Manifest.TargetLocale, localeFlag(b.Manifest.TargetLocale, meta), meta.Name)
	fmt.Fprintf(os.Stderr, "    %s: %d/%d %s\n",
		i18n.T("Translated"), translated, total, progressBar(percent, 20))
	if len(changed) > 0 {
		fmt.Fprintf(os.Stderr, "    %s: %d\n", i18n.T("Changed since last edit"), len(changed))
	}
	return nil
}

// progressBar renders a fixed-width colored bar with a right-aligned
// percentage. Percent is clamped to [0, 100].
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100

	color := colorRed
	switch {
	case percent >= 80:
		color = colorGreen
	case percent >= 40:
		color = colorYellow
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s%s%s %3d%%", color, bar, colorReset, percent)
}

// localeFlag returns the display flag for a locale: the registry's flag when
// known, otherwise one built from the locale's region subtag.
func localeFlag(locale string, meta langmeta.Meta) string {
	if meta.Flag != "" {
		return meta.Flag
	}
	parts := strings.Split(strings.ReplaceAll(locale, "_", "-"), "-")
	if len(parts) > 1 {
		return flagFromRegion(parts[len(parts)-1])
	}
	return ""
}

// flagFromRegion builds a regional-indicator emoji from a two-letter region
// code. Returns "" for anything that is not exactly two ASCII letters.
func flagFromRegion(region string) string {
	if len(region) != 2 {
		return ""
	}
	var b strings.Builder
	for _, c := range strings.ToUpper(region) {
		if c < 'A' || c > 'Z' {
			return ""
		}
		b.WriteRune('\U0001F1E6' + c - 'A')
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// units (read-only: list units of one bundle)
// ---------------------------------------------------------------------------

func newUnitsCmd() *cobra.Command {
	var untranslatedOnly bool
	cmd := &cobra.Command{
		Use:   "units BUNDLE",
		Short: "List the translation units of a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := xcloc.Load(args[0])
			if err != nil {
				return err
			}
			for i := range b.Units {
				u := &b.Units[i]
				if untranslatedOnly && u.IsTranslated() {
					continue
				}
				mark := " "
				if u.IsTranslated() {
					mark = "✓"
				}
				fmt.Printf("%s %s\n", mark, u.ID)
				fmt.Printf("    source: %s\n", u.Source)
				if u.Target != "" {
					fmt.Printf("    target: %s\n", u.Target)
				}
				if u.Note != "" {
					fmt.Printf("    note:   %s\n", u.Note)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&untranslatedOnly, "untranslated", "u", false, "Only list untranslated units")
	return cmd
}

// ---------------------------------------------------------------------------
// set / add / clear (editing)
// ---------------------------------------------------------------------------

func newSetCmd() *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "set BUNDLE ID TARGET",
		Short: "Set the translated text of one unit and save the bundle",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, id, target := args[0], args[1], args[2]
			cfg, err := config.Load(rootDir)
			if err != nil {
				return err
			}
			b, err := xcloc.Load(path)
			if err != nil {
				return err
			}
			if !b.SetTarget(id, target) {
				return fmt.Errorf(i18n.T("unit %s not found in %s"), id, path)
			}
			if cmd.Flags().Changed("note") {
				b.SetNote(id, note)
			}
			if err := b.SaveWith("", cfg.MergeOptions()); err != nil {
				return err
			}

			// Record the source checksum so status stops flagging this unit.
			lf, err := lockfile.Load(rootDir)
			if err != nil {
				return err
			}
			u := b.UnitByID(id)
			lf.Update(lockfile.BundleKey(path), id, lockfile.UnitContent(u.Source, u.Note))
			if err := lf.Save(); err != nil {
				return err
			}

			logSuccess("%s: %s = %q", filepath.Base(path), id, target)
			return nil
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "Also set the unit's translator note")
	return cmd
}

func newAddCmd() *cobra.Command {
	var target, note string
	cmd := &cobra.Command{
		Use:   "add BUNDLE ID SOURCE",
		Short: "Add a new unit to a bundle",
		Long: `Add a new translation unit to a bundle. The unit is appended to the
existing translation file's body; all existing content is preserved.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, id, source := args[0], args[1], args[2]
			b, err := xcloc.Load(path)
			if err != nil {
				return err
			}
			if b.UnitByID(id) != nil {
				return fmt.Errorf("unit %s already exists in %s", id, path)
			}
			b.Units = append(b.Units, xcloc.Unit{ID: id, Source: source, Target: target, Note: note})
			opts := xcloc.MergeOptions{Notes: true, CreateMissing: true}
			if err := b.SaveWith("", opts); err != nil {
				return err
			}
			logSuccess("%s: added %s", filepath.Base(path), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "Initial translated text")
	cmd.Flags().StringVar(&note, "note", "", "Translator note")
	return cmd
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear BUNDLE",
		Short: "Clear all translated text in a bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootDir)
			if err != nil {
				return err
			}
			b, err := xcloc.Load(args[0])
			if err != nil {
				return err
			}
			b.ClearTargets()
			if err := b.SaveWith("", cfg.MergeOptions()); err != nil {
				return err
			}
			logSuccess("%s: cleared %d targets", filepath.Base(args[0]), len(b.Units))
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// init (create an empty bundle)
// ---------------------------------------------------------------------------

func newInitCmd() *cobra.Command {
	var sourceLang, targetLang string
	cmd := &cobra.Command{
		Use:   "init PATH",
		Short: "Create an empty bundle",
		Long: `Create a new .xcloc bundle directory at PATH with a manifest and an
empty translation file. Use 'add' to populate it with units.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !strings.HasSuffix(path, xcloc.Extension) {
				path += xcloc.Extension
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			b := &xcloc.Bundle{
				Path: path,
				Manifest: &xcloc.Manifest{
					DevelopmentRegion: sourceLang,
					TargetLocale:      targetLang,
					ToolInfo: xcloc.ToolInfo{
						ToolID:      "com.github.minios-linux.xclockit",
						ToolName:    "xclockit",
						ToolVersion: version,
					},
					Version: "1.0",
				},
			}
			if err := b.Save(path); err != nil {
				return err
			}
			logSuccess("created %s (%s → %s)", path, sourceLang, targetLang)
			return nil
		},
	}
	cmd.Flags().StringVar(&sourceLang, "source", "en", "Source language")
	cmd.Flags().StringVar(&targetLang, "target", "", "Target language")
	cmd.MarkFlagRequired("target")
	return cmd
}
