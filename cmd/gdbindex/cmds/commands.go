package cmds

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cosiner/argv"
	"github.com/spf13/cobra"

	"github.com/go-gdbindex/gdbindex/pkg/config"
	"github.com/go-gdbindex/gdbindex/pkg/gdbindex"
	"github.com/go-gdbindex/gdbindex/pkg/logflags"
	"github.com/go-gdbindex/gdbindex/pkg/target"
)

var (
	sectionsDir  string
	configPath   string
	outPath      string
	excludeFlags string
)

// New builds the gdbindex root command.
func New() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:   "gdbindex",
		Short: "Builds a gdb_index section from a linked image's debug sections.",
	}

	buildCommand := &cobra.Command{
		Use:   "build",
		Short: "Build a gdb_index payload from already-decompressed section dumps.",
		Run:   runBuild,
	}
	buildCommand.Flags().StringVar(&sectionsDir, "sections", "", "Directory holding decompressed section dumps and per-object pubname/pubtype subdirectories.")
	buildCommand.Flags().StringVar(&configPath, "config", "gdbindex.yml", "Path to the build configuration.")
	buildCommand.Flags().StringVar(&outPath, "out", "gdb_index.bin", "Path the built section payload is written to.")
	buildCommand.Flags().StringVar(&excludeFlags, "exclude", "", `Extra excluded name prefixes, space-separated and optionally 'quoted' to include a space, merged with the config file's excludePrefixes.`)
	rootCommand.AddCommand(buildCommand)

	return rootCommand
}

// ExpandResponseFiles rewrites any "@file" argument in args into the
// arguments read from that file, bash-tokenized, matching the
// @file convention linkers accept on their own command lines.
func ExpandResponseFiles(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		if len(a) == 0 || a[0] != '@' {
			out = append(out, a)
			continue
		}
		data, err := os.ReadFile(a[1:])
		if err != nil {
			return nil, fmt.Errorf("reading response file %s: %w", a[1:], err)
		}
		cmds, err := argv.Argv(string(data), nil, nil)
		if err != nil {
			return nil, fmt.Errorf("parsing response file %s: %w", a[1:], err)
		}
		for _, c := range cmds {
			out = append(out, c...)
		}
	}
	return out, nil
}

func runBuild(cmd *cobra.Command, args []string) {
	logger := logflags.Logger()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatalf("gdb-index: %v", err)
	}

	t, ok := target.ByName(cfg.Target)
	if !ok {
		logger.Fatalf("gdb-index: unsupported target %q", cfg.Target)
	}

	sections, err := loadSections(sectionsDir)
	if err != nil {
		logger.Fatalf("gdb-index: %v", err)
	}

	objects, err := loadObjects(sectionsDir, cfg.Objects)
	if err != nil {
		logger.Fatalf("gdb-index: %v", err)
	}

	excludePrefixes := cfg.ExcludePrefixes
	if excludeFlags != "" {
		excludePrefixes = append(excludePrefixes, config.SplitQuotedFields(excludeFlags, '\'')...)
	}
	filter := gdbindex.NewFilter(excludePrefixes)

	out, err := gdbindex.Build(sections, objects, t, filter)
	if err != nil {
		logger.Fatalf("gdb-index: %v", err)
	}
	if out == nil {
		logger.Infof("gdb-index: no compilation units found, nothing written")
		return
	}

	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		logger.Fatalf("gdb-index: writing %s: %v", outPath, err)
	}
}

func loadSections(dir string) (gdbindex.OutputSections, error) {
	read := func(name string) ([]byte, error) {
		return os.ReadFile(filepath.Join(dir, name))
	}

	debugInfo, err := read("debug_info")
	if err != nil {
		return gdbindex.OutputSections{}, err
	}
	debugAbbrev, err := read("debug_abbrev")
	if err != nil {
		return gdbindex.OutputSections{}, err
	}
	debugRanges, _ := read("debug_ranges")
	debugAddr, _ := read("debug_addr")
	debugRngLists, _ := read("debug_rnglists")

	return gdbindex.OutputSections{
		DebugInfo:     debugInfo,
		DebugAbbrev:   debugAbbrev,
		DebugRanges:   debugRanges,
		DebugAddr:     debugAddr,
		DebugRngLists: debugRngLists,
	}, nil
}

func loadObjects(sectionsDir string, names []string) ([]gdbindex.InputObject, error) {
	objects := make([]gdbindex.InputObject, 0, len(names))
	for _, name := range names {
		dir := filepath.Join(sectionsDir, name)
		pubnames, _ := os.ReadFile(filepath.Join(dir, "pubnames"))
		pubtypes, _ := os.ReadFile(filepath.Join(dir, "pubtypes"))

		var offset uint64
		if raw, err := os.ReadFile(filepath.Join(dir, "offset")); err == nil {
			offset, _ = strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 64)
		}

		objects = append(objects, gdbindex.InputObject{
			Identity:                    name,
			RawPubnames:                 pubnames,
			RawPubtypes:                 pubtypes,
			DebugInfoContributionOffset: offset,
		})
	}
	return objects, nil
}
