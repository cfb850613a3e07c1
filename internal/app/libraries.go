package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/steamsafe/internal/library"
	"github.com/blackwell-systems/steamsafe/internal/manifest"
	"github.com/blackwell-systems/steamsafe/internal/output"
)

var (
	librariesSteamRoot    string
	librariesExcludeRoots []string
	librariesExcludeApps  []string

	librariesCmd = &cobra.Command{
		Use:   "libraries",
		Short: "List Steam libraries and per-app backup eligibility",
		Long: `Discover every Steam library on this machine and show, per library, each
app manifest with its classification: eligible, incomplete, excluded, or
corrupt. Nothing is copied.`,
		Example: `  # Show all libraries and apps
  steamsafe libraries

  # Preview what an exclusion would do
  steamsafe libraries --exclude-app 228980`,
		RunE: runLibraries,
	}
)

func init() {
	librariesCmd.Flags().StringVar(&librariesSteamRoot, "steam-root", "", "primary Steam root (default: autodetect)")
	librariesCmd.Flags().StringSliceVar(&librariesExcludeRoots, "exclude-root", nil, "library root prefix to skip (repeatable)")
	librariesCmd.Flags().StringSliceVar(&librariesExcludeApps, "exclude-app", nil, "app id to mark excluded (repeatable)")
}

func runLibraries(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.ExcludeRoots = append(cfg.ExcludeRoots, librariesExcludeRoots...)
	cfg.ExcludeApps = append(cfg.ExcludeApps, librariesExcludeApps...)

	steamRoot, err := resolveSteamRoot(librariesSteamRoot, cfg)
	if err != nil {
		return err
	}

	spin := output.NewSpinner("Discovering libraries")
	spin.Start()
	discovery, err := library.Discover(steamRoot, cfg.ExcludeRoots)
	spin.Stop()
	if err != nil {
		return err
	}

	for _, root := range discovery.ExcludedRoots {
		fmt.Printf("excluded library: %s\n", root)
	}

	excluded := cfg.ExcludedApps()
	for _, root := range discovery.Roots {
		paths, err := library.Manifests(root)
		if err != nil {
			fmt.Printf("%s: %v\n", root, err)
			continue
		}

		results := make([]manifest.Classification, 0, len(paths))
		for _, path := range paths {
			results = append(results, manifest.Classify(manifest.Load(path, root), excluded))
		}
		fmt.Print(output.RenderClassificationTable(root, results))
	}

	return nil
}
