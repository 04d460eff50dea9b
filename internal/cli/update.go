package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/wingetrel/internal/checksum"
	"github.com/vvka-141/wingetrel/internal/download"
	"github.com/vvka-141/wingetrel/internal/files/filesystem"
	"github.com/vvka-141/wingetrel/internal/logging"
	"github.com/vvka-141/wingetrel/internal/metadata"
	"github.com/vvka-141/wingetrel/internal/reconcile"
	"github.com/vvka-141/wingetrel/internal/retry"
	"github.com/vvka-141/wingetrel/internal/schema"
	"github.com/vvka-141/wingetrel/internal/services"
	"github.com/vvka-141/wingetrel/internal/tui"
	"github.com/vvka-141/wingetrel/internal/ui"
	"github.com/vvka-141/wingetrel/pkg/wingetrel"
)

type updateFlagValues struct {
	version         string
	fromVersion     string
	urls            []string
	releaseNotesURL string
	releaseDate     string
	manifestVersion string
	schemaBaseURL   string
	concurrency     int
	retries         int
	validate        bool
	dryRun          bool
	yes             bool
	timeout         time.Duration
}

// updateSettings is the fully resolved input of one update run.
type updateSettings struct {
	Config        wingetrel.UpdateConfig
	SchemaBaseURL string
	Concurrency   int
	Retries       int
}

func newUpdateCmd() *cobra.Command {
	return buildUpdateCmd(&updateFlagValues{})
}

// buildUpdateCmd binds the update flags onto flags.
func buildUpdateCmd(flags *updateFlagValues) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <package_dir>",
		Short: "Rewrite a package version's manifests for a new release",
		Long: `Update rewrites the manifests of one package version for a new release.

The update command:
1. Reads every manifest of <package_dir>/<from-version> (or <package_dir>/<version>)
2. Pairs the existing installers with the new --url values in sorted order
3. Downloads each new installer once and recomputes InstallerSha256,
   ProductCode (MSI) and SignatureSha256 / PackageFamilyName (MSIX, APPX)
4. Sets PackageVersion, ManifestVersion, ReleaseDate and ReleaseNotesUrl
5. Writes every manifest to <package_dir>/<version> in schema field order

The number of --url values must equal the number of distinct installer URLs
in the existing installer manifest.

Configuration precedence: flag > environment > wingetrel.yaml > default.
  WINGETREL_MANIFEST_VERSION, WINGETREL_SCHEMA_BASE_URL, WINGETREL_CONCURRENCY

Examples:
  # Rewrite the 2.0.0 manifests in place
  wingetrel update manifests/c/Contoso/App --version 2.0.0 \
    --url https://example.com/app-2.0.0-x64.msi \
    --url https://example.com/app-2.0.0-arm64.msi

  # Create 2.1.0 from the 2.0.0 manifests without writing anything
  wingetrel update manifests/c/Contoso/App --from-version 2.0.0 --version 2.1.0 \
    --url https://example.com/app-2.1.0.msix --release-date 2026-10-19 --dry-run`,
		Args: RequirePackageDir,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, args[0], flags)
		},
		ValidArgsFunction: completeDirectories,
	}

	f := cmd.Flags()
	f.StringVar(&flags.version, "version", "", "New package version (required)")
	f.StringVar(&flags.fromVersion, "from-version", "",
		"Existing version directory to read manifests from\n"+
			"(default: the --version directory, rewritten in place)")
	f.StringArrayVar(&flags.urls, "url", nil,
		"New installer URL (repeat once per distinct installer URL)")
	f.StringVar(&flags.releaseNotesURL, "release-notes-url", "",
		"Release notes URL applied to every locale manifest")
	f.StringVar(&flags.releaseDate, "release-date", "",
		"Release date (YYYY-MM-DD) applied to the installer manifest")
	f.StringVar(&flags.manifestVersion, "manifest-version", "",
		"Manifest schema version (default "+wingetrel.DefaultManifestVersion+", or $"+EnvManifestVersion+")")
	f.StringVar(&flags.schemaBaseURL, "schema-base-url", "",
		"Base URL of the manifest JSON schemas (or $"+EnvSchemaBaseURL+")")
	f.IntVar(&flags.concurrency, "concurrency", wingetrel.DefaultConcurrency,
		"Maximum number of installers downloaded at the same time")
	f.IntVar(&flags.retries, "retries", 0,
		"Retry the whole run this many times after a transient network failure")
	f.BoolVar(&flags.validate, "validate", false,
		"Validate every rewritten manifest against its JSON schema")
	f.BoolVar(&flags.dryRun, "dry-run", false,
		"Print the rewritten manifests instead of writing them")
	f.BoolVarP(&flags.yes, "yes", "y", false,
		"Write without asking for confirmation (required when not interactive)")
	f.DurationVar(&flags.timeout, "timeout", wingetrel.DefaultTimeout,
		"Upper bound for the whole run, downloads included\n"+
			"Examples: 30s, 5m, 1h30m")

	_ = cmd.MarkFlagRequired("version")
	_ = cmd.RegisterFlagCompletionFunc("manifest-version", completeManifestVersions)

	return cmd
}

func init() {
	rootCmd.AddCommand(newUpdateCmd())
}

// buildUpdateSettings resolves flags, environment and wingetrel.yaml into the
// settings of one run. It performs no network access.
func buildUpdateSettings(cmd *cobra.Command, packageDir string, flags *updateFlagValues, verbose bool) (*updateSettings, error) {
	projectCfg, err := loadProjectConfig(packageDir)
	if err != nil {
		return nil, err
	}

	var fileManifestVersion, fileSchemaBaseURL string
	if projectCfg != nil {
		fileManifestVersion = projectCfg.ManifestVersion
		fileSchemaBaseURL = projectCfg.SchemaBaseURL
	}

	concurrency, err := resolveConcurrency(cmd, flags.concurrency, projectCfg)
	if err != nil {
		return nil, err
	}
	retries, err := resolveRetries(cmd, flags.retries, projectCfg)
	if err != nil {
		return nil, err
	}
	timeout, err := resolveEffectiveTimeout(cmd, projectCfg, flags.timeout)
	if err != nil {
		return nil, err
	}

	sourceVersion := flags.version
	if flags.fromVersion != "" {
		sourceVersion = flags.fromVersion
	}

	settings := &updateSettings{
		Config: wingetrel.UpdateConfig{
			SourceDir:       filepath.Join(packageDir, sourceVersion),
			TargetDir:       filepath.Join(packageDir, flags.version),
			PackageVersion:  flags.version,
			InstallerURLs:   flags.urls,
			ReleaseNotesURL: flags.releaseNotesURL,
			ReleaseDate:     flags.releaseDate,
			ManifestVersion: resolveString(cmd, "manifest-version", flags.manifestVersion,
				EnvManifestVersion, fileManifestVersion, wingetrel.DefaultManifestVersion),
			ValidateSchema: resolveValidate(cmd, flags.validate, projectCfg),
			DryRun:         flags.dryRun,
			Timeout:        timeout,
			Verbose:        verbose,
		},
		SchemaBaseURL: resolveString(cmd, "schema-base-url", flags.schemaBaseURL,
			EnvSchemaBaseURL, fileSchemaBaseURL, wingetrel.DefaultSchemaBaseURL),
		Concurrency: concurrency,
		Retries:     retries,
	}

	if err := settings.Config.Validate(); err != nil {
		return nil, err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] Update resolved:\n")
		fmt.Fprintf(os.Stderr, "  Source: %s\n", settings.Config.SourceDir)
		fmt.Fprintf(os.Stderr, "  Target: %s\n", settings.Config.Target())
		fmt.Fprintf(os.Stderr, "  Manifest Version: %s\n", settings.Config.ManifestVersion)
		fmt.Fprintf(os.Stderr, "  Schema Base URL: %s\n", settings.SchemaBaseURL)
		fmt.Fprintf(os.Stderr, "  Concurrency: %d\n", settings.Concurrency)
		fmt.Fprintf(os.Stderr, "  Retries: %d\n", settings.Retries)
	}

	return settings, nil
}

// selectApprover picks the confirmation strategy. Without a terminal there is
// nobody to ask, so --yes must be explicit.
func selectApprover(yes, dryRun, interactive, verbose bool) (wingetrel.Approver, error) {
	switch {
	case yes || dryRun:
		return ui.NewForcedApprover(verbose), nil
	case interactive:
		return ui.NewInteractiveApprover(verbose), nil
	default:
		return nil, fmt.Errorf("%w: not running interactively; pass --yes to write the manifests", wingetrel.ErrInvalidConfig)
	}
}

func runUpdate(cmd *cobra.Command, packageDir string, flags *updateFlagValues) error {
	verbose := getVerboseFlag(cmd)

	settings, err := buildUpdateSettings(cmd, packageDir, flags, verbose)
	if err != nil {
		return err
	}

	approver, err := selectApprover(flags.yes, flags.dryRun, tui.IsInteractive(), verbose)
	if err != nil {
		return err
	}

	logger := logging.NewConsoleLogger(verbose)

	extractor, err := metadata.NewService(download.NewClient(logger), checksum.New(), logger)
	if err != nil {
		return err
	}
	defer extractor.Close()

	updater := services.NewUpdateService(
		filesystem.NewOSFileSystem(),
		schema.NewResolver(schema.NewHTTPFetcher(http.DefaultClient, settings.SchemaBaseURL), logger),
		reconcile.NewReconciler(extractor, logger, reconcile.WithConcurrency(settings.Concurrency)),
		approver,
		logger,
		toolVersion(),
	)

	// Setup context with timeout and signal handling for graceful shutdown
	ctx, cancel := context.WithTimeout(commandContext(cmd), settings.Config.Timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	executor := retry.NewExecutor(
		retry.NewReleaseErrorClassifier(),
		retry.NewExponentialBackoff(settings.Retries),
	).WithOnRetry(func(attempt int, err error, delay time.Duration) {
		logger.Info("Attempt %d failed: %v", attempt+1, err)
		logger.Info("Retrying in %s...", delay.Round(time.Second))
	})

	var result *services.UpdateResult
	err = executor.Execute(ctx, func(ctx context.Context) error {
		r, err := updater.Update(ctx, settings.Config)
		result = r
		return err
	})
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if result.DryRun {
		for _, f := range result.Files {
			fmt.Fprintf(out, "--- %s\n%s\n", f.Name, f.Content)
		}
	}
	fmt.Fprintln(out, tui.RenderSummary(result))
	return nil
}

// commandContext returns the context cobra attached to cmd, or Background
// when cmd runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
