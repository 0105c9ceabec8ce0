package handlers

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/imamik/k3sdeploy/internal/config"
	"github.com/imamik/k3sdeploy/internal/ui"
	"github.com/imamik/k3sdeploy/internal/version"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// checkRelease fetches the latest release and compares it with the
	// configured version.
	checkRelease = func(ctx context.Context, cfg *config.Config) (version.Status, error) {
		return version.NewReleaseChecker(cfg.K3s.ReleasesURL).Check(ctx, cfg.K3s.Version)
	}

	// confirmUpdate interactively asks whether to adopt the latest version.
	confirmUpdate = func(ctx context.Context, latest string) (bool, error) {
		var confirmed bool
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Use the latest k3s version (%s)?", latest)).
					Value(&confirmed),
			),
		).RunWithContext(ctx)
		return confirmed, err
	}
)

// CheckVersion compares the configured k3s version against the latest
// release on GitHub. A failed lookup is a warning, not an error: the
// command exits zero so scripted pipelines keep going offline.
func CheckVersion(ctx context.Context, configPath string, update bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	ui.Section("Checking configured k3s version against latest release")

	status, err := checkRelease(ctx, cfg)
	if err != nil {
		ui.Warn("Could not determine latest k3s version: %v", err)
		return nil
	}

	ui.Info("Configured: %s", status.Current)
	ui.Info("Latest:     %s", status.Latest)

	if status.UpToDate() {
		ui.Success("Configured k3s version is the latest release")
		return nil
	}

	ui.Warn("Configured version %s differs from latest release %s", status.Current, status.Latest)
	if !update {
		return nil
	}

	confirmed, err := confirmUpdate(ctx, status.Latest)
	if err != nil {
		return fmt.Errorf("update prompt failed: %w", err)
	}
	if !confirmed {
		ui.Info("Keeping configured version %s", status.Current)
		return nil
	}

	cfg.K3s.Version = status.Latest
	ui.Success("Using latest k3s version %s for this run", cfg.K3s.Version)
	return nil
}
