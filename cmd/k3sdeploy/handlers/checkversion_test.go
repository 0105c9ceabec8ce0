package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/k3sdeploy/internal/config"
	"github.com/imamik/k3sdeploy/internal/version"
)

// stubChecker pre-seeds a fixed release lookup outcome.
func stubChecker(t *testing.T, latest string, err error) {
	t.Helper()
	checkRelease = func(_ context.Context, _ *config.Config) (version.Status, error) {
		if err != nil {
			return version.Status{}, err
		}
		return version.Status{Current: "v1.32.4+k3s1", Latest: latest}, nil
	}
}

func TestCheckVersionUpToDate(t *testing.T) {
	saveAndRestoreFactories(t)
	loadConfig = func(_ string) (*config.Config, error) { return config.Default(), nil }
	stubChecker(t, "v1.32.4+k3s1", nil)

	confirmUpdate = func(_ context.Context, _ string) (bool, error) {
		t.Fatal("no prompt expected when up to date")
		return false, nil
	}

	require.NoError(t, CheckVersion(context.Background(), "", true))
}

func TestCheckVersionOutdatedWithoutUpdateFlag(t *testing.T) {
	saveAndRestoreFactories(t)
	loadConfig = func(_ string) (*config.Config, error) { return config.Default(), nil }
	stubChecker(t, "v1.33.0+k3s1", nil)

	confirmUpdate = func(_ context.Context, _ string) (bool, error) {
		t.Fatal("no prompt expected without --update")
		return false, nil
	}

	require.NoError(t, CheckVersion(context.Background(), "", false))
}

func TestCheckVersionUpdateConfirmed(t *testing.T) {
	saveAndRestoreFactories(t)
	cfg := config.Default()
	loadConfig = func(_ string) (*config.Config, error) { return cfg, nil }
	stubChecker(t, "v1.33.0+k3s1", nil)

	var prompted string
	confirmUpdate = func(_ context.Context, latest string) (bool, error) {
		prompted = latest
		return true, nil
	}

	require.NoError(t, CheckVersion(context.Background(), "", true))
	assert.Equal(t, "v1.33.0+k3s1", prompted)
	assert.Equal(t, "v1.33.0+k3s1", cfg.K3s.Version)
}

func TestCheckVersionUpdateDeclined(t *testing.T) {
	saveAndRestoreFactories(t)
	cfg := config.Default()
	loadConfig = func(_ string) (*config.Config, error) { return cfg, nil }
	stubChecker(t, "v1.33.0+k3s1", nil)

	confirmUpdate = func(_ context.Context, _ string) (bool, error) { return false, nil }

	require.NoError(t, CheckVersion(context.Background(), "", true))
	assert.Equal(t, "v1.32.4+k3s1", cfg.K3s.Version)
}

func TestCheckVersionNetworkFailureIsWarning(t *testing.T) {
	saveAndRestoreFactories(t)
	loadConfig = func(_ string) (*config.Config, error) { return config.Default(), nil }
	stubChecker(t, "", errors.New("connection timed out"))

	require.NoError(t, CheckVersion(context.Background(), "", false))
}

func TestCheckVersionConfigErrorPropagates(t *testing.T) {
	saveAndRestoreFactories(t)
	loadConfig = func(_ string) (*config.Config, error) { return nil, errors.New("bad config") }

	err := CheckVersion(context.Background(), "", false)
	require.Error(t, err)
}
