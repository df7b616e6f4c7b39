package observability

import (
	"context"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/chit-fund/internal/config"
	"github.com/riskibarqy/chit-fund/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

func TestInitUptrace_Disabled(t *testing.T) {
	cfg := config.Config{
		UptraceEnabled: false,
		ServiceName:    "chit-fund-api",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	base := logging.NewNop()
	logger, shutdown, err := InitUptrace(cfg, base)
	require.NoError(t, err)
	require.Same(t, base, logger)
	require.NoError(t, shutdown(context.Background()))
}

func TestInitPyroscope_Disabled(t *testing.T) {
	stop, err := InitPyroscope(config.Config{PyroscopeEnabled: false}, logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, stop())
}

func TestPyroscopeConfig_ProfilesByEnv(t *testing.T) {
	base := config.Config{
		PyroscopeAppName:       "chit-fund-api",
		PyroscopeServerAddress: "http://pyroscope:4040",
		ServiceName:            "chit-fund-api",
		ServiceVersion:         "1.2.3",
	}

	prod := base
	prod.AppEnv = config.EnvProd
	prodCfg := pyroscopeConfig(prod)
	require.False(t, hasProfile(prodCfg.ProfileTypes, pyroscope.ProfileMutexDuration))
	require.True(t, hasProfile(prodCfg.ProfileTypes, pyroscope.ProfileCPU))
	require.Equal(t, "1.2.3", prodCfg.Tags["version"])

	stage := base
	stage.AppEnv = config.EnvStage
	stageCfg := pyroscopeConfig(stage)
	require.True(t, hasProfile(stageCfg.ProfileTypes, pyroscope.ProfileMutexDuration))
	require.Len(t, stageCfg.ProfileTypes, len(baseProfileTypes)+2)
}
