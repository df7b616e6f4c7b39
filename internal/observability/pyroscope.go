package observability

import (
	"runtime"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/chit-fund/internal/config"
	"github.com/riskibarqy/chit-fund/internal/platform/logging"
)

const mutexProfileFraction = 5

var baseProfileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
}

// InitPyroscope starts continuous profiling when enabled. The returned stop func is never nil.
func InitPyroscope(cfg config.Config, logger *logging.Logger) (func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	noop := func() error { return nil }

	if !cfg.PyroscopeEnabled {
		logger.Info("pyroscope disabled", "reason", "PYROSCOPE_ENABLED=false")
		return noop, nil
	}

	profilerCfg := pyroscopeConfig(cfg)
	if hasProfile(profilerCfg.ProfileTypes, pyroscope.ProfileMutexDuration) {
		runtime.SetMutexProfileFraction(mutexProfileFraction)
	}

	profiler, err := pyroscope.Start(profilerCfg)
	if err != nil {
		return noop, err
	}

	logger.Info("pyroscope enabled",
		"server_address", cfg.PyroscopeServerAddress,
		"application", cfg.PyroscopeAppName,
		"profiles", len(profilerCfg.ProfileTypes),
	)
	return profiler.Stop, nil
}

// pyroscopeConfig adds lock contention profiles outside prod, where the group
// update path is load tested.
func pyroscopeConfig(cfg config.Config) pyroscope.Config {
	profiles := append([]pyroscope.ProfileType{}, baseProfileTypes...)
	if cfg.AppEnv != config.EnvProd {
		profiles = append(profiles, pyroscope.ProfileMutexDuration, pyroscope.ProfileMutexCount)
	}

	return pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags: map[string]string{
			"env":     cfg.AppEnv,
			"service": cfg.ServiceName,
			"version": cfg.ServiceVersion,
		},
		ProfileTypes: profiles,
	}
}

func hasProfile(types []pyroscope.ProfileType, want pyroscope.ProfileType) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}
