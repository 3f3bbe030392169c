package providers

import (
	"os/exec"

	"github.com/samber/do/v2"

	"github.com/listenupapp/listenup-timeline/internal/config"
	"github.com/listenupapp/listenup-timeline/internal/logger"
	"github.com/listenupapp/listenup-timeline/internal/probe"
	"github.com/listenupapp/listenup-timeline/internal/service"
)

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// ProvideProber provides the duration prober. The in-process parser always
// takes part; ffprobe joins when it can be found, first if preferred.
func ProvideProber(i do.Injector) (probe.Prober, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return buildProber(cfg.Probe, lookPath, log), nil
}

func buildProber(cfg config.ProbeConfig, look func(string) (string, error), log *logger.Logger) probe.Chain {
	chain := probe.Chain{probe.NewAudiometaProber()}

	binary := cfg.FFprobePath
	if binary == "" {
		binary = "ffprobe"
	}
	path, err := look(binary)
	if err != nil {
		log.Warn("ffprobe not found, using in-process duration parser only", "binary", binary)
		return chain
	}
	log.Info("using ffprobe", "path", path)

	ffprobe := probe.NewFFprobeProber(path)
	if cfg.PreferFFprobe {
		return probe.Chain{ffprobe, chain[0]}
	}
	return append(chain, ffprobe)
}

// ProvideTimelineService provides the timeline service.
func ProvideTimelineService(i do.Injector) (*service.TimelineService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	prober := do.MustInvoke[probe.Prober](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTimelineService(prober, log, service.TimelineConfig{
		SkipPartsWithoutMarkers: cfg.Timeline.SkipPartsWithoutMarkers,
		BaseURL:                 cfg.Timeline.BaseURL,
		MaxConcurrent:           cfg.Probe.MaxConcurrent,
		ProbeTimeout:            cfg.Probe.Timeout,
	}), nil
}
