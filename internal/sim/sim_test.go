package sim

import (
	"testing"

	"github.com/MRamiBalles/murmur/internal/engine"
	"github.com/MRamiBalles/murmur/internal/platform/config"
)

func simConfig() config.EngineConfig {
	cfg := config.LowResource().Engine
	cfg.Seed = 42
	return cfg
}

func TestScenariosPass(t *testing.T) {
	for _, sc := range Scenarios() {
		t.Run(sc.Name, func(t *testing.T) {
			run, err := sc.Run(simConfig(), nil)
			if err != nil {
				t.Fatal(err)
			}
			if len(run.Results) == 0 {
				t.Fatal("scenario made no checks")
			}
			for _, r := range run.Results {
				if !r.Passed {
					t.Errorf("%s: %s", r.Check, r.Reason)
				}
			}
		})
	}
}

func TestCheckTerminatedFlagsBadText(t *testing.T) {
	r, err := NewRun("bad text", simConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	r.Said = append(r.Said, engine.Utterance{Kind: engine.KindRemark, Speaker: 1, Text: "left a {OBSERVED_nameShort}."})
	r.CheckTerminated()
	if r.Results[0].Passed {
		t.Error("placeholder should fail the check")
	}
}
