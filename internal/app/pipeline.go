package app

import (
	"github.com/blackwell-systems/exhaust/internal/classify"
	"github.com/blackwell-systems/exhaust/internal/config"
	"github.com/blackwell-systems/exhaust/internal/store"
	"github.com/blackwell-systems/exhaust/internal/synth"
)

// runPipelineOnce runs the three downstream batch stages in dependency
// order: classify, then hourly synthesis, then daily synthesis. Each stage
// reads only committed output of its predecessor, so a failure aborts the
// run but leaves the store resumable.
func runPipelineOnce(cfg *config.Config, db *store.DB, logf func(string, ...any)) error {
	c := classify.New(db, cfg.Classify.BatchSize, nil)
	cr, err := c.Run()
	if err != nil {
		return err
	}

	h := synth.NewHourly(db, cfg.SynthesisWindow(), cfg.Synthesis.MinEventsPerHour)
	hr, err := h.Run()
	if err != nil {
		return err
	}

	d := synth.NewDaily(db, cfg.SynthesisWindow(), cfg.Synthesis.MinHoursPerDay)
	dr, err := d.Run("")
	if err != nil {
		return err
	}

	if cr.Classified > 0 || hr.Synthesized > 0 || dr.Synthesized > 0 {
		logf("pipeline: classified %d, synthesized %d hours, %d days",
			cr.Classified, hr.Synthesized, dr.Synthesized)
	}
	return nil
}
