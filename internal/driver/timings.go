package driver

import (
	"encoding/json"
	"fmt"

	"modgen/internal/diag"
	"modgen/internal/observ"
	"modgen/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// AppendTimings adds the timer report to bag as an info diagnostic whose
// note carries the JSON payload.
func AppendTimings(bag *diag.Bag, report observ.Report) {
	if bag == nil {
		return
	}
	payload := timingPayload{Kind: "run", TotalMS: report.TotalMS, Phases: report.Phases}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	d := diag.New(diag.SevInfo, diag.ObsTimings, "", source.Pos{},
		fmt.Sprintf("timings (%s): total %.2f ms over %d phases", payload.Kind, payload.TotalMS, len(payload.Phases)))
	d = d.WithNote(source.Pos{}, string(data))

	if bag.Add(d) {
		return
	}
	overflow := diag.NewBag(bag.Len() + 1)
	overflow.Add(d)
	bag.Merge(overflow)
}
