package pipeline

import (
	"sync/atomic"
)

// Profiler aggregates stage timings and outcomes across extractions.
type Profiler struct {
	PreprocessTimeNs atomic.Int64
	LocateTimeNs     atomic.Int64
	DecodeTimeNs     atomic.Int64
	ImagesProcessed  atomic.Int64
	SymbolsDecoded   atomic.Int64
}

// Record adds the timings of one result.
func (p *Profiler) Record(res *Result) {
	p.PreprocessTimeNs.Add(res.Processing.PreprocessNs)
	p.LocateTimeNs.Add(res.Processing.LocateNs)
	p.DecodeTimeNs.Add(res.Processing.DecodeNs)
	p.ImagesProcessed.Add(1)
	if res.Found() {
		p.SymbolsDecoded.Add(1)
	}
}

// Snapshot returns cumulative metrics in milliseconds for readability.
func (p *Profiler) Snapshot() map[string]any {
	imgs := p.ImagesProcessed.Load()
	pre := p.PreprocessTimeNs.Load()
	loc := p.LocateTimeNs.Load()
	dec := p.DecodeTimeNs.Load()
	out := map[string]any{
		"images":              imgs,
		"decoded":             p.SymbolsDecoded.Load(),
		"preprocess_ms_total": pre / 1_000_000,
		"locate_ms_total":     loc / 1_000_000,
		"decode_ms_total":     dec / 1_000_000,
	}
	if imgs > 0 {
		out["preprocess_ms_per_image"] = float64(pre) / 1_000_000.0 / float64(imgs)
		out["locate_ms_per_image"] = float64(loc) / 1_000_000.0 / float64(imgs)
		out["decode_ms_per_image"] = float64(dec) / 1_000_000.0 / float64(imgs)
	}
	return out
}
