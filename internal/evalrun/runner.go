package evalrun

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/visionbench/capeval/internal/dataset"
	"github.com/visionbench/capeval/internal/judge"
	"github.com/visionbench/capeval/internal/model"
	"github.com/visionbench/capeval/internal/scenegraph"
	"github.com/visionbench/capeval/internal/scoring"
)

// Runner evaluates a corpus of VLM captions against ground truth.
type Runner struct {
	extractor *scenegraph.Extractor
	judge     *judge.Judge

	// Workers bounds the concurrent in-flight items; Limit caps how many
	// annotation entries are considered at all (0 means no cap).
	Workers int
	Limit   int
}

// NewRunner creates a Runner with the given worker bound.
func NewRunner(extractor *scenegraph.Extractor, j *judge.Judge, workers, limit int) *Runner {
	if workers <= 0 {
		workers = 4
	}
	return &Runner{extractor: extractor, judge: j, Workers: workers, Limit: limit}
}

type workItem struct {
	image      string
	gtCaption  string
	vlmCaption string
	hasVLM     bool
}

// Run evaluates every unprocessed image and appends one record per image to
// the log at outPath, then a corpus summary line aggregated from the full
// log on disk. Re-running with the same outPath resumes: images already in
// the log are not dispatched again, and the new summary covers old and new
// records alike.
func (r *Runner) Run(ctx context.Context, annotationsPath, resultsPath, outPath string) (model.CorpusSummary, error) {
	var summary model.CorpusSummary

	annotations, err := dataset.LoadAnnotations(annotationsPath)
	if err != nil {
		return summary, err
	}
	results, err := dataset.LoadResults(resultsPath)
	if err != nil {
		return summary, err
	}
	processed, err := LoadProcessed(outPath)
	if err != nil {
		return summary, err
	}

	work := r.buildWork(annotations, results, processed)
	zap.L().Info("evalrun: starting batch",
		zap.Int("annotations", len(annotations)),
		zap.Int("already_processed", len(processed)),
		zap.Int("dispatching", len(work)),
		zap.Int("workers", r.Workers))

	log, err := OpenLog(outPath)
	if err != nil {
		return summary, err
	}
	defer log.Close()

	// All workers hand their records to one writer goroutine; the log file
	// has exactly one appender for the lifetime of the run.
	records := make(chan model.EvalRecord, r.Workers)
	writerDone := make(chan error, 1)
	go func() {
		for rec := range records {
			if err := log.Append(rec); err != nil {
				writerDone <- err
				for range records {
				}
				return
			}
		}
		writerDone <- nil
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)
	for _, item := range work {
		item := item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec := r.evaluateOne(gctx, item)
			select {
			case records <- rec:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	groupErr := g.Wait()
	close(records)
	if err := <-writerDone; err != nil {
		return summary, err
	}
	if groupErr != nil {
		return summary, eris.Wrap(groupErr, "evalrun: batch")
	}

	// Aggregate from disk, not memory: the log may hold records from prior
	// interrupted runs that this process never saw.
	all, err := ReadRecords(outPath)
	if err != nil {
		return summary, err
	}
	summary = scoring.Summarize(all)
	summary.RunID = uuid.New().String()
	if err := log.Append(summary); err != nil {
		return summary, err
	}

	zap.L().Info("evalrun: batch complete",
		zap.String("run_id", summary.RunID),
		zap.Int("evaluated", summary.Evaluated),
		zap.Float64("f_score", summary.FScore))
	return summary, nil
}

func (r *Runner) buildWork(annotations []dataset.Caption, results map[string]string, processed map[string]struct{}) []workItem {
	considered := annotations
	if r.Limit > 0 && r.Limit < len(considered) {
		considered = considered[:r.Limit]
	}

	var work []workItem
	for _, ann := range considered {
		if _, done := processed[ann.Image]; done {
			continue
		}
		vlm, ok := results[ann.Image]
		work = append(work, workItem{
			image:      ann.Image,
			gtCaption:  ann.Caption,
			vlmCaption: vlm,
			hasVLM:     ok,
		})
	}
	return work
}

// evaluateOne runs the full per-image pipeline. A failure at any step
// produces a partial record carrying whatever was computed plus the error;
// it never aborts the batch.
func (r *Runner) evaluateOne(ctx context.Context, item workItem) model.EvalRecord {
	rec := model.EvalRecord{
		Image:      item.image,
		GTCaption:  item.gtCaption,
		VLMCaption: item.vlmCaption,
	}
	if !item.hasVLM {
		rec.Error = "no candidate caption for image"
		zap.L().Warn("evalrun: image missing from results", zap.String("image", item.image))
		return rec
	}

	gtGraph, err := r.extractor.Extract(ctx, item.gtCaption)
	if err != nil {
		rec.Error = eris.Wrap(err, "extract gt scene graph").Error()
		zap.L().Warn("evalrun: item failed", zap.String("image", item.image), zap.Error(err))
		return rec
	}
	rec.GTGraph = gtGraph.Raw
	rec.GTConcepts = model.IntPtr(gtGraph.ConceptCount())

	vlmGraph, err := r.extractor.Extract(ctx, item.vlmCaption)
	if err != nil {
		rec.Error = eris.Wrap(err, "extract vlm scene graph").Error()
		zap.L().Warn("evalrun: item failed", zap.String("image", item.image), zap.Error(err))
		return rec
	}
	rec.VLMGraph = vlmGraph.Raw
	rec.VLMConcepts = model.IntPtr(vlmGraph.ConceptCount())

	hallucinated, _, err := r.judge.Hallucinations(ctx, gtGraph.Raw, vlmGraph.Raw)
	if err != nil {
		rec.Error = eris.Wrap(err, "judge hallucinations").Error()
		zap.L().Warn("evalrun: item failed", zap.String("image", item.image), zap.Error(err))
		return rec
	}
	rec.HallucinatedSerials = hallucinated
	rec.HallucinatedCount = model.IntPtr(len(hallucinated))

	omitted, _, err := r.judge.Omissions(ctx, gtGraph.Raw, vlmGraph.Raw)
	if err != nil {
		rec.Error = eris.Wrap(err, "judge omissions").Error()
		zap.L().Warn("evalrun: item failed", zap.String("image", item.image), zap.Error(err))
		return rec
	}
	rec.OmittedSerials = omitted
	rec.OmittedCount = model.IntPtr(len(omitted))

	scoring.ScoreItem(&rec)
	return rec
}
