package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/rohmanhakim/store-insights/internal/config"
	"github.com/rohmanhakim/store-insights/internal/enhancer"
	"github.com/rohmanhakim/store-insights/internal/extractor"
	"github.com/rohmanhakim/store-insights/internal/fetcher"
	"github.com/rohmanhakim/store-insights/internal/insight"
	"github.com/rohmanhakim/store-insights/internal/metadata"
	"github.com/rohmanhakim/store-insights/internal/source"
	"github.com/rohmanhakim/store-insights/internal/target"
	"github.com/rohmanhakim/store-insights/pkg/hashutil"
	"github.com/rohmanhakim/store-insights/pkg/retry"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

/*
 Aggregator is the sole control-plane authority of an extraction run.

 Guarantees:
 - Input is validated before any network activity.
 - Every source kind is probed concurrently under one overall deadline;
   the aggregator waits for all of them.
 - An unreachable storefront root is the only fatal outcome besides caller
   cancellation. Missing, slow or malformed sources empty their own field
   groups and are reported in the field report and warnings.
 - Extractors run concurrently and never see each other's results, except
   hero products and brand, which read the finished catalog.
 - Every field of the document is present, collections are never nil.

 Runs share no mutable state: each run owns its limiter, fetcher and
 source set. Metadata emission is observational only and MUST NOT
 influence control flow.
*/

type Aggregator struct {
	cfg          config.Config
	metadataSink metadata.MetadataSink
	runFinalizer metadata.RunFinalizer
	resolver     source.Resolver
	extractor    *extractor.Extractor
	enhancer     enhancer.Enhancer
	now          func() time.Time
}

// NewAggregator wires an aggregator to a recorder and selects the enhancer
// from the configuration.
func NewAggregator(cfg config.Config, recorder *metadata.Recorder) *Aggregator {
	var enh enhancer.Enhancer = enhancer.Noop{}
	if cfg.EnhancementEnabled() {
		enh = enhancer.NewHTTPEnhancer(cfg.EnhancerEndpoint(), cfg.EnhancerTimeout(), recorder)
	}
	return NewAggregatorWithDeps(cfg, recorder, recorder, enh)
}

// NewAggregatorWithDeps creates an Aggregator with injected dependencies.
// A nil finalizer skips run statistics; a nil enhancer disables enhancement.
func NewAggregatorWithDeps(
	cfg config.Config,
	runFinalizer metadata.RunFinalizer,
	metadataSink metadata.MetadataSink,
	enh enhancer.Enhancer,
) *Aggregator {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	if enh == nil {
		enh = enhancer.Noop{}
	}
	return &Aggregator{
		cfg:          cfg,
		metadataSink: metadataSink,
		runFinalizer: runFinalizer,
		resolver:     source.NewResolver(),
		extractor: extractor.NewExtractor(metadataSink, extractor.DefaultRegistry(), extractor.Options{
			ProductCap: cfg.ProductCap(),
			HeroLimit:  cfg.HeroLimit(),
			FAQLimit:   cfg.FAQLimit(),
		}),
		enhancer: enh,
		now:      time.Now,
	}
}

// ExtractInsights validates rawURL and runs the pipeline against it.
// Invalid input returns a *target.TargetError before any request is made.
func (a *Aggregator) ExtractInsights(ctx context.Context, rawURL string) (insight.Document, error) {
	t, err := target.Parse(rawURL)
	if err != nil {
		a.metadataSink.RecordError(
			time.Now(),
			"aggregator",
			"Aggregator.ExtractInsights",
			metadata.CauseContentInvalid,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, rawURL),
			},
		)
		return insight.Document{}, err
	}
	return a.ExtractTarget(ctx, t)
}

// ExtractTarget runs the pipeline against a parsed target. The only errors
// are *RunError values: an unreachable storefront or a cancelled ctx.
func (a *Aggregator) ExtractTarget(ctx context.Context, t target.StoreTarget) (doc insight.Document, runErr error) {
	runStart := time.Now()
	defer func() {
		if a.runFinalizer == nil {
			return
		}
		a.runFinalizer.RecordRunStats(
			t.Domain(),
			runErr == nil && doc.ExtractionSuccess,
			doc.TotalProducts,
			len(doc.Warnings),
			time.Since(runStart),
		)
	}()

	sources := a.collect(ctx, t)

	if ctx.Err() != nil {
		err := newCancelledError(t.Domain(), ctx.Err())
		a.recordRunError(t, err)
		return insight.Document{}, err
	}

	home := sources.get(source.KindHomePage)
	if home.Unreachable {
		err := newUnreachableError(t.Domain(), home.Status.String())
		a.recordRunError(t, err)
		return insight.Document{}, err
	}

	doc = a.assemble(t, sources)
	doc = a.enhance(ctx, doc)

	doc.ExtractionTimestamp = a.now().UTC()
	fingerprint, err := hashutil.HashJSON(doc.FingerprintView(), hashutil.HashAlgoBLAKE3)
	if err == nil {
		doc.Fingerprint = fingerprint
	}
	return doc, nil
}

// collect probes every candidate kind concurrently. Probes never fail; once
// the overall deadline passes, outstanding ones report Timeout.
func (a *Aggregator) collect(ctx context.Context, t target.StoreTarget) sourceSet {
	runCtx, cancel := context.WithTimeout(ctx, a.cfg.OverallTimeout())
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(a.cfg.RequestsPerSecond()), a.cfg.RequestBurst())
	f := fetcher.NewHTTPFetcher(
		a.metadataSink,
		limiter,
		retry.RetryParam{MaxAttempts: a.cfg.MaxAttempt(), Backoff: a.cfg.RetryBackoff()},
		a.cfg.MaxBodyBytes(),
	)
	param := source.ProbeParam{UserAgent: a.cfg.UserAgent(), Timeout: a.cfg.FetchTimeout()}

	candidates := a.resolver.Resolve(t)
	results := make([]source.RawSource, len(candidates))

	g := new(errgroup.Group)
	g.SetLimit(a.cfg.FetchConcurrency())
	for i, candidate := range candidates {
		g.Go(func() error {
			results[i] = source.Probe(runCtx, f, param, candidate)
			return nil
		})
	}
	_ = g.Wait()

	sources := make(sourceSet, len(results))
	for _, raw := range results {
		sources[raw.Kind] = raw
	}
	return sources
}

func (a *Aggregator) recordRunError(t target.StoreTarget, err *RunError) {
	a.metadataSink.RecordError(
		time.Now(),
		"aggregator",
		"Aggregator.ExtractTarget",
		mapRunErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrDomain, t.Domain()),
		},
	)
}

// enhance refines brand context and FAQs under its own deadline. Failures
// keep the extracted values and leave a warning.
func (a *Aggregator) enhance(ctx context.Context, doc insight.Document) insight.Document {
	if _, noop := a.enhancer.(enhancer.Noop); noop {
		return doc
	}
	enhanceCtx, cancel := context.WithTimeout(ctx, a.cfg.EnhancerTimeout())
	defer cancel()

	out, err := a.enhancer.Enhance(enhanceCtx, enhancer.Input{
		Domain:       doc.Domain,
		BrandContext: doc.BrandContext,
		FAQs:         doc.FAQs,
	})
	if err != nil {
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("enhancement skipped: %v", err))
		return doc
	}

	doc.BrandContext = out.BrandContext
	if doc.BrandContext.Name != "" {
		doc.BrandName = doc.BrandContext.Name
	}
	if out.FAQs != nil {
		doc.FAQs = out.FAQs
	}
	status := doc.FieldReport[insight.FieldFAQs]
	status.Count = len(doc.FAQs)
	status.Found = len(doc.FAQs) > 0
	doc.FieldReport[insight.FieldFAQs] = status
	return doc
}
