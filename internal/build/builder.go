package build

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/agreed/internal/artifact"
	"github.com/vango-dev/agreed/internal/config"
	"github.com/vango-dev/agreed/internal/publish"
	"github.com/vango-dev/agreed/pkg/fstree"
	"github.com/vango-dev/agreed/pkg/model"
	"github.com/vango-dev/agreed/pkg/router"
)

// TracerName is the OpenTelemetry instrumentation name used for build spans.
const TracerName = "github.com/vango-dev/agreed/internal/build"

// Plan is the derived registration data, before anything is written.
type Plan struct {
	// Routes holds the root descriptor.
	Routes []router.RouteDescriptor

	// Models is the model registry. Empty when modelsPath is not set.
	Models model.Registry

	// Navs is the navigation tree derived from Routes.
	Navs []router.NavItem

	// Warnings are non-fatal conditions from scanning and building.
	Warnings []fstree.Warning
}

// Content returns the plan as artifact content.
func (p *Plan) Content() artifact.Content {
	return artifact.Content{Routes: p.Routes, Models: p.Models, Navs: p.Navs}
}

// Result contains the output of one build pass.
type Result struct {
	// Skipped is true when the pipeline is disabled by configuration.
	Skipped bool

	// Plan is the derived data. Nil when scanning failed.
	Plan *Plan

	// Emit describes the artifact write. Nil when nothing was emitted.
	Emit *artifact.EmitResult

	// Warnings are non-fatal conditions, including publish failures.
	Warnings []fstree.Warning

	// Err joins every fatal error of the pass.
	Err error

	// Duration is how long the build took.
	Duration time.Duration
}

// Success reports whether the pass completed without fatal errors.
func (r *Result) Success() bool {
	return r.Err == nil
}

// Options configures the builder.
type Options struct {
	// Logger receives build logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Tracer records a span per pass. Defaults to the global provider.
	Tracer trace.Tracer

	// Publisher, when set, receives every written artifact.
	Publisher publish.Publisher

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Builder runs the scan, build and emit pipeline for one configuration.
type Builder struct {
	config  *config.Config
	options Options
	emitter *artifact.Emitter
}

// New creates a new builder.
func New(cfg *config.Config, options Options) *Builder {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Tracer == nil {
		options.Tracer = otel.Tracer(TracerName)
	}

	return &Builder{
		config:  cfg,
		options: options,
		emitter: artifact.NewEmitter(artifact.Options{
			Package:   cfg.Package,
			Runtime:   cfg.Runtime,
			ViewsDir:  cfg.ViewsDir(),
			ModelsDir: cfg.ModelsDir(),
		}, options.Logger),
	}
}

// Config returns the configuration the builder runs with.
func (b *Builder) Config() *config.Config {
	return b.config
}

// Plan scans the views and models directories and derives routes, models
// and navigation. Both builders always run so that every error is reported;
// the returned error joins all of them.
func (b *Builder) Plan(ctx context.Context) (*Plan, error) {
	ctx, span := b.options.Tracer.Start(ctx, "agreed.plan")
	defer span.End()

	plan := &Plan{Models: model.Registry{}}
	var errs []error

	b.progress("Scanning views...")
	views, err := b.scan(ctx, b.config.ViewsDir())
	if err != nil {
		errs = append(errs, err)
	} else {
		plan.Warnings = append(plan.Warnings, views.Warnings...)

		b.progress("Building routes...")
		built, err := router.NewBuilder(router.BuildOptions{Base: b.config.Base}).Build(views.Root)
		if err != nil {
			errs = append(errs, err)
		} else {
			plan.Routes = built.Routes
			plan.Warnings = append(plan.Warnings, built.Warnings...)
			plan.Navs = router.BuildNavs(built.Routes)
		}
	}

	if b.config.HasModels() {
		b.progress("Scanning models...")
		models, err := b.scan(ctx, b.config.ModelsDir())
		if err != nil {
			errs = append(errs, err)
		} else {
			plan.Warnings = append(plan.Warnings, models.Warnings...)

			b.progress("Building model registry...")
			registry, err := model.NewBuilder().Build(models.Root)
			if err != nil {
				errs = append(errs, err)
			} else {
				plan.Models = registry
			}
		}
	}

	span.SetAttributes(
		attribute.Int("agreed.warnings", len(plan.Warnings)),
		attribute.Int("agreed.models", len(plan.Models)),
	)
	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "plan failed")
		return plan, err
	}
	return plan, nil
}

func (b *Builder) scan(ctx context.Context, root string) (*fstree.ScanResult, error) {
	_, span := b.options.Tracer.Start(ctx, "agreed.scan", trace.WithAttributes(
		attribute.String("agreed.root", root),
	))
	defer span.End()

	result, err := fstree.NewScanner(root, fstree.Options{
		Ignore:     b.config.Ignore,
		Extensions: b.config.Extensions,
	}).Scan()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scan failed")
		return nil, err
	}
	return result, nil
}

// Build runs one full pass: plan, then emit when the plan has no errors,
// then publish when the artifact was written. A failed pass never touches
// the existing artifact.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{}

	if !b.config.Enable {
		result.Skipped = true
		result.Duration = time.Since(start)
		b.options.Logger.Debug("agreed disabled, skipping build")
		return result, nil
	}

	ctx, span := b.options.Tracer.Start(ctx, "agreed.build", trace.WithAttributes(
		attribute.String("agreed.artifact", b.config.ArtifactPath()),
	))
	defer span.End()

	plan, err := b.Plan(ctx)
	result.Plan = plan
	if plan != nil {
		result.Warnings = append(result.Warnings, plan.Warnings...)
	}
	if err != nil {
		return b.fail(span, result, start, err)
	}

	b.progress("Writing artifact...")
	emitted, err := b.emit(ctx, plan)
	if err != nil {
		return b.fail(span, result, start, err)
	}
	result.Emit = emitted
	if emitted.Backup != "" {
		result.Warnings = append(result.Warnings, fstree.Warning{
			Code:    fstree.WarnBackup,
			Path:    emitted.Path,
			Message: "existing file had no agreed markers; saved to " + emitted.Backup,
		})
	}

	if emitted.Status == artifact.StatusWritten && b.options.Publisher != nil {
		b.progress("Publishing artifact...")
		if w, ok := b.publish(ctx, emitted.Path); !ok {
			result.Warnings = append(result.Warnings, w)
		}
	}

	result.Duration = time.Since(start)
	span.SetAttributes(attribute.String("agreed.status", emitted.Status.String()))
	b.options.Logger.Info("build complete",
		"status", emitted.Status.String(),
		"hash", emitted.Hash,
		"duration", result.Duration,
	)
	return result, nil
}

func (b *Builder) fail(span trace.Span, result *Result, start time.Time, err error) (*Result, error) {
	result.Err = err
	result.Duration = time.Since(start)
	span.RecordError(err)
	span.SetStatus(codes.Error, "build failed")
	b.options.Logger.Warn("build failed, previous artifact kept", "error", err)
	return result, err
}

func (b *Builder) emit(ctx context.Context, plan *Plan) (*artifact.EmitResult, error) {
	_, span := b.options.Tracer.Start(ctx, "agreed.emit")
	defer span.End()

	emitted, err := b.emitter.Emit(b.config.ArtifactPath(), plan.Content())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "emit failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("agreed.hash", emitted.Hash))
	return emitted, nil
}

func (b *Builder) publish(ctx context.Context, path string) (fstree.Warning, bool) {
	ctx, span := b.options.Tracer.Start(ctx, "agreed.publish")
	defer span.End()

	data, err := os.ReadFile(path)
	if err == nil {
		err = b.options.Publisher.Publish(ctx, path, data)
	}
	if err != nil {
		span.RecordError(err)
		b.options.Logger.Warn("publish failed", "path", path, "error", err)
		return fstree.Warning{Code: fstree.WarnPublish, Path: path, Message: err.Error()}, false
	}
	return fstree.Warning{}, true
}

// Preview returns the artifact a build would write, without writing it.
func (b *Builder) Preview(ctx context.Context) ([]byte, *Plan, error) {
	plan, err := b.Plan(ctx)
	if err != nil {
		return nil, plan, err
	}
	out, _, err := b.emitter.Render(b.config.ArtifactPath(), plan.Content())
	if err != nil {
		return nil, plan, err
	}
	return out, plan, nil
}

// progress reports a build step.
func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}
