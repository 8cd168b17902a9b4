// Package build runs the agreed generation pipeline.
//
// One pass scans the views directory (and the models directory when
// configured), derives the route tree, the model registry and the
// navigation tree, and emits the artifact. Nothing is written when any step
// fails: the previous artifact stays in place and every error of the pass is
// returned, joined.
//
// # Usage
//
//	builder := build.New(cfg, build.Options{Logger: logger})
//	result, err := builder.Build(ctx)
//	if err != nil {
//	    errors.Fprint(os.Stderr, err)
//	    os.Exit(1)
//	}
//
//	fmt.Printf("%s in %s\n", result.Emit.Status, result.Duration)
//
// # Spans
//
// Each pass records an agreed.build span with agreed.plan, agreed.scan,
// agreed.emit and agreed.publish children on the configured tracer.
package build
