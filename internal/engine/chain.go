package engine

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ancients-collective/hostaudit/internal/types"
)

// Fact is implemented by every normalized fact value. HasValue reports
// whether a parser extracted at least one field.
type Fact interface {
	HasValue() bool
}

// Attempt is what a probe hands back to the chain: the evidence it recorded
// and the text for the parser.
type Attempt struct {
	Evidence types.Evidence
	Text     string
}

// Probe runs one source. It must always return an Attempt.
type Probe func(ctx context.Context) Attempt

// Strategy pairs a probe with the parser for its output.
type Strategy[T Fact] struct {
	// Source is reported in the fact's source field when this strategy wins.
	Source string
	Probe  Probe
	Parse  func(text string) T
}

// Chain is an ordered fallback list for one fact.
type Chain[T Fact] struct {
	// Fact names the fact in logs, e.g. "default_route".
	Fact string

	// Remediation is reported when every strategy is exhausted.
	Remediation string

	Strategies []Strategy[T]
}

// CommandProbe returns a probe that runs argv through r.
func CommandProbe(r Runner, argv ...string) Probe {
	return func(ctx context.Context) Attempt {
		ev := Record(argv, r.Run(ctx, argv))
		return Attempt{Evidence: ev, Text: ev.Stdout}
	}
}

// FileProbe returns a probe that reads path through fr.
func FileProbe(fr FileReader, path string) Probe {
	return func(_ context.Context) Attempt {
		data, err := fr.ReadFile(path)
		ev := RecordRead(path, data, err)
		return Attempt{Evidence: ev, Text: ev.Stdout}
	}
}

// Resolve runs the strategies strictly in order and returns the first
// non-empty extraction together with its status envelope. Evidence is kept
// for every attempt. When nothing yields a value the zero T is returned
// with a not-checked status aggregating every failure.
func (c Chain[T]) Resolve(ctx context.Context, log logrus.FieldLogger) (T, types.FactStatus) {
	var zero T
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("fact", c.Fact)

	evidence := make([]types.Evidence, 0, len(c.Strategies))
	var failures []*types.ProbeError

	for _, s := range c.Strategies {
		attempt := s.Probe(ctx)
		evidence = append(evidence, attempt.Evidence)

		if kind, msg := Classify(attempt.Evidence); kind != "" {
			failures = append(failures, &types.ProbeError{Kind: kind, Source: s.Source, Message: msg})
			log.WithFields(logrus.Fields{"source": s.Source, "kind": kind}).Debug("source unusable, falling back")
			continue
		}

		value := s.Parse(attempt.Text)
		if !value.HasValue() {
			failures = append(failures, &types.ProbeError{
				Kind:    types.ErrParseInconclusive,
				Source:  s.Source,
				Message: "output matched no known pattern",
			})
			log.WithField("source", s.Source).Debug("parse inconclusive, falling back")
			continue
		}

		return value, types.CheckedStatus(s.Source, evidence)
	}

	kind, msg := aggregate(failures)
	log.WithFields(logrus.Fields{"kind": kind, "attempts": len(evidence)}).Info("no source produced a value")
	return zero, types.NotCheckedStatus(kind, msg, c.Remediation, evidence)
}

// aggregate joins attempt failures into one message. The reported kind is
// that of the last attempt.
func aggregate(failures []*types.ProbeError) (types.ErrorKind, string) {
	if len(failures) == 0 {
		return types.ErrProbeUnavailable, "no sources configured"
	}
	parts := make([]string, len(failures))
	for i, f := range failures {
		parts[i] = f.Error()
	}
	return failures[len(failures)-1].Kind, strings.Join(parts, "; ")
}
