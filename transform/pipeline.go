package transform

import "github.com/grazhopper/svndumptool/dump"

// Pipeline runs a fixed sequence of dump.Transform stages against each
// revision in order, itself satisfying dump.Transform so it can be handed
// straight to dump.CopyAll (spec §4.F "a configured list of stages run in
// order"). An empty Pipeline is a valid no-op, used by the copy subcommand.
type Pipeline struct {
	Stages []dump.Transform
}

// Apply runs every stage against r in order, stopping at the first error.
func (p Pipeline) Apply(r *dump.Reader) error {
	for _, stage := range p.Stages {
		if err := stage.Apply(r); err != nil {
			return err
		}
	}
	return nil
}
