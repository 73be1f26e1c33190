package main

import (
	"os"
	"strings"

	"github.com/emicklei/dot"
	"github.com/sirupsen/logrus"

	"github.com/grazhopper/svndumptool/dumperr"
	"github.com/grazhopper/svndumptool/merge"
)

// mergePlanBuilder accumulates a merge.Plan from the merge subcommand's
// -i/-r/-x flags in the exact order they appear on the command line: each
// -i starts a new plan input, and a following -r/-x attaches to that input
// (spec.md §6: "-r adds a prefix rename pair to the most-recently-named -i
// input, -x adds a suppress-mkdir path to it").
type mergePlanBuilder struct {
	plan *merge.Plan
}

func newMergePlanBuilder() *mergePlanBuilder {
	return &mergePlanBuilder{plan: &merge.Plan{}}
}

func (b *mergePlanBuilder) addInput(path string) error {
	b.plan.Inputs = append(b.plan.Inputs, merge.InputSpec{Path: path})
	return nil
}

func (b *mergePlanBuilder) addRename(spec string) error {
	if len(b.plan.Inputs) == 0 {
		return dumperr.New(dumperr.InvalidArgument, "merge: -r given before any -i")
	}
	from, to, ok := strings.Cut(spec, "=")
	if !ok {
		return dumperr.New(dumperr.InvalidArgument, "merge: -r wants from=to")
	}
	last := &b.plan.Inputs[len(b.plan.Inputs)-1]
	last.Renames = append(last.Renames, merge.Rename{From: from, To: to})
	return nil
}

func (b *mergePlanBuilder) addSuppressMkdir(path string) error {
	if len(b.plan.Inputs) == 0 {
		return dumperr.New(dumperr.InvalidArgument, "merge: -x given before any -i")
	}
	last := &b.plan.Inputs[len(b.plan.Inputs)-1]
	last.SuppressMkdir = append(last.SuppressMkdir, path)
	return nil
}

// cumulativeValue adapts a func(string) error into a repeatable kingpin
// flag value, invoking set once per occurrence in command-line order —
// the hook that lets mergePlanBuilder see -i/-r/-x interleaved correctly.
type cumulativeValue struct {
	set func(string) error
}

func (v *cumulativeValue) Set(s string) error { return v.set(s) }
func (v *cumulativeValue) String() string     { return "" }
func (v *cumulativeValue) IsCumulative() bool { return true }

// runMerge builds the final Plan (optionally seeded from a YAML file, then
// extended by the flag-built plan) and executes it once.
func runMerge(log *logrus.Logger, flagPlan *merge.Plan, planFile, extraDirsMsg, out, graphPath string) error {
	plan := flagPlan
	if planFile != "" {
		base, err := merge.LoadPlanFile(planFile)
		if err != nil {
			return err
		}
		base.Inputs = append(base.Inputs, flagPlan.Inputs...)
		base.ExtraDirs = append(base.ExtraDirs, flagPlan.ExtraDirs...)
		plan = base
	}
	if out != "" {
		plan.Output = out
	}
	if extraDirsMsg != "" {
		plan.ExtraDirsMessage = extraDirsMsg
	}
	if len(plan.Inputs) == 0 {
		return dumperr.New(dumperr.InvalidArgument, "merge: no inputs (need -i or --plan)")
	}
	if plan.Output == "" {
		return dumperr.New(dumperr.InvalidArgument, "merge: no output path (set -o or plan.output)")
	}

	eng := merge.NewEngine(log, plan)
	if graphPath != "" {
		eng.Graph = dot.NewGraph(dot.Directed)
	}
	if err := eng.Run(plan.Output); err != nil {
		return err
	}
	if graphPath != "" {
		if err := os.WriteFile(graphPath, []byte(eng.Graph.String()), 0o644); err != nil {
			return dumperr.Wrap(dumperr.IO, "merge: writing graph file", err)
		}
	}
	return nil
}
