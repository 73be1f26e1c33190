package main

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/alitto/pond"
	"github.com/sirupsen/logrus"

	"github.com/grazhopper/svndumptool/dump"
	"github.com/grazhopper/svndumptool/node"
)

type diffOptions struct {
	a, b           string
	checkContent   bool
	checkEOL       bool
	kinds          []string
	ignoreRevProps []string
	ignoreProps    []string
}

func kindAllowed(kinds []string, k node.Kind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, s := range kinds {
		if s == k.String() {
			return true
		}
	}
	return false
}

func propsDiffer(an, bn *node.Node, ignore map[string]bool) bool {
	seen := map[string]bool{}
	check := func(props *node.Node) bool {
		if props.Props == nil {
			return false
		}
		for _, name := range props.Props.Names() {
			if ignore[name] || seen[name] {
				continue
			}
			seen[name] = true
			av, aok := valueOf(an, name)
			bv, bok := valueOf(bn, name)
			if aok != bok || av != bv {
				return true
			}
		}
		return false
	}
	return check(an) || check(bn)
}

func valueOf(n *node.Node, name string) (string, bool) {
	if n.Props == nil {
		return "", false
	}
	return n.Props.Get(name)
}

// eolNormalizeForDiff reduces every CRLF/CR to LF, the same collapse
// eolfix's CRLF+CR option chain performs, so two buffers that differ only
// in line-ending style compare equal after this pass.
func eolNormalizeForDiff(data []byte) []byte {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
}

// contentDiffKind returns "" if an/bn's content is identical, "EOL" if it
// differs only in line-ending style and checkEOL is set (spec.md S6), or
// "Text" for any other content difference.
func contentDiffKind(pool *pond.WorkerPool, an, bn *node.Node, checkEOL bool) (string, error) {
	var aBuf, bBuf bytes.Buffer
	var aErr, bErr error
	var wg sync.WaitGroup
	wg.Add(2)
	pool.Submit(func() {
		defer wg.Done()
		_, aErr = an.Text.WriteTo(&aBuf)
	})
	pool.Submit(func() {
		defer wg.Done()
		_, bErr = bn.Text.WriteTo(&bBuf)
	})
	wg.Wait()
	if aErr != nil {
		return "", aErr
	}
	if bErr != nil {
		return "", bErr
	}
	if bytes.Equal(aBuf.Bytes(), bBuf.Bytes()) {
		return "", nil
	}
	if checkEOL && bytes.Equal(eolNormalizeForDiff(aBuf.Bytes()), eolNormalizeForDiff(bBuf.Bytes())) {
		return "EOL", nil
	}
	return "Text", nil
}

// runDiff walks a and b on a shared revision-number cursor, reporting
// added/removed/changed nodes per revision (SPEC_FULL.md §C). It reports
// every difference it finds and, once the walk ends, returns *errFindings
// (mapped to exit code 1) if any unignored difference was found. A
// difference in revision count or numbering ends the walk early.
func runDiff(log *logrus.Logger, o diffOptions) error {
	ra, err := dump.Open(log, o.a)
	if err != nil {
		return err
	}
	defer ra.Close()
	rb, err := dump.Open(log, o.b)
	if err != nil {
		return err
	}
	defer rb.Close()

	ignoreProp := make(map[string]bool, len(o.ignoreProps))
	for _, p := range o.ignoreProps {
		ignoreProp[p] = true
	}
	ignoreRevProp := make(map[string]bool, len(o.ignoreRevProps))
	for _, p := range o.ignoreRevProps {
		ignoreRevProp[p] = true
	}

	var pool *pond.WorkerPool
	if o.checkContent {
		pool = pond.New(4, 0, pond.MinWorkers(1))
		defer pool.StopAndWait()
	}

	found := 0
	for {
		okA, err := ra.ReadNextRev()
		if err != nil {
			return err
		}
		okB, err := rb.ReadNextRev()
		if err != nil {
			return err
		}
		if !okA && !okB {
			break
		}
		if okA != okB {
			fmt.Println("revision count differs between inputs")
			found++
			break
		}
		if ra.Rev() != rb.Rev() {
			fmt.Printf("revision numbering diverges: %d vs %d\n", ra.Rev(), rb.Rev())
			found++
			break
		}

		for _, name := range ra.Props().Names() {
			if ignoreRevProp[name] {
				continue
			}
			av, _ := ra.Props().Get(name)
			bv, _ := rb.Props().Get(name)
			if av != bv {
				fmt.Printf("r%d: revision property %s differs\n", ra.Rev(), name)
				found++
			}
		}

		idxA, idxB := ra.Index(), rb.Index()
		for key, an := range idxA {
			if !kindAllowed(o.kinds, an.Kind) {
				continue
			}
			bn, ok := idxB[key]
			if !ok {
				fmt.Printf("r%d: removed %s\n", ra.Rev(), an.Path)
				found++
				continue
			}
			if propsDiffer(an, bn, ignoreProp) {
				fmt.Printf("r%d: properties differ %s\n", ra.Rev(), an.Path)
				found++
			}
			if o.checkContent && an.HasText() && bn.HasText() {
				kind, err := contentDiffKind(pool, an, bn, o.checkEOL)
				if err != nil {
					return err
				}
				if kind != "" {
					fmt.Printf("r%d: content differs (%s) %s\n", ra.Rev(), kind, an.Path)
					found++
				}
			}
		}
		for key, bn := range idxB {
			if !kindAllowed(o.kinds, bn.Kind) {
				continue
			}
			if _, ok := idxA[key]; !ok {
				fmt.Printf("r%d: added %s\n", rb.Rev(), bn.Path)
				found++
			}
		}
	}

	if found > 0 {
		return &errFindings{count: found}
	}
	return nil
}
