package main

import (
	"fmt"
	"sync"

	"github.com/alitto/pond"
	"github.com/sirupsen/logrus"

	"github.com/grazhopper/svndumptool/datecodec"
	"github.com/grazhopper/svndumptool/dump"
)

type checkOptions struct {
	files              []string
	md5, dates, copyFrom bool
}

// runCheck scans files concurrently via pond, the way the teacher farms blob
// work out to a worker pool, reporting every integrity failure it finds
// rather than stopping at the first one (spec.md §7 policy).
func runCheck(log *logrus.Logger, o checkOptions) error {
	pool := pond.New(4, 0, pond.MinWorkers(1))
	defer pool.StopAndWait()

	var mu sync.Mutex
	total := 0
	var wg sync.WaitGroup

	for _, path := range o.files {
		path := path
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			n, err := checkOneFile(log, path, o)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fmt.Printf("%s: %v\n", path, err)
				total++
				return
			}
			total += n
		})
	}
	wg.Wait()

	if total > 0 {
		return &errFindings{count: total}
	}
	return nil
}

func checkOneFile(log *logrus.Logger, path string, o checkOptions) (int, error) {
	r, err := dump.Open(log, path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	found := 0
	revs := map[int]bool{}
	var prevDate datecodec.Stamp
	havePrevDate := false

	for {
		ok, err := r.ReadNextRev()
		if err != nil {
			return found, err
		}
		if !ok {
			break
		}
		revs[r.Rev()] = true

		if o.dates {
			d := r.Date()
			if havePrevDate && d.Less(prevDate) {
				fmt.Printf("%s: r%d: date is earlier than the previous revision\n", path, r.Rev())
				found++
			}
			prevDate = d
			havePrevDate = true
		}

		for _, n := range r.Nodes() {
			if o.copyFrom && n.CopyFrom != nil && !revs[n.CopyFrom.Rev] {
				fmt.Printf("%s: r%d: %s copies from unseen revision r%d\n", path, r.Rev(), n.Path, n.CopyFrom.Rev)
				found++
			}
			if o.md5 && n.HasText() {
				d := datecodec.NewDigester()
				if _, err := n.Text.WriteTo(d); err != nil {
					return found, err
				}
				if d.Sum() != n.Text.MD5 {
					fmt.Printf("%s: r%d: %s content MD5 mismatch\n", path, r.Rev(), n.Path)
					found++
				}
			}
		}
	}
	return found, nil
}
