package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/grazhopper/svndumptool/dump"
)

func runLog(log *logrus.Logger, src string, verbose bool) error {
	r, err := dump.Open(log, src)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		ok, err := r.ReadNextRev()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		fmt.Printf("r%d | %s | %s\n", r.Rev(), r.Author(), r.DateString())
		if msg := r.Log(); msg != "" {
			fmt.Println(msg)
		}
		if verbose {
			for _, n := range r.Nodes() {
				fmt.Printf("   %c %s\n", n.Action.Letter(), n.Path)
			}
		}
	}
}
