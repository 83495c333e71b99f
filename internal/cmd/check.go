package cmd

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/xzip"
	"github.com/nguyengg/xzip/internal"
	"github.com/nguyengg/xzip/internal/executor"
)

type Check struct {
	Parallel int `short:"P" long:"parallel" description:"number of archives to check in parallel" default:"1"`
	Args     struct {
		Archives []flags.Filename `positional-arg-name:"archive" description:"the archives to check" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Check) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	// the caller goroutine also runs tasks so one fewer worker is needed.
	ex := executor.New(c.Parallel - 1)

	var success atomic.Int32
	n := len(c.Args.Archives)
	for i, name := range c.Args.Archives {
		ex.Execute(func() {
			logger := internal.NewLogger(i, n, name)

			if err := xzip.Check(string(name)); err != nil {
				logger.Printf("check error: %v", err)
				return
			}

			logger.Printf("ok")
			success.Add(1)
		})
	}

	_ = ex.Close()

	log.Printf("successfully checked %d/%d files", success.Load(), n)
	if failed := n - int(success.Load()); failed != 0 {
		return fmt.Errorf("%d/%d files failed the check", failed, n)
	}

	return nil
}
