package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/xzip"
	"github.com/nguyengg/xzip/internal/config"
)

type Merge struct {
	Output   flags.Filename `short:"o" long:"output" description:"the archive to merge into; entries are appended if it exists" required:"yes"`
	Separate bool           `long:"separate" description:"put the content of each archive into its own folder named after the archive"`
	Args     struct {
		Archives []flags.Filename `positional-arg-name:"archive" description:"the archives to merge" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Merge) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	cfg := config.ForMerge()

	m := &xzip.Manager{}
	defer m.Close()

	for _, name := range c.Args.Archives {
		a, err := xzip.Open(string(name))
		if err != nil {
			return err
		}

		m.AddZip(a)
	}

	if err := m.Merge(string(c.Output), c.Separate || cfg.Separate); err != nil {
		return err
	}

	log.Printf(`successfully merged %d archives into "%s"`, m.Count(), c.Output)
	return nil
}
