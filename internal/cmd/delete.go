package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/xzip"
)

type Delete struct {
	Args struct {
		Archive flags.Filename `positional-arg-name:"archive" description:"the archive to delete from" required:"yes"`
		Entries []string       `positional-arg-name:"entry" description:"the entries to delete" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Delete) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	a, err := xzip.Open(string(c.Args.Archive))
	if err != nil {
		return err
	}

	if err = a.Delete(c.Args.Entries...); err != nil {
		_ = a.Discard()
		return err
	}

	if err = a.Close(); err != nil {
		return err
	}

	log.Printf(`successfully deleted %d entries from "%s"`, len(c.Args.Entries), c.Args.Archive)
	return nil
}
