package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/xzip"
	"github.com/nguyengg/xzip/internal"
)

type List struct {
	Long bool `short:"l" long:"long" description:"print size, method, and modification time of each entry"`
	Args struct {
		Archives []flags.Filename `positional-arg-name:"archive" description:"the archives to list" required:"yes"`
	} `positional-args:"yes"`
}

func (c *List) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	n := len(c.Args.Archives)
	for i, name := range c.Args.Archives {
		if err := c.list(string(name)); err != nil {
			internal.NewLogger(i, n, name).Printf("list error: %v", err)
			return err
		}
	}

	return nil
}

func (c *List) list(name string) error {
	a, err := xzip.Open(name)
	if err != nil {
		return err
	}
	defer a.Discard()

	if len(c.Args.Archives) > 1 {
		fmt.Printf("%s:\n", name)
	}

	if !c.Long {
		files, err := a.ListFiles()
		if err != nil {
			return err
		}

		for _, f := range files {
			fmt.Println(f)
		}
		return nil
	}

	entries, err := a.Entries()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			humanize.IBytes(uint64(e.Size)),
			e.Method,
			e.Encryption,
			e.Modified.Format("2006-01-02 15:04"),
			e.Name)
	}

	return w.Flush()
}
