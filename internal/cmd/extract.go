package cmd

import (
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/xzip"
	"github.com/nguyengg/xzip/codec"
	"github.com/nguyengg/xzip/internal"
	"github.com/nguyengg/xzip/internal/config"
)

type Extract struct {
	Destination flags.Filename   `short:"d" long:"destination" description:"the directory to extract to; created if it does not exist" default:"."`
	Mask        *config.Mask     `long:"mask" description:"octal permission of the destination if it has to be created"`
	Password    string           `short:"p" long:"password" description:"password used to decrypt encrypted entries"`
	Skip        *xzip.SkipPolicy `long:"skip" description:"which entries are skipped if no entries are given"`
	Args        struct {
		Archive flags.Filename `positional-arg-name:"archive" description:"the archive to extract" required:"yes"`
		Entries []string       `positional-arg-name:"entry" description:"the entries to extract; all entries if none are given"`
	} `positional-args:"yes"`
}

func (c *Extract) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	defaults, err := config.ForDefaults()
	if err != nil {
		return fmt.Errorf("load config error: %w", err)
	}

	progress := &internal.Progress{}
	a, err := xzip.Open(string(c.Args.Archive), func(opts *codec.Options) {
		opts.Progress = progress
	})
	if err != nil {
		return err
	}
	defer a.Close()

	if mask := internal.FirstNonNilPtr(c.Mask, defaults.Mask); mask != nil {
		if err = a.SetMask(fs.FileMode(*mask)); err != nil {
			return err
		}
	}
	if skip := internal.FirstNonNilPtr(c.Skip, defaults.SkipMode); skip != nil {
		a.SetSkipPolicy(*skip)
	}
	a.SetPassword(c.Password)

	entries, err := a.Entries()
	if err != nil {
		return err
	}

	var size int64
	for _, e := range entries {
		size += e.Size
	}

	progress.Start(size, "extracting")
	err = a.Extract(string(c.Destination), c.Args.Entries...)
	progress.Finish()
	if err != nil {
		return err
	}

	log.Printf(`successfully extracted "%s" to "%s"`, c.Args.Archive, c.Destination)
	return nil
}
