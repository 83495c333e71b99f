package cmd

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/xzip"
	"github.com/nguyengg/xzip/codec"
	"github.com/nguyengg/xzip/internal"
	"github.com/nguyengg/xzip/internal/config"
	"golang.org/x/time/rate"
)

type Add struct {
	Flatten     bool              `long:"flatten" description:"add the content of directories instead of the directories themselves"`
	Compression *codec.Method     `short:"c" long:"compression" description:"compression method of added files"`
	Encryption  *codec.Encryption `short:"e" long:"encryption" description:"encryption method of added files; requires --password"`
	Password    string            `short:"p" long:"password" description:"password used to encrypt added files"`
	Skip        *xzip.SkipPolicy  `long:"skip" description:"which files found in directories are skipped"`
	BasePath    string            `long:"base-path" description:"directory that relative files are resolved against"`
	Overwrite   bool              `long:"overwrite" description:"discard the existing content of the archive"`
	Comment     *string           `long:"comment" description:"set the archive comment"`
	Args        struct {
		Archive flags.Filename   `positional-arg-name:"archive" description:"the archive to add to; created if it does not exist" required:"yes"`
		Files   []flags.Filename `positional-arg-name:"file" description:"the local files and directories to be added" required:"yes"`
	} `positional-args:"yes"`
}

func (c *Add) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	defaults, err := config.ForDefaults()
	if err != nil {
		return fmt.Errorf("load config error: %w", err)
	}

	compression := internal.FirstNonNilPtr(c.Compression, defaults.Compression)
	encryption := internal.FirstNonNilPtr(c.Encryption, defaults.Encryption)
	skip := internal.FirstNonNilPtr(c.Skip, defaults.SkipMode)

	progress := &internal.Progress{}
	a, err := xzip.Create(string(c.Args.Archive), c.Overwrite, func(opts *codec.Options) {
		opts.Progress = progress
	})
	if err != nil {
		return err
	}

	if c.BasePath != "" {
		if err = a.SetPath(c.BasePath); err != nil {
			_ = a.Discard()
			return err
		}
	}
	if skip != nil {
		a.SetSkipPolicy(*skip)
	}
	a.SetPassword(c.Password)

	targets := make([]string, len(c.Args.Files))
	for i, f := range c.Args.Files {
		targets[i] = string(f)
	}

	n := 0
	sometimes := rate.Sometimes{Interval: 5 * time.Second}
	if err = a.Add(targets, func(opts *xzip.AddOptions) {
		opts.FlattenRoot = c.Flatten
		if compression != nil {
			opts.Compression = *compression
		}
		if encryption != nil {
			opts.Encryption = *encryption
		}
		opts.Reporter = func(src, name string) {
			n++
			sometimes.Do(func() {
				log.Printf(`[%d] added "%s" as "%s"`, n, src, name)
			})
		}
	}); err != nil {
		_ = a.Discard()
		return err
	}

	if c.Comment != nil {
		if err = a.SetComment(*c.Comment); err != nil {
			_ = a.Discard()
			return err
		}
	}

	progress.Start(a.PendingBytes(), "compressing")
	err = a.Close()
	progress.Finish()
	if err != nil {
		return err
	}

	log.Printf(`successfully added %d entries to "%s"`, n, c.Args.Archive)
	return nil
}
