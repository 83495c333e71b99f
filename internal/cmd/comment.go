package cmd

import (
	"fmt"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/xzip"
)

type Comment struct {
	Args struct {
		Archive flags.Filename `positional-arg-name:"archive" description:"the archive whose comment is printed or changed" required:"yes"`
		Text    []string       `positional-arg-name:"text" description:"the new comment; the current comment is printed if not given"`
	} `positional-args:"yes"`
}

func (c *Comment) Execute(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unknown positional arguments: %s", strings.Join(args, " "))
	}

	a, err := xzip.Open(string(c.Args.Archive))
	if err != nil {
		return err
	}

	if len(c.Args.Text) == 0 {
		defer a.Discard()

		comment, err := a.Comment()
		if err != nil {
			return err
		}

		fmt.Println(comment)
		return nil
	}

	if err = a.SetComment(strings.Join(c.Args.Text, " ")); err != nil {
		_ = a.Discard()
		return err
	}

	return a.Close()
}
