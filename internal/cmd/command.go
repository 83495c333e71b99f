package cmd

import (
	"github.com/jessevdk/go-flags"
)

type Xzip struct {
	Add     Add     `command:"add" alias:"a" description:"add files and directories to an archive"`
	Extract Extract `command:"extract" alias:"x" description:"extract entries from an archive"`
	List    List    `command:"list" alias:"ls" description:"list the entries of archives"`
	Delete  Delete  `command:"delete" alias:"rm" description:"delete entries from an archive"`
	Check   Check   `command:"check" description:"check the consistency of archives"`
	Merge   Merge   `command:"merge" description:"merge archives into a new one"`
	Comment Comment `command:"comment" description:"print or change the comment of an archive"`
}

func NewParser() (*flags.Parser, error) {
	opts := &Xzip{}

	p := flags.NewNamedParser("xzip", flags.Default)
	if _, err := p.AddGroup("Global Options", "", opts); err != nil {
		return nil, err
	}

	return p, nil
}
