package main

import (
	"context"
	"errors"
	"log"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/xzip/internal/cmd"
	"github.com/nguyengg/xzip/internal/config"
)

func main() {
	log.SetFlags(0)

	p, err := cmd.NewParser()
	if err != nil {
		log.Fatalf("create parser error: %v", err)
	}

	p.CommandHandler = func(command flags.Commander, args []string) error {
		if name, err := config.Load(context.Background()); err != nil {
			log.Printf(`load config "%s" error: %v`, name, err)
			return err
		}

		if err := command.Execute(args); err != nil {
			log.Printf("error: %v", err)
			return err
		}

		return nil
	}

	_, err = p.Parse()
	exit(err)
}

// exitCode returns 0 for a nil error or a help request, 2 for command line errors, 1 otherwise.
func exitCode(err error) int {
	var flagsErr *flags.Error
	switch {
	case err == nil || flags.WroteHelp(err):
		return 0
	case errors.As(err, &flagsErr) && flagsErr.Type != flags.ErrUnknown:
		return 2
	default:
		return 1
	}
}
