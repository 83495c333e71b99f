package internal

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// DefaultBytes is equivalent to progressbar.DefaultBytes but with higher progressbar.OptionThrottle.
func DefaultBytes(maxBytes int64, description string, options ...progressbar.Option) *progressbar.ProgressBar {
	return progressbar.NewOptions64(maxBytes,
		append([]progressbar.Option{
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(10),
			progressbar.OptionThrottle(1 * time.Second),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				_, _ = fmt.Fprint(os.Stderr, "\n")
			}),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetRenderBlankState(true)},
			options...)...)
}

// Progress is an io.Writer for codec.Options.Progress whose bar is only created once the total size is known.
//
// Writes before Start and after Finish are discarded.
type Progress struct {
	bar *progressbar.ProgressBar
}

// Start creates the progress bar. Nothing is shown if size is not positive.
func (p *Progress) Start(size int64, description string) {
	if size > 0 {
		p.bar = DefaultBytes(size, description)
	}
}

func (p *Progress) Write(b []byte) (int, error) {
	if p.bar == nil {
		return len(b), nil
	}

	return p.bar.Write(b)
}

// Finish completes and removes the progress bar.
func (p *Progress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
