package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

// bannerCharDelay is the pause between characters of the intro banner.
const bannerCharDelay = 3 * time.Millisecond

// playBanner types the ASCII art in path out one character at a time.
func playBanner(out io.Writer, path string, delay time.Duration) error {
	art, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read banner: %w", err)
	}

	bannerColor := color.New(color.FgMagenta)
	fmt.Fprintln(out)
	for _, r := range string(art) {
		bannerColor.Fprint(out, string(r))
		if delay > 0 {
			time.Sleep(delay)
		}
	}
	fmt.Fprint(out, "\n\n")
	return nil
}
