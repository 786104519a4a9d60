package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
)

const (
	htmxVersion = "2.0.4"
	htmxPath    = "assets/js/htmx.min.js"
)

type generator struct {
	name   string
	bin    string
	args   []string
	skipFn func() bool
	runFn  func() error // custom run function (if set, bin/args ignored)
}

func GenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen",
		Short: "Run code generators (templ, tailwind, htmx) in parallel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen()
		},
	}
}

func runGen() error {
	required := []string{"tailwindcss", "templ"}
	var missing []string
	for _, bin := range required {
		if _, err := exec.LookPath(bin); err != nil {
			missing = append(missing, bin)
		}
	}
	if len(missing) > 0 {
		fmt.Println("Missing binaries:", missing)
		fmt.Println("Install with:")
		fmt.Println("  go install github.com/a-h/templ/cmd/templ@latest")
		fmt.Println("  # tailwindcss: https://tailwindcss.com/blog/standalone-cli")
		return fmt.Errorf("missing required binaries: %v", missing)
	}

	generators := []generator{
		{
			name:   "tailwindcss",
			bin:    "tailwindcss",
			args:   []string{"-i", "assets/css/input.css", "-o", "assets/css/output.css", "--minify"},
			skipFn: skipTailwind,
		},
		{
			name:   "templ",
			bin:    "templ",
			args:   []string{"generate"},
			skipFn: skipTempl,
		},
		{
			name:   "htmx",
			skipFn: skipHtmx,
			runFn:  vendorHtmx,
		},
	}

	start := time.Now()
	var wg sync.WaitGroup
	errCh := make(chan error, len(generators))

	for _, g := range generators {
		wg.Add(1)
		go func(g generator) {
			defer wg.Done()

			if g.skipFn != nil && g.skipFn() {
				fmt.Printf("[%s] skipped\n", g.name)
				return
			}

			genStart := time.Now()
			var err error
			if g.runFn != nil {
				err = g.runFn()
			} else {
				cmd := exec.Command(g.bin, g.args...)
				cmd.Stdout = os.Stdout
				cmd.Stderr = os.Stderr
				err = cmd.Run()
			}

			if err != nil {
				errCh <- fmt.Errorf("%s: %w", g.name, err)
				return
			}

			fmt.Printf("[%s] done (%s)\n", g.name, time.Since(genStart).Round(time.Millisecond))
		}(g)
	}

	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Println("error:", err)
		}
		return fmt.Errorf("generation failed")
	}

	fmt.Printf("done (%s)\n", time.Since(start).Round(time.Millisecond))
	return nil
}

// skipTailwind reports whether output.css is newer than every component and script.
func skipTailwind() bool {
	inputs := []string{"assets/css/input.css"}
	_ = filepath.WalkDir("internal/ui", func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".templ") || strings.HasSuffix(path, ".go") {
			inputs = append(inputs, path)
		}
		return nil
	})
	jsFiles, _ := filepath.Glob("assets/js/*.js")
	inputs = append(inputs, jsFiles...)
	return isUpToDate("assets/css/output.css", inputs)
}

// skipTempl reports whether every .templ file has a newer _templ.go beside it.
func skipTempl() bool {
	var templFiles []string
	_ = filepath.WalkDir("internal", func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".templ") {
			templFiles = append(templFiles, path)
		}
		return nil
	})

	for _, templFile := range templFiles {
		outFile := strings.TrimSuffix(templFile, ".templ") + "_templ.go"
		if !isUpToDate(outFile, []string{templFile}) {
			return false
		}
	}
	return true
}

func skipHtmx() bool {
	_, err := os.Stat(htmxPath)
	return err == nil
}

// vendorHtmx downloads the pinned htmx build so the server embeds it.
func vendorHtmx() error {
	url := fmt.Sprintf("https://unpkg.com/htmx.org@%s/dist/htmx.min.js", htmxVersion)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	tmp := htmxPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	_, err = io.Copy(f, resp.Body)
	closeErr := f.Close()
	if err != nil {
		os.Remove(tmp)
		return err
	}
	if closeErr != nil {
		os.Remove(tmp)
		return closeErr
	}
	return os.Rename(tmp, htmxPath)
}

func isUpToDate(output string, inputs []string) bool {
	outInfo, err := os.Stat(output)
	if err != nil {
		return false
	}
	outMod := outInfo.ModTime()

	for _, input := range inputs {
		inInfo, err := os.Stat(input)
		if err != nil {
			continue
		}
		if inInfo.ModTime().After(outMod) {
			return false
		}
	}
	return true
}
