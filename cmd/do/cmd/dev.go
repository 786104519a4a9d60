package cmd

import (
	"fmt"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

const (
	appPort   = "8090"
	proxyPort = "8080"
)

// devDefaults let `do dev` start without a .env file. Values already in the
// environment win.
var devDefaults = map[string]string{
	"APP_ENV":      "development",
	"APP_URL":      "http://localhost:" + proxyPort,
	"JWT_SECRET":   "dev-secret-change-me",
	"API_BASE_URL": "http://localhost:5000",
}

func DevCmd() *cobra.Command {
	var api string

	c := &cobra.Command{
		Use:   "dev",
		Short: "Run the server under air with live reload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			airPath, err := exec.LookPath("air")
			if err != nil {
				return fmt.Errorf("air not found, install with: go install github.com/air-verse/air@latest")
			}

			env := devEnv(os.Environ())
			if api != "" {
				env = append(env, "API_BASE_URL="+api)
			}
			return syscall.Exec(airPath, airArgs(), env)
		},
	}

	c.Flags().StringVar(&api, "api", "", "REST backend to develop against")
	return c
}

// devEnv returns environ plus the missing dev defaults and the app port.
func devEnv(environ []string) []string {
	set := make(map[string]bool, len(environ))
	for _, kv := range environ {
		k, _, _ := strings.Cut(kv, "=")
		set[k] = true
	}

	env := slices.Clone(environ)
	for _, k := range slices.Sorted(maps.Keys(devDefaults)) {
		if !set[k] {
			env = append(env, k+"="+devDefaults[k])
		}
	}
	return append(env, "PORT="+appPort)
}

func airArgs() []string {
	return []string{
		"air",
		"-c", "/dev/null",
		"-root", ".",
		"-build.cmd", "go run ./cmd/do gen && go build -o ./tmp/server ./cmd/server",
		"-build.bin", "./tmp/server",
		"-build.delay", "100",
		"-build.exclude_dir", "bin,tmp,node_modules",
		"-build.exclude_regex", "_templ.go$|_test.go$|output\\.css$|htmx\\.min\\.js$",
		"-build.include_ext", "go,templ,css,js,md",
		"-build.send_interrupt", "true",
		"-build.kill_delay", "500ms",
		"-proxy.enabled", "true",
		"-proxy.proxy_port", proxyPort,
		"-proxy.app_port", appPort,
	}
}
