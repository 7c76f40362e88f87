// Command webbuild bundles the campus viewer into web/client.js.
//
// Run it from internal/server (go generate does). Pass -dev for an
// unminified bundle with an inline source map.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
)

func viewerOptions(root string, dev bool) api.BuildOptions {
	opts := api.BuildOptions{
		EntryPoints:   []string{filepath.Join(root, "web", "src", "main.ts")},
		Outfile:       filepath.Join(root, "web", "client.js"),
		AbsWorkingDir: root,
		Bundle:        true,
		Format:        api.FormatIIFE,
		Target:        api.ES2018,
		Platform:      api.PlatformBrowser,
		LogLevel:      api.LogLevelInfo,
		Write:         true,
		Loader:        map[string]api.Loader{".ts": api.LoaderTS},
		LegalComments: api.LegalCommentsNone,
		TreeShaking:   api.TreeShakingTrue,
	}
	if dev {
		opts.Sourcemap = api.SourceMapInline
	} else {
		opts.MinifyWhitespace = true
		opts.MinifySyntax = true
	}
	return opts
}

func main() {
	dev := flag.Bool("dev", false, "skip minification and inline a source map")
	root := flag.String("root", "", "directory holding web/ (default: working directory)")
	flag.Parse()

	dir := *root
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			log.Fatalf("webbuild: getwd: %v", err)
		}
		dir = wd
	}

	result := api.Build(viewerOptions(dir, *dev))
	for _, msg := range result.Warnings {
		log.Printf("webbuild: warning: %s", msg.Text)
	}
	if len(result.Errors) > 0 {
		for _, msg := range result.Errors {
			log.Printf("webbuild: %s", msg.Text)
		}
		log.Fatalf("webbuild: %d error(s) bundling the viewer", len(result.Errors))
	}
}
