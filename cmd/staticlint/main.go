// Command staticlint runs the static analysis used on this repository: standard
// analyzers from the Go toolchain, third-party analyzers and the project's own
// deferunlock analyzer, combined into a single `multichecker.Main` invocation.
//
// The set of honnef.co/go/tools checks is read from a JSON file, config.json
// next to the binary unless STATICLINT_CONFIG names another one. Entries are
// check names ("SA4006", "S1002", "ST1003") or a prefix ending in "*"
// ("SA*") that enables a whole family.
package main

import (
	// Standard analyzers from the Go toolchain.
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"

	// Third-party analyzers.
	"github.com/gordonklaus/ineffassign/pkg/ineffassign"
	"github.com/gostaticanalysis/nilerr"

	// Custom analyzer.
	"github.com/patric-chuzhbe/usersvc/cmd/staticlint/deferunlock"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"

	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config is the default name of the JSON configuration file.
const Config = `config.json`

// ConfigEnv names the environment variable overriding the config path.
const ConfigEnv = `STATICLINT_CONFIG`

// ConfigData describes the structure of the configuration file.
type ConfigData struct {
	Staticcheck []string
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	// Always on.
	myChecks := []*analysis.Analyzer{
		copylock.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		printf.Analyzer,
		structtag.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,

		ineffassign.Analyzer,
		nilerr.Analyzer,

		deferunlock.Analyzer,
	}

	myChecks = append(myChecks, selectChecks(cfg.Staticcheck, staticcheck.Analyzers, simple.Analyzers, stylecheck.Analyzers)...)

	multichecker.Main(myChecks...)
}

func loadConfig() (ConfigData, error) {
	var cfg ConfigData

	path := os.Getenv(ConfigEnv)
	if path == "" {
		appfile, err := os.Executable()
		if err != nil {
			return cfg, err
		}
		path = filepath.Join(filepath.Dir(appfile), Config)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	if err = json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// selectChecks returns the analyzers whose names match one of the patterns.
func selectChecks(patterns []string, sets ...[]*lint.Analyzer) []*analysis.Analyzer {
	var selected []*analysis.Analyzer

	for _, set := range sets {
		for _, v := range set {
			if matchesAny(v.Analyzer.Name, patterns) {
				selected = append(selected, v.Analyzer)
			}
		}
	}

	return selected
}

func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
			if strings.HasPrefix(name, prefix) {
				return true
			}
			continue
		}
		if name == pattern {
			return true
		}
	}

	return false
}
