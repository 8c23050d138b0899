package main

import (
	"context"
	"strings"

	"github.com/scott-cotton/cli"
)

func main() {
	cli.MainContext(context.Background(), MainCommand())
}

func MainCommand() *cli.Command {
	cfg := &Config{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Command, "getters-gen").
		WithSynopsis("getters-gen [opts]").
		WithDescription("Generate read-only accessor methods for the fields of structs marked //getters:generate.").
		WithOpts(opts...).
		WithRun(cfg.run)
}

type Config struct {
	*cli.Command

	Dir        string `cli:"name=dir desc='directory to scan for Go files (default: current directory)'"`
	Recursive  bool   `cli:"name=recursive desc='scan subdirectories recursively'"`
	Types      string `cli:"name=type desc='comma separated struct types to generate getters for, in addition to marked ones'"`
	OutputFile string `cli:"name=o desc='output file name (default: <package>_getters.go)'"`
	ConfigFile string `cli:"name=config desc='configuration file (default: .getters.yaml of each package)'"`
	Check      bool   `cli:"name=check desc='print the diff of out of date files instead of writing them'"`
	Strict     bool   `cli:"name=strict desc='fail on warnings'"`
	Color      bool   `cli:"name=color desc='force colored diagnostics'"`
	Verbose    bool   `cli:"name=v desc='log progress'"`
	Jobs       int    `cli:"name=j desc='number of packages processed concurrently (default 4)'"`
}

func (cfg *Config) types() []string {
	var res []string
	for _, t := range strings.Split(cfg.Types, ",") {
		if t = strings.TrimSpace(t); t != "" {
			res = append(res, t)
		}
	}
	return res
}
