/*
Copyright © 2022 Leo Antunes <leo@costela.net>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command ulsbench benchmarks the flow and assignment formulations of the
// uncapacitated lot-sizing problem and solves single instances.
package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/golang/glog"
	"github.com/urfave/cli"

	"github.com/costela/lotsizing"
	"github.com/costela/lotsizing/glpk"
	"github.com/costela/lotsizing/lpsolve"
)

const (
	solverLPSolve = "lpsolve"
	solverGLPK    = "glpk"
)

// glogLogger forwards lotsizing and backend messages to glog at a fixed
// verbosity.
type glogLogger struct {
	level log.Level
}

func (l glogLogger) Print(v ...interface{}) {
	log.V(l.level).Info(v...)
}

var commonFlags = []cli.Flag{
	cli.StringFlag{Name: "variant", Value: "flow", Usage: "formulation: flow or assignment"},
	cli.StringFlag{Name: "solver", Value: solverLPSolve, Usage: "backend: lpsolve or glpk"},
	cli.StringFlag{Name: "big-m", Value: "total", Usage: "flow linking constant: total or remaining demand"},
	cli.DurationFlag{Name: "time-limit", Value: lotsizing.DefaultConfig().TimeLimit, Usage: "time limit per solve"},
	cli.Float64Flag{Name: "rel-gap", Value: lotsizing.DefaultConfig().RelativeGap, Usage: "relative MIP gap"},
	cli.Float64Flag{Name: "abs-gap", Value: lotsizing.DefaultConfig().AbsoluteGap, Usage: "absolute MIP gap (lpsolve only)"},
	cli.StringFlag{Name: "config", Usage: "YAML configuration file; explicit flags take precedence"},
	cli.BoolFlag{Name: "verbose", Usage: "forward solver output to the log"},
}

func main() {
	// glog reads its settings from the standard flag set
	flag.Set("logtostderr", "true")
	flag.CommandLine.Parse(nil)
	defer log.Flush()

	app := cli.NewApp()
	app.Name = "ulsbench"
	app.Usage = "compare MIP formulations of the uncapacitated lot-sizing problem"
	app.Commands = []cli.Command{
		{
			Name:  "bench",
			Usage: "evaluate a directory of instances and write a LaTeX table",
			Flags: append([]cli.Flag{
				cli.StringFlag{Name: "dir", Value: "instances", Usage: "directory of instance files"},
				cli.StringFlag{Name: "out", Usage: "LaTeX output file (stdout if empty)"},
				cli.StringFlag{Name: "parquet", Usage: "also export the rows to this Parquet file"},
				cli.StringFlag{Name: "caption", Usage: "table caption"},
				cli.StringFlag{Name: "label", Usage: "table label"},
				cli.IntFlag{Name: "workers", Value: 1, Usage: "instances evaluated concurrently"},
				cli.Float64Flag{Name: "check", Usage: "verify integer solutions with this tolerance (0 disables)"},
			}, commonFlags...),
			Action: bench,
		},
		{
			Name:      "solve",
			Usage:     "solve a single instance and print its solution",
			ArgsUsage: "FILE",
			Flags: append([]cli.Flag{
				cli.BoolFlag{Name: "relaxed", Usage: "solve the LP relaxation"},
			}, commonFlags...),
			Action: solve,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error(err)
		log.Flush()
		os.Exit(1)
	}
}

func newSolver(s settings) lotsizing.Solver {
	chatter := glogLogger{level: 1}
	if s.config.Verbose {
		chatter.level = 0
	}

	if s.solver == solverGLPK {
		return glpk.New(glpk.WithLogger(chatter))
	}
	return lpsolve.New(lpsolve.WithLogger(chatter))
}

func bench(c *cli.Context) error {
	s, err := resolve(c)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}

	opts := []lotsizing.Option{
		lotsizing.WithVariant(s.variant),
		lotsizing.WithConfig(s.config),
		lotsizing.WithBigM(s.bigM),
		lotsizing.WithWorkers(s.workers),
		lotsizing.WithLogger(glogLogger{}),
		lotsizing.WithSystemInfo(lotsizing.CollectSystemInfo()),
	}
	if tol := c.Float64("check"); tol > 0 {
		opts = append(opts, lotsizing.WithSolutionCheck(tol))
	}

	eval, err := lotsizing.NewEvaluator(newSolver(s), opts...)
	if err != nil {
		return err
	}

	batch, err := eval.EvaluateDir(c.String("dir"))
	if err != nil {
		return err
	}

	log.Infof("evaluated %d instances: %d failed, %d without solution",
		batch.Aggregate.Rows, batch.Aggregate.Failed, batch.Aggregate.Skipped)

	out := os.Stdout
	if path := c.String("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating report: %w", err)
		}
		defer f.Close()
		out = f
	}

	report := lotsizing.Report{Caption: c.String("caption"), Label: c.String("label")}
	if err := report.Render(out, batch); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	if path := c.String("parquet"); path != "" {
		if err := lotsizing.ExportParquet(path, batch); err != nil {
			return err
		}
		log.Infof("wrote %s", path)
	}

	return nil
}

func solve(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("expected exactly one instance file", 2)
	}

	s, err := resolve(c)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}

	inst, err := lotsizing.ReadInstanceFile(c.Args().First())
	if err != nil {
		return err
	}

	f, err := lotsizing.Build(inst, s.variant, c.Bool("relaxed"), lotsizing.UsingBigM(s.bigM))
	if err != nil {
		return err
	}

	log.Infof("solving %s: %d columns, %d constraints", f.Name, f.ColumnCount(), f.ConstraintCount())

	res, err := lotsizing.Solve(newSolver(s), f, s.config)
	if err != nil {
		return err
	}

	if err := lotsizing.WriteSummary(os.Stdout, res); err != nil {
		return err
	}
	fmt.Println()

	return lotsizing.WriteSolution(os.Stdout, res)
}
