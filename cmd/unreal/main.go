// This file is part of unreal-ng.
//
// unreal-ng is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// unreal-ng is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with unreal-ng.  If not, see <https://www.gnu.org/licenses/>.

// Command unreal runs the engine headlessly or drops into its interactive
// debugger console, the two entry points gopher2600.go offers as RUN/PLAY
// and DEBUG modes, reshaped here onto a single cobra command tree (the
// pack's other cobra-based emulator front-ends, e.g. mze, wire flags the
// same way) instead of a hand-rolled flag.FlagSet switch.
package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/alfishe/unreal-ng-sub004/pkg/console"
	"github.com/alfishe/unreal-ng-sub004/pkg/emulator"
	"github.com/alfishe/unreal-ng-sub004/pkg/model"
)

var (
	modelName  string
	romPath    string
	tapePath   string
	diskPath   string
	snapshot   string
	runOnly    bool
	scriptPath string
)

var rootCmd = &cobra.Command{
	Use:   "unreal [rom-path]",
	Short: "unreal-ng: a cycle-accurate ZX Spectrum family emulator",
	Long: `unreal-ng emulates the ZX Spectrum 48K/128K/+2A/+3 family plus the
Pentagon, Scorpion, Profi and TSConf clones.

Supported models (-m/--model): 48k, 128k, +2a, +3, pentagon128,
pentagon512, pentagon1024, scorpion, profi, tsconf.

By default the command powers the machine on and drops into the
interactive debugger console; pass --run to execute without a console
attached.`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVarP(&modelName, "model", "m", "128k", "machine model")
	rootCmd.Flags().StringVar(&romPath, "rom", "", "ROM directory or combined image (overrides the positional rom-path argument)")
	rootCmd.Flags().StringVar(&tapePath, "tape", "", "tape file to load (.tap/.tzx)")
	rootCmd.Flags().StringVar(&diskPath, "disk", "", "disk image to attach (.trd/.scl)")
	rootCmd.Flags().StringVar(&snapshot, "snapshot", "", "snapshot file to load (.sna/.z80)")
	rootCmd.Flags().BoolVar(&runOnly, "run", false, "run without attaching the interactive console")
	rootCmd.Flags().StringVar(&scriptPath, "script", "", "command script to execute before handing off to the console")
}

func run(cmd *cobra.Command, args []string) error {
	id, ok := model.ParseID(modelName)
	if !ok {
		return fmt.Errorf("unknown model %q", modelName)
	}

	path := romPath
	if path == "" && len(args) > 0 {
		path = args[0]
	}

	ctx := emulator.New(id)
	if path != "" {
		if err := ctx.Init(path); err != nil {
			return err
		}
	} else {
		ctx.Reset()
	}

	con := console.New(ctx, os.Stdout)

	if snapshot != "" {
		if err := con.Dispatch("loadsnapshot " + snapshot); err != nil {
			return err
		}
	}
	if tapePath != "" {
		if err := con.Dispatch("loadtape " + tapePath); err != nil {
			return err
		}
	}
	if diskPath != "" {
		if err := con.Dispatch("loaddisk " + diskPath); err != nil {
			return err
		}
	}
	if scriptPath != "" {
		if err := runScript(con, scriptPath); err != nil {
			return err
		}
	}

	if runOnly {
		ctx.StartAsync()
		defer ctx.Stop()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		<-sig
		return nil
	}

	return con.Run(os.Stdin)
}

// runScript dispatches one console command per non-blank line of path,
// stopping at the first error.
func runScript(con *console.Console, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	for _, line := range splitLines(string(data)) {
		if err := con.Dispatch(line); err != nil && err != console.ErrQuit {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
