package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/go-ejs/pkg/ejs"
	"github.com/spf13/cobra"
)

var (
	entryFunc string
	showStats bool
)

var runCmd = &cobra.Command{
	Use:   "run <module.mod>",
	Short: "Load a module, run its initializers, and optionally call a function",
	Long: `Load a compiled Ejscript module, run its initializer, and (with
--call) invoke a named function: Class.method, or a bare name looked up
on the global object. Only the named module file is loaded; the modules
it depends on are not loaded, so the initializer of a module with a
dependency fails with an error.

Examples:
  # Just run a module's initializers
  ejsrun run app.mod

  # Run app.mod and then call App.main()
  ejsrun run app.mod --call App.main`,
	Args: cobra.ExactArgs(1),
	RunE: runModule,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&entryFunc, "call", "", "Class.method to invoke after initializers run")
	runCmd.Flags().BoolVar(&showStats, "gc-stats", false, "print collector stats after running")
}

func runModule(cmd *cobra.Command, args []string) error {
	path := args[0]

	searchPath, err := cmd.Flags().GetStringArray("path")
	if err != nil {
		return err
	}
	searchPath = append(searchPath, filepath.Dir(path), ".")
	if envPath := os.Getenv("EJSPATH"); envPath != "" {
		searchPath = append(searchPath, strings.Split(envPath, string(os.PathListSeparator))...)
	}

	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return err
	}

	svc := ejs.NewService(searchPath...)
	svc.SetVerbose(verbose)
	interp := ejs.NewInterpreter(svc)

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	mod, err := interp.LoadModule(name, 0, ^ejs.Version(0))
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	if err := interp.RunInitializer(mod); err != nil {
		if le, ok := interp.LastError(); ok {
			return fmt.Errorf("running initializer for %s: %s", mod.Name(), le.Message)
		}
		return fmt.Errorf("running initializer for %s: %w", mod.Name(), err)
	}

	if entryFunc != "" {
		class, method, ok := strings.Cut(entryFunc, ".")
		if !ok {
			class, method = "", entryFunc
		}
		if _, err := interp.RunFunction(class, method); err != nil {
			return fmt.Errorf("calling %s: %w", entryFunc, err)
		}
	}

	if showStats {
		fmt.Fprintf(os.Stdout, "gc: %+v\n", interp.Stats())
	}

	return nil
}
