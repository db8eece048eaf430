package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-ejs/internal/ejsval"
	"github.com/cwbudde/go-ejs/internal/loader"
	"github.com/spf13/cobra"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm <module.mod>",
	Short: "Print a human-readable listing of a module's bytecode",
	Args:  cobra.ExactArgs(1),
	RunE:  runDisasm,
}

func init() {
	rootCmd.AddCommand(disasmCmd)
}

func runDisasm(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	ld := loader.NewLoader(nil)
	mod, err := ld.LoadModule(data)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", args[0], err)
	}
	if err := ld.ResolveFixups(); err != nil {
		return fmt.Errorf("resolving %s: %w", args[0], err)
	}

	fmt.Printf("module %s %d.%d.%d\n", mod.Name, mod.Ver.Major(), mod.Ver.Minor(), mod.Ver.Patch())

	if mod.Initializer != nil {
		disassembleFunction(mod.Initializer)
	}
	for _, t := range ld.Types() {
		if t.Module != mod {
			continue
		}
		fmt.Printf("\nclass %s\n", t.Name)
		for slot := 0; slot < t.GetPropertyCount(); slot++ {
			if v, err := t.GetProperty(slot); err == nil {
				if fn, ok := v.(*ejsval.Function); ok {
					disassembleFunction(fn)
				}
			}
		}
	}
	return nil
}

func disassembleFunction(fn *ejsval.Function) {
	d := ejsval.NewDisassembler(fn, os.Stdout)
	d.Disassemble()
}
