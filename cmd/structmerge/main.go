package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dusk-indust/structmerge"
	"github.com/dusk-indust/structmerge/internal/files"
	"github.com/dusk-indust/structmerge/internal/runner"
)

// CLI flags parsed from command line.
type cliFlags struct {
	Left  string
	Base  string
	Right string

	LeftDir  string
	BaseDir  string
	RightDir string

	Output    string
	OutputDir string

	Textual bool
	Version bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	opts, err := structmerge.LoadOptions(cwd)
	if err != nil {
		return err
	}

	var flags cliFlags

	fs := flag.NewFlagSet("structmerge", flag.ContinueOnError)
	fs.StringVar(&flags.Left, "left", "", "path to the left (mine) revision of the file")
	fs.StringVar(&flags.Base, "base", "", "path to the base (ancestor) revision of the file")
	fs.StringVar(&flags.Right, "right", "", "path to the right (yours) revision of the file")
	fs.StringVar(&flags.LeftDir, "left-dir", "", "directory holding the left revision tree")
	fs.StringVar(&flags.BaseDir, "base-dir", "", "directory holding the base revision tree")
	fs.StringVar(&flags.RightDir, "right-dir", "", "directory holding the right revision tree")
	fs.StringVar(&flags.Output, "output", "", "write the merged file here instead of stdout")
	fs.StringVar(&flags.OutputDir, "output-dir", "", "write merged trees here in directory mode")
	fs.BoolVar(&flags.Textual, "textual", false, "plain line-based merge, no tree structure")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	// Option flags default to the resolved project configuration.
	fs.BoolVar(&opts.ShowBase, "show-base", opts.ShowBase, "include the base contribution in conflicts")
	fs.BoolVar(&opts.IgnoreWhitespace, "ignore-whitespace", opts.IgnoreWhitespace, "ignore whitespace when matching lines")
	fs.BoolVar(&opts.Git, "git", opts.Git, "git merge-driver mode: quiet, any file extension")
	strategy := fs.String("strategy", string(opts.TextualMergeStrategy), "textual merge strategy: diff3 or csdiff+diff3")
	fs.BoolVar(&opts.TypeAmbiguityErrorHandler, "handler-type-ambiguity", opts.TypeAmbiguityErrorHandler, "detect ambiguous imports")
	fs.BoolVar(&opts.NewElementReferencingEditedOneHandler, "handler-new-reference", opts.NewElementReferencingEditedOneHandler, "detect new elements referencing edited ones")
	fs.BoolVar(&opts.MethodAndConstructorRenamingAndDeletionHandler, "handler-renaming", opts.MethodAndConstructorRenamingAndDeletionHandler, "classify renamings and deletions")
	fs.BoolVar(&opts.InitializationBlocksHandler, "handler-init-blocks", opts.InitializationBlocksHandler, "compose initializer blocks")
	fs.BoolVar(&opts.InitializationBlocksHandlerMultipleBlocks, "handler-init-blocks-multiple", opts.InitializationBlocksHandlerMultipleBlocks, "re-match multiple initializer blocks (requires -handler-init-blocks=false)")
	fs.BoolVar(&opts.DuplicatedDeclarationHandler, "handler-duplicated", opts.DuplicatedDeclarationHandler, "collapse duplicated declarations")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	opts.TextualMergeStrategy = structmerge.Strategy(*strategy)
	if err := opts.Validate(); err != nil {
		return err
	}

	switch {
	case flags.LeftDir != "" || flags.BaseDir != "" || flags.RightDir != "":
		return runDirectories(&flags, opts)
	case flags.Left != "" && flags.Base != "" && flags.Right != "":
		return runSingle(&flags, opts)
	default:
		fs.Usage()
		return fmt.Errorf("need -left/-base/-right files or -left-dir/-base-dir/-right-dir trees")
	}
}

func runSingle(flags *cliFlags, opts *structmerge.Options) error {
	if flags.Textual {
		output, err := structmerge.ThreeWayTextualMerge(flags.Left, flags.Base, flags.Right, opts.IgnoreWhitespace)
		if err != nil {
			return err
		}
		return emit(flags.Output, output, files.EncodingUTF8)
	}

	res, err := structmerge.SemistructuredMerge(flags.Left, flags.Base, flags.Right, opts)
	if err != nil {
		return err
	}
	if err := emit(flags.Output, res.Output, res.Encoding); err != nil {
		return err
	}
	if res.Conflicts > 0 && !opts.Git {
		fmt.Fprintf(os.Stderr, "%d conflict(s)\n", res.Conflicts)
	}
	return nil
}

func runDirectories(flags *cliFlags, opts *structmerge.Options) error {
	if flags.LeftDir == "" || flags.BaseDir == "" || flags.RightDir == "" {
		return fmt.Errorf("directory mode needs all of -left-dir, -base-dir, -right-dir")
	}

	results, err := runner.MergeDirectories(context.Background(),
		flags.LeftDir, flags.BaseDir, flags.RightDir, flags.OutputDir, opts)
	if results == nil && err != nil {
		return err
	}

	conflicts := 0
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.Relative, r.Err)
			continue
		}
		conflicts += r.Conflicts
	}
	fmt.Fprintf(os.Stderr, "merged %d file(s), %d conflict(s), %d failed\n",
		len(results)-failed, conflicts, failed)
	if err != nil {
		return fmt.Errorf("%d file(s) failed to merge", failed)
	}
	return nil
}

func emit(path, output string, enc files.Encoding) error {
	if path == "" {
		_, err := fmt.Print(output)
		return err
	}
	return files.WriteText(path, output, enc)
}
