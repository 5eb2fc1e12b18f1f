package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/kr/pretty"

	"github.com/gmofishsauce/jvmcc/internal/ast"
	"github.com/gmofishsauce/jvmcc/internal/compiler"
	"github.com/gmofishsauce/jvmcc/internal/config"
	"github.com/gmofishsauce/jvmcc/internal/diag"
	"github.com/gmofishsauce/jvmcc/internal/emit"
	"github.com/gmofishsauce/jvmcc/internal/lexer"
	"github.com/gmofishsauce/jvmcc/internal/parser"
	"github.com/gmofishsauce/jvmcc/internal/token"
)

// pendingOutput is one mode's output file, written to a uuid-suffixed
// temporary name so a failed run never corrupts a previous successful
// one and --keep-partial has something distinct to point at.
type pendingOutput struct {
	final string
	tmp   string
	file  *os.File
}

func createOutput(finalPath string) (*pendingOutput, error) {
	tmp := fmt.Sprintf("%s.%s.tmp", finalPath, uuid.NewString())
	f, err := os.Create(tmp)
	if err != nil {
		return nil, fmt.Errorf("cannot create output file: %w", err)
	}
	return &pendingOutput{final: finalPath, tmp: tmp, file: f}, nil
}

func (o *pendingOutput) commit() error {
	if err := o.file.Close(); err != nil {
		return err
	}
	return os.Rename(o.tmp, o.final)
}

func (o *pendingOutput) abort() {
	o.file.Close()
	if keepPartial {
		fmt.Fprintf(os.Stderr, "keeping partial output at %s\n", o.tmp)
		return
	}
	os.Remove(o.tmp)
}

// baseName strips the mandated two-character extension from an input
// path, e.g. "prog.c" -> "prog".
func baseName(path string) string {
	if len(path) < 2 {
		return path
	}
	return path[:len(path)-2]
}

// outputPath builds the path a stage's output file is written to: suffix
// appended to the input's base name, redirected into cfg.OutputDir when
// that's set, alongside the input file otherwise.
func outputPath(cfg config.Config, file, suffix string) string {
	base := baseName(file) + suffix
	if cfg.OutputDir == "" {
		return base
	}
	return filepath.Join(cfg.OutputDir, filepath.Base(base))
}

func loadConfig() (config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	if _, err := os.Stat(".jcc.yaml"); err == nil {
		return config.Load(".jcc.yaml")
	}
	return config.Default(), nil
}

func newCompiler(file string) (*compiler.Compiler, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "jcc: compiling %s with configuration %+v\n", file, cfg)
	}
	return compiler.New(file, cfg), nil
}

// runLex implements mode -1: tokenize file and write one line per token
// to <base>.lexer.
func runLex(file string) error {
	c, err := newCompiler(file)
	if err != nil {
		return err
	}
	lx, err := lexer.Open(file, c.Config.IncludePath, c.Diag)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", file, err)
	}
	defer lx.Close()

	out, err := createOutput(outputPath(c.Config, file, ".lexer"))
	if err != nil {
		return err
	}
	for {
		t := lx.Next()
		if c.Diag.HasErrors() {
			out.abort()
			return c.Diag.First()
		}
		if t.ID == token.END {
			break
		}
		fmt.Fprintln(out.file, t.String())
	}
	return out.commit()
}

// parseFile runs the combined parse/typecheck pass shared by modes -2, -3
// and -4.
func parseFile(file string) (*ast.Program, *compiler.Compiler, error) {
	c, err := newCompiler(file)
	if err != nil {
		return nil, nil, err
	}
	lx, err := lexer.Open(file, c.Config.IncludePath, c.Diag)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open %s: %w", file, err)
	}
	defer lx.Close()

	p := parser.New(lx, c)
	prog, perr := p.Parse()
	if perr != nil {
		return prog, c, perr
	}
	if c.Diag.HasErrors() {
		return prog, c, c.Diag.First()
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "jcc: parsed program:\n%# v\n", pretty.Formatter(prog))
		fmt.Fprintf(os.Stderr, "jcc: symbol tables:\n%# v\n", pretty.Formatter(c.Symbols))
	}
	return prog, c, nil
}

// runParse implements mode -2: the declaration/parameter listing.
func runParse(file string) error {
	prog, c, err := parseFile(file)
	out, oerr := createOutput(outputPath(configOf(c), file, ".parser"))
	if oerr != nil {
		return oerr
	}
	if err != nil {
		out.abort()
		return err
	}
	parser.WriteDeclListing(out.file, prog)
	return out.commit()
}

// runTypes implements mode -3: the per-expression type listing.
func runTypes(file string) error {
	prog, c, err := parseFile(file)
	out, oerr := createOutput(outputPath(configOf(c), file, ".types"))
	if oerr != nil {
		return oerr
	}
	if err != nil {
		out.abort()
		return err
	}
	parser.WriteTypeListing(out.file, prog)
	return out.commit()
}

// runEmit implements mode -4: JVM assembly generation.
func runEmit(file string) error {
	prog, c, err := parseFile(file)
	out, oerr := createOutput(outputPath(configOf(c), file, ".j"))
	if oerr != nil {
		return oerr
	}
	if err != nil {
		out.abort()
		return err
	}
	className := classNameFor(file)
	if err := emit.EmitProgram(out.file, prog, c, className, c.Config.RuntimeClass); err != nil {
		out.abort()
		if ce, ok := err.(*diag.CompileError); ok {
			return ce
		}
		return err
	}
	return out.commit()
}

// configOf returns c's configuration, or the defaults if c is nil (c is
// nil only when newCompiler itself failed, before any config-dependent
// output path could matter).
func configOf(c *compiler.Compiler) config.Config {
	if c == nil {
		return config.Default()
	}
	return c.Config
}

func classNameFor(file string) string {
	base := baseName(file)
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' {
			return base[i+1:]
		}
	}
	return base
}

const banner = `jcc - ahead-of-time compiler targeting JVM textual assembly`

func runBanner() {
	fmt.Println(banner)
}
