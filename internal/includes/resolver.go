// Package includes resolves #include directives against a set of search
// directories and extracts the function signatures and constants each
// include file provides. The analysis core never reads files itself; this
// collaborator pre-merges everything into flat tables, first writer wins.
package includes

import (
	"fmt"
	"os"
	"path/filepath"

	"nwlint/internal/ast"
	"nwlint/internal/builtins"
	"nwlint/internal/eval"
	"nwlint/internal/gamever"
	"nwlint/internal/lexer"
	"nwlint/internal/parser"
	"nwlint/internal/types"
)

// ---------------------------------------------------------------------------
// ResolveError represents an error during include resolution.
// ---------------------------------------------------------------------------

type ResolveError struct {
	Message string
	Rng     ast.Range
	File    string
}

func (e *ResolveError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: line %d, col %d: %s", e.File, e.Rng.Start.Line, e.Rng.Start.Column, e.Message)
	}
	return fmt.Sprintf("line %d, col %d: %s", e.Rng.Start.Line, e.Rng.Start.Column, e.Message)
}

// ---------------------------------------------------------------------------
// IncludedFile holds the extracted surface of one include file.
// ---------------------------------------------------------------------------

type IncludedFile struct {
	Name      string // include name as written (e.g. "k_inc_utility")
	FilePath  string // resolved absolute file path
	Program   *ast.Program
	Functions []builtins.FunctionSignature
	Constants []builtins.ConstantSignature
}

// ---------------------------------------------------------------------------
// Resolver resolves all includes for a script, handling:
//   - File resolution (importing file's directory, then the search dirs)
//   - Circular include detection
//   - Transitive includes (include files can include other files)
//   - Memoization: each file is read and parsed at most once per resolver
// ---------------------------------------------------------------------------

type Resolver struct {
	// SearchDirs are tried in order after the importing file's directory.
	SearchDirs []string

	// resolved memoizes extraction by absolute file path.
	resolved map[string]*IncludedFile

	// includeStack tracks the current chain for circular detection.
	includeStack []string

	errors []*ResolveError

	// all is the ordered list of resolved files (depth-first).
	all []*IncludedFile
}

// NewResolver creates an include resolver over the given search directories.
func NewResolver(searchDirs ...string) *Resolver {
	return &Resolver{
		SearchDirs: searchDirs,
		resolved:   make(map[string]*IncludedFile),
	}
}

// Resolve processes every #include of prog (transitively) and returns the
// merged function and constant tables, first writer wins across files in
// include order. sourceFile anchors relative resolution and the circular
// detection chain; it may be empty for in-memory sources.
func (r *Resolver) Resolve(prog *ast.Program, sourceFile string) ([]builtins.FunctionSignature, []builtins.ConstantSignature, []*ResolveError) {
	baseDir := "."
	if sourceFile != "" {
		if abs, err := filepath.Abs(sourceFile); err == nil {
			baseDir = filepath.Dir(abs)
			r.includeStack = append(r.includeStack, abs)
			defer func() { r.includeStack = r.includeStack[:len(r.includeStack)-1] }()
		}
	}

	start := len(r.all)
	for _, inc := range prog.Includes {
		r.resolveInclude(inc, baseDir, sourceFile)
	}

	var fns []builtins.FunctionSignature
	var consts []builtins.ConstantSignature
	seenFn := make(map[string]bool)
	seenConst := make(map[string]bool)
	for _, file := range r.all[start:] {
		for _, f := range file.Functions {
			if !seenFn[f.Name] {
				seenFn[f.Name] = true
				fns = append(fns, f)
			}
		}
		for _, c := range file.Constants {
			if !seenConst[c.Name] {
				seenConst[c.Name] = true
				consts = append(consts, c)
			}
		}
	}
	return fns, consts, r.errors
}

// resolveInclude resolves a single #include directive.
func (r *Resolver) resolveInclude(inc *ast.IncludeDirective, baseDir, importerFile string) {
	absPath, ok := r.locate(inc, baseDir, importerFile)
	if !ok {
		return
	}

	// Circular include: report once and stop descending.
	for _, stackPath := range r.includeStack {
		if stackPath == absPath {
			r.addError(inc.GetRange(), importerFile,
				fmt.Sprintf("circular include detected: %q", inc.Name))
			return
		}
	}

	// Already parsed: reuse the extraction, keeping include order.
	if existing, found := r.resolved[absPath]; found {
		r.all = append(r.all, existing)
		return
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		r.addError(inc.GetRange(), importerFile,
			fmt.Sprintf("cannot read include file %s: %v", absPath, err))
		return
	}

	tokens, err := lexer.Lex(string(content))
	if err != nil {
		r.addError(inc.GetRange(), absPath,
			fmt.Sprintf("lex error in include file: %s", err.Error()))
		return
	}

	// A broken include still contributes whatever parsed; the parser always
	// returns a Program.
	prog, parseErrs := parser.Parse(tokens)
	for _, pe := range parseErrs {
		r.addError(pe.Rng, absPath,
			fmt.Sprintf("syntax error in include file: %s", pe.Message))
	}

	file := &IncludedFile{
		Name:     inc.Name,
		FilePath: absPath,
		Program:  prog,
	}
	r.resolved[absPath] = file

	// Transitive includes first, so the deepest file's symbols are extracted
	// before its dependents reference them.
	includeDir := filepath.Dir(absPath)
	r.includeStack = append(r.includeStack, absPath)
	for _, sub := range prog.Includes {
		r.resolveInclude(sub, includeDir, absPath)
	}
	r.includeStack = r.includeStack[:len(r.includeStack)-1]

	file.Functions, file.Constants = extract(prog)
	r.all = append(r.all, file)
}

// locate maps an include name to an existing .nss file, trying the importing
// file's directory first and then each search directory in order.
func (r *Resolver) locate(inc *ast.IncludeDirective, baseDir, importerFile string) (string, bool) {
	dirs := append([]string{baseDir}, r.SearchDirs...)
	for _, dir := range dirs {
		candidate := filepath.Join(dir, inc.Name+".nss")
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if _, err := os.Stat(abs); err == nil {
			return abs, true
		}
	}
	r.addError(inc.GetRange(), importerFile,
		fmt.Sprintf("include file not found: %q", inc.Name))
	return "", false
}

func (r *Resolver) addError(rng ast.Range, file, msg string) {
	r.errors = append(r.errors, &ResolveError{Message: msg, Rng: rng, File: file})
}

// Files returns all resolved include files in depth-first order.
func (r *Resolver) Files() []*IncludedFile {
	return r.all
}

// ---------------------------------------------------------------------------
// Signature extraction
// ---------------------------------------------------------------------------

// extract pulls the callable surface out of a parsed include: every function
// except the entry points, plus every foldable const global.
func extract(prog *ast.Program) ([]builtins.FunctionSignature, []builtins.ConstantSignature) {
	var consts []builtins.ConstantSignature
	constValues := make(map[string]eval.Value)
	engineConsts := builtins.Constants()
	engineByName := make(map[string]eval.Value, len(engineConsts))
	for _, c := range engineConsts {
		engineByName[c.Name] = c.Value
	}
	resolve := func(name string) (eval.Value, bool) {
		if v, ok := constValues[name]; ok {
			return v, true
		}
		v, ok := engineByName[name]
		return v, ok
	}

	// Consts fold in declaration order so later ones may reference earlier.
	for _, g := range prog.Globals {
		if !g.IsConst || g.Init == nil {
			continue
		}
		res, ok := eval.Evaluate(g.Init, resolve)
		if !ok {
			continue
		}
		constValues[g.Name] = res.Value
		consts = append(consts, builtins.ConstantSignature{
			Name:  g.Name,
			Type:  typeFromSpec(g.Type),
			Value: res.Value,
			Avail: gamever.Both,
		})
	}

	var fns []builtins.FunctionSignature
	seen := make(map[string]bool)
	for _, fn := range prog.Functions {
		if fn.Name == "main" || fn.Name == "StartingConditional" {
			continue
		}
		// A prototype and its definition describe the same function.
		if seen[fn.Name] {
			continue
		}
		seen[fn.Name] = true

		sig := builtins.FunctionSignature{
			Name:       fn.Name,
			ReturnType: typeFromSpec(fn.ReturnType),
			Avail:      gamever.Both,
		}
		for _, p := range fn.Params {
			spec := builtins.ParamSpec{
				Name: p.Name,
				Type: typeFromSpec(p.Type),
			}
			if p.Default != nil {
				spec.HasDefault = true
				if res, ok := eval.Evaluate(p.Default, resolve); ok {
					spec.Default = res.Value
				}
			}
			sig.Params = append(sig.Params, spec)
		}
		fns = append(fns, sig)
	}
	return fns, consts
}

func typeFromSpec(spec *ast.TypeSpec) types.Type {
	if spec == nil {
		return types.TypeVoid
	}
	if spec.IsStruct {
		return types.StructType(spec.StructName)
	}
	if t, ok := types.FromKeyword(spec.Name); ok {
		return t
	}
	return types.TypeVoid
}
