package main

import (
	"fmt"
	"nwlint/internal/ast"
	"nwlint/internal/gamever"
	"nwlint/internal/includes"
	"nwlint/internal/lexer"
	"nwlint/internal/parser"
	"nwlint/internal/pipeline"
	"os"
	"strconv"
	"strings"
	"time"
)

const VERSION = "0.1.0"

var debugMode = false

func main() {
	start := time.Now()
	exitCode := run()
	printDebug(fmt.Sprintf("Analysis time: %s", time.Since(start)))
	os.Exit(exitCode)
}

func run() int {
	// Check for --debug flag early.
	for _, arg := range os.Args[1:] {
		if arg == "--debug" {
			debugMode = true
			break
		}
	}

	if len(os.Args) < 2 {
		usage()
		return 1
	}

	// Find the source file (first non-flag argument).
	var filePath string
	for _, arg := range os.Args[1:] {
		if len(arg) > 0 && arg[0] != '-' {
			filePath = arg
			break
		}
	}
	if filePath == "" {
		usage()
		return 1
	}

	if !fileExists(filePath) {
		fmt.Println("Error: File does not exist.")
		return 1
	}

	source, err := getFileContent(filePath)
	if err != nil {
		fmt.Println("Error: Could not read file.")
		fmt.Println("Error details: " + err.Error())
		return 1
	}

	// --- Game version: flag wins over the comment sniffer ---
	version := gamever.Sniff(source)
	for _, arg := range os.Args[1:] {
		if strings.HasPrefix(arg, "--game=") {
			v, ok := parseVersion(arg[len("--game="):])
			if !ok {
				fmt.Printf("Error: invalid game %q (expected kotor1, kotor2 or both)\n", arg[len("--game="):])
				return 1
			}
			version = v
		}
	}
	printDebug("Target version: " + version.String())

	// --- Diagnostic cap ---
	maxDiagnostics := 0
	for _, arg := range os.Args[1:] {
		if strings.HasPrefix(arg, "--max=") {
			n, err := strconv.Atoi(arg[len("--max="):])
			if err != nil {
				fmt.Printf("Error: invalid --max value %q\n", arg[len("--max="):])
				return 1
			}
			maxDiagnostics = n
		}
	}

	// --- Include resolution ---
	var searchDirs []string
	for _, arg := range os.Args[1:] {
		if strings.HasPrefix(arg, "--include-dir=") {
			searchDirs = append(searchDirs, arg[len("--include-dir="):])
		}
	}

	opts := pipeline.Options{Version: version, MaxDiagnostics: maxDiagnostics}

	tokens, lexErr := lexer.Lex(source)
	if lexErr == nil {
		if prog := preParse(tokens); prog != nil && len(prog.Includes) > 0 {
			printDebug(fmt.Sprintf("Resolving %d include(s)...", len(prog.Includes)))
			resolver := includes.NewResolver(searchDirs...)
			fns, consts, resolveErrs := resolver.Resolve(prog, filePath)
			for _, e := range resolveErrs {
				fmt.Printf("Include warning: %s\n", e.Error())
			}
			opts.Functions = fns
			opts.Constants = consts
			printDebug(fmt.Sprintf("Include resolution complete. %d functions, %d constants.",
				len(fns), len(consts)))
		}
	}

	// --- Full analysis ---
	printDebug("Starting analysis...")
	result := pipeline.Run(source, opts)

	if debugMode && result.Program != nil {
		printDebug("--- AST ---")
		printDebug(ast.DebugString(result.Program))
		printDebug("--- End AST ---")
	}

	for _, d := range result.Diagnostics {
		fmt.Printf("%s:%s\n", filePath, d.String())
	}

	if result.HasErrors() {
		return 1
	}
	if len(result.Diagnostics) == 0 {
		printDebug("No findings.")
	}
	return 0
}

func usage() {
	fmt.Println("nwlint V" + VERSION + " - static analysis for KOTOR scripts")
	fmt.Println("Usage: nwlint [flags] <file.nss>")
	fmt.Println("Flags:")
	fmt.Println("  --game=kotor1|kotor2|both  target game (default: sniffed from comments)")
	fmt.Println("  --include-dir=<dir>        add an include search directory (repeatable)")
	fmt.Println("  --max=<n>                  cap the diagnostic count")
	fmt.Println("  --debug                    print pipeline internals")
}

func parseVersion(s string) (gamever.Version, bool) {
	switch s {
	case "kotor1", "k1":
		return gamever.K1, true
	case "kotor2", "k2", "tsl":
		return gamever.K2, true
	case "both":
		return gamever.Both, true
	}
	return gamever.Both, false
}

// preParse runs a throwaway parse just to read the include directives; the
// real parse happens inside the pipeline.
func preParse(tokens []lexer.Token) *ast.Program {
	prog, _ := parser.Parse(tokens)
	return prog
}

/**
* Checks if a file exists at the given path.
* @param filePath The path to the file to check.
* @return true if the file exists, false otherwise.
 */
func fileExists(filePath string) bool {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return false
	}
	return true
}

/**
* Gets content of a file at the given path.
* @param filePath The path to the file to read.
* @return The content of the file as a string, or an error if the file cannot be read.
 */
func getFileContent(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func printDebug(message string) {
	if !debugMode {
		return
	}
	fmt.Println("[DEBUG] " + message)
}
