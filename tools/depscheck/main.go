// Command depscheck enforces the editor's package layering. It parses
// import clauses only and exits nonzero listing every violation.
package main

import (
	"flag"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const modulePath = "hexloom/editor"

// Foundation packages depend on the standard library and third-party
// modules only, never on other editor packages.
var foundations = []string{
	"internal/grid",
	"internal/scene",
	"internal/task",
	"internal/storage",
}

// Directed denials between layers. The transport may reach down into
// the session, never the other way around.
var denials = []struct {
	from   string
	to     string
	reason string
}{
	{"logging", "internal/session", "logging stays below the session layer"},
	{"internal/mapdoc", "internal/session", "the document codec stays below the session layer"},
	{"internal/mapdoc", "internal/net", "the document codec never reaches the transport"},
	{"internal/session", "internal/net", "the session layer never reaches the transport"},
}

type violation struct {
	file   string
	imp    string
	reason string
}

func main() {
	rootFlag := flag.String("root", ".", "module root to scan")
	flag.Parse()

	root, err := filepath.Abs(*rootFlag)
	if err != nil {
		exitErr(fmt.Errorf("resolve root: %w", err))
	}

	violations, err := check(root)
	if err != nil {
		exitErr(err)
	}
	if len(violations) > 0 {
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "%s imports %s: %s\n", v.file, v.imp, v.reason)
		}
		os.Exit(1)
	}
}

func check(root string) ([]violation, error) {
	fset := token.NewFileSet()
	var violations []violation

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := entry.Name()
		if entry.IsDir() {
			if path != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") || name == "testdata" || name == "vendor" || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, ".go") {
			return nil
		}

		file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		pkgDir := filepath.ToSlash(filepath.Dir(rel))

		for _, spec := range file.Imports {
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			if !strings.HasPrefix(imp, modulePath+"/") {
				continue
			}
			target := strings.TrimPrefix(imp, modulePath+"/")
			if reason, bad := checkImport(pkgDir, target); bad {
				violations = append(violations, violation{file: rel, imp: imp, reason: reason})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			return violations[i].imp < violations[j].imp
		}
		return violations[i].file < violations[j].file
	})
	return violations, nil
}

func checkImport(pkgDir, target string) (string, bool) {
	for _, base := range foundations {
		if underDir(pkgDir, base) && !underDir(target, base) {
			return fmt.Sprintf("%s depends on the standard library and third-party modules only", base), true
		}
	}
	for _, d := range denials {
		if underDir(pkgDir, d.from) && underDir(target, d.to) {
			return d.reason, true
		}
	}
	return "", false
}

func underDir(path, dir string) bool {
	return path == dir || strings.HasPrefix(path, dir+"/")
}

func exitErr(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
