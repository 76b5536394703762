// Command lamina evaluates profile Lisp source and writes the resulting
// triangle meshes as JSON. It runs the same pipeline as the library:
// source → engine → drawings → plans → kernel cuts → meshes.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/chazu/lamina/pkg/engine"
	"github.com/chazu/lamina/pkg/fabricate"
	"github.com/chazu/lamina/pkg/kernel"
	"github.com/chazu/lamina/pkg/kernel/sdfx"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App wires the engine to a geometry kernel. Evaluate is the one entry
// point; the CLI and the tests share it.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
}

// MeshData is the JSON-serializable mesh format.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	Meshes []MeshData      `json:"meshes"`
	Errors []EvalErrorData `json:"errors"`
}

// NewApp creates a new App with an engine and the sdfx kernel.
func NewApp() *App {
	return &App{
		engine: engine.NewEngine(),
		kernel: sdfx.New(),
	}
}

// Evaluate takes Lisp source and returns mesh data + errors.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes: []MeshData{},
		Errors: []EvalErrorData{},
	}

	prog, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: err.Error(),
		})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Each drawing is synthesized into a plan and cut into one solid.
	for i, d := range prog.Drawings {
		plan, err := d.Build()
		if err != nil {
			result.Errors = append(result.Errors, EvalErrorData{
				Message: err.Error(),
			})
			return result
		}
		mesh, err := fabricate.Mesh(plan, a.kernel)
		if err != nil {
			result.Errors = append(result.Errors, EvalErrorData{
				Message: err.Error(),
			})
			return result
		}
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: mesh.Vertices,
			Normals:  mesh.Normals,
			Indices:  mesh.Indices,
			PartName: mesh.PartName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}

	return result
}

func main() {
	out := flag.String("o", "", "write JSON output to this file instead of stdout")
	flag.Parse()

	var source []byte
	var err error
	switch flag.NArg() {
	case 0:
		source, err = io.ReadAll(os.Stdin)
	case 1:
		source, err = os.ReadFile(flag.Arg(0))
	default:
		fmt.Fprintln(os.Stderr, "usage: lamina [-o out.json] [source.lisp]")
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}

	result := NewApp().Evaluate(string(source))

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatal(err)
	}

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "line %d: %s\n", e.Line, e.Message)
		}
		os.Exit(1)
	}
}
