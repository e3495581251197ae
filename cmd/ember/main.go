// Package main provides the Ember ML Framework CLI.
package main

import (
	"fmt"
	"os"

	"github.com/ember-ml/ember/autograd"
	"github.com/ember-ml/ember/backend/cpu"
	"github.com/ember-ml/ember/tensor"
)

const version = "v0.0.1-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("Ember ML Framework %s\n", version)
			return
		case "demo":
			if err := demo(); err != nil {
				fmt.Fprintf(os.Stderr, "demo: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	fmt.Println("Ember ML Framework - Reverse-Mode Autodiff for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  demo       Differentiate a small expression")
}

// demo differentiates y = sum((x*x + 3) * x) and prints dy/dx.
func demo() error {
	backend := cpu.New()
	data, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{4})
	if err != nil {
		return err
	}
	x := autograd.NewLeaf(data, backend, true)

	sq, err := autograd.Mul(x, x)
	if err != nil {
		return err
	}
	shifted, err := autograd.AddScalar(sq, float32(3))
	if err != nil {
		return err
	}
	prod, err := autograd.Mul(shifted, x)
	if err != nil {
		return err
	}
	y, err := autograd.Sum(prod)
	if err != nil {
		return err
	}

	if err := autograd.Backward([]*autograd.Variable{y}, autograd.BackwardOptions{}); err != nil {
		return err
	}

	fmt.Printf("x      = %v\n", x.Data().AsFloat32())
	fmt.Printf("y      = %v\n", y.Item())
	fmt.Printf("dy/dx  = %v\n", x.Grad().Data().AsFloat32())
	return nil
}
