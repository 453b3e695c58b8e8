//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

// Default target when mage is run without arguments.
var Default = Build.Viewer

type Build mg.Namespace

// Viewer builds the glbview binary into bin/.
func (Build) Viewer() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/glbview", "./cmd/glbview"), withStream())
	return err
}

type Check mg.Namespace

// Test runs every package test.
func (Check) Test() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Race runs the engine and common tests with the race detector.
func (Check) Race() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./engine/...", "./common/..."), withStream())
	return err
}

// Vet runs go vet.
func (Check) Vet() error {
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}

// All runs vet and then the tests.
func (Check) All() {
	mg.SerialDeps(Check.Vet, Check.Test)
}

type Run mg.Namespace

// Viewer runs glbview on the asset named by the GLBVIEW_ASSET environment variable.
func (Run) Viewer() error {
	mg.Deps(Build.Viewer)
	asset := envOr("GLBVIEW_ASSET", "")
	if asset == "" {
		return fmt.Errorf("set GLBVIEW_ASSET to a .glb or .gltf file")
	}
	_, err := executeCmd("bin/glbview", withArgs("-asset", asset, "-watch"), withStream())
	return err
}
