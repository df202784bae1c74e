//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles the GLSL shaders into SPIR-V with glslc.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the vkspin binary.
func (Build) Engine() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("build", "-o", "bin/vkspin", "."), withStream())
	return err
}
