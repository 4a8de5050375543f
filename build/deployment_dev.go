//go:build dev
// +build dev

package build

// Deployment specifies the environment the binary is built for.
const Deployment = Development
