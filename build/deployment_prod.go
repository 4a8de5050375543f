//go:build !dev
// +build !dev

package build

// Deployment specifies the environment the binary is built for. The default
// is a production deployment; pass the dev build tag to get a development
// build with verbose stdout logging.
const Deployment = Production
