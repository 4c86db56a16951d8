// Package integration runs the Marena API server in-process and exercises it
// over HTTP with both storage backends.
package integration
