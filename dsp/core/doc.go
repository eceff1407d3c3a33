// Package core holds the processor configuration shared by the render path
// and small numeric helpers.
package core
