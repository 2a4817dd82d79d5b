//go:build (rp2040 || rp2350) && debug

package main

// Build with -tags debug to print bus errors on the USB console
const debugBuild = true
