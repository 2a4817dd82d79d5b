//go:build (rp2040 || rp2350) && !debug

package main

const debugBuild = false
