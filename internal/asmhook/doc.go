// Package asmhook is a ready-made build hook for projects that bundle
// assembly sources. It discovers every .asm file below a source directory,
// registers one rule per file assembling it into an object under the output
// directory and, optionally, one rule archiving all objects into a static
// library. Rebuilding only what changed is left to the depgraph engine.
package asmhook
