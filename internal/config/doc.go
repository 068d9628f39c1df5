// Package config loads the optional HCL settings file of the depmake build
// hook. The file may reference environment variables as env.NAME:
//
//	out_dir = "${env.OUT_DIR}/asm"
//	workers = 4
//
//	assembler {
//	  command = "yasm"
//	  args    = ["-f", "elf64"]
//	}
//
//	archive "libboot.a" {
//	  command = "ar"
//	  args    = ["crs"]
//	}
//
// Every attribute and block is optional; anything left out falls back to the
// command line, the environment or the built-in defaults.
package config
