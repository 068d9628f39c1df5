package config

// Settings is the decoded settings file. Nil pointers and empty strings mean
// "not set in the file".
type Settings struct {
	OutDir    string
	SrcDir    string
	Force     *bool
	DryRun    *bool
	Workers   *int
	LogLevel  string
	LogFormat string
	Assembler *Tool
	Archive   *Archive
}

// Tool is an external program and its leading arguments.
type Tool struct {
	Command string
	Args    []string
}

// Archive names the library bundling every object and the tool creating it.
type Archive struct {
	Name string
	Tool
}

// fileRoot mirrors the top level of a settings file for gohcl.
type fileRoot struct {
	OutDir    *string       `hcl:"out_dir,optional"`
	SrcDir    *string       `hcl:"src_dir,optional"`
	Force     *bool         `hcl:"force,optional"`
	DryRun    *bool         `hcl:"dry_run,optional"`
	Workers   *int          `hcl:"workers,optional"`
	LogLevel  *string       `hcl:"log_level,optional"`
	LogFormat *string       `hcl:"log_format,optional"`
	Assembler *toolBlock    `hcl:"assembler,block"`
	Archive   *archiveBlock `hcl:"archive,block"`
}

type toolBlock struct {
	Command string   `hcl:"command"`
	Args    []string `hcl:"args,optional"`
}

type archiveBlock struct {
	Name    string   `hcl:"name,label"`
	Command string   `hcl:"command,optional"`
	Args    []string `hcl:"args,optional"`
}
