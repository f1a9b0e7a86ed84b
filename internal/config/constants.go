package config

const DocumentFileExt = ".yaml"

// DocumentFileExtensions are all recognized match document extensions
var DocumentFileExtensions = []string{".yaml", ".yml"}

// DefaultServiceAddr is where serve listens and where check -remote
// dials unless overridden.
const DefaultServiceAddr = ":50061"

// Environment variables honored by the CLI
const (
	EnvNoColor = "NO_COLOR"
	EnvDebug   = "DEBUG"
)

// Built-in function names
const (
	PrintFuncName  = "print"
	LenFuncName    = "len"
	TypeOfFuncName = "typeOf"
	AbsFuncName    = "abs"
)
