package naming

// NodeBuiltinModules lists the Node.js core modules (module.builtinModules as
// of Node 22) whose names are already valid package identifiers. Entries with
// "_" or "/" ("child_process", "fs/promises", "_http_agent") are left out:
// no sanitized name can equal them, and their hyphenated forms
// ("child-process") are ordinary npm packages.
var NodeBuiltinModules = []string{
	"assert", "buffer", "cluster", "console", "constants", "crypto", "dgram",
	"dns", "domain", "events", "fs", "http", "http2", "https", "inspector",
	"module", "net", "os", "path", "process", "punycode", "querystring",
	"readline", "repl", "stream", "sys", "timers", "tls", "tty", "url", "util",
	"v8", "vm", "wasi", "zlib",
}
