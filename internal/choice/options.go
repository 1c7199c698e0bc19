package choice

// PackageManager is a supported JavaScript package manager.
type PackageManager string

// Supported package managers.
const (
	NPM  PackageManager = "npm"
	PNPM PackageManager = "pnpm"
	Bun  PackageManager = "bun"
)

func (p PackageManager) String() string { return string(p) }

// PackageManagers lists the supported package managers in menu order.
func PackageManagers() []PackageManager {
	return []PackageManager{NPM, PNPM, Bun}
}

// Backend is a supported backend provider.
type Backend string

// Supported backends.
const (
	Firebase Backend = "firebase"
	Supabase Backend = "supabase"
)

func (b Backend) String() string { return string(b) }

// Backends lists the supported backends in menu order.
func Backends() []Backend {
	return []Backend{Firebase, Supabase}
}

// PackageManagerSpec is the package manager question.
var PackageManagerSpec = Spec[PackageManager]{
	Tokens:  map[string]PackageManager{"1": NPM, "2": PNPM, "3": Bun},
	Names:   map[string]PackageManager{"npm": NPM, "pnpm": PNPM, "bun": Bun},
	Default: NPM,
}

// BackendSpec is the backend question.
var BackendSpec = Spec[Backend]{
	Tokens:  map[string]Backend{"1": Firebase, "2": Supabase},
	Names:   map[string]Backend{"firebase": Firebase, "supabase": Supabase},
	Default: Firebase,
}

// ConfirmSpec is the yes/no install question. It has no numeric tokens.
var ConfirmSpec = Spec[bool]{
	Names:   map[string]bool{"y": true, "yes": true, "n": false, "no": false},
	Default: true,
}

// ResolvePackageManager resolves a package manager answer.
func ResolvePackageManager(input string) (PackageManager, bool) {
	return Resolve(input, PackageManagerSpec)
}

// ResolveBackend resolves a backend answer.
func ResolveBackend(input string) (Backend, bool) {
	return Resolve(input, BackendSpec)
}

// ResolveConfirm resolves a yes/no answer. matched is false when the input
// was not one of the literal aliases, in which case value is the default.
func ResolveConfirm(input string, spec Spec[bool]) (value bool, matched bool) {
	v, ok := Resolve(input, spec)
	if !ok {
		return spec.Default, false
	}
	return v, true
}

// ShouldInstall reports whether an install confirmation answer means yes.
// Anything other than y/yes/n/no (in any case) falls through to yes:
// "nah" is not "no".
func ShouldInstall(input string) bool {
	v, _ := ResolveConfirm(input, ConfirmSpec)
	return v
}
