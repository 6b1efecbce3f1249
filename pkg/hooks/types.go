package hooks

// HookType represents the type of hooks.
type HookType string

// Supported hooks types.
const (
	PostInstall HookType = "post-install"
)

// HookContext contains information passed to hooks. Each field is exposed
// to the script as a global of the same name in camelCase.
type HookContext struct {
	AddonName    string
	AddonCode    string
	Repository   string
	ListName     string
	InstallPath  string
	AddonVersion string
	Vars         map[string]interface{}
}
