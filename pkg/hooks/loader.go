package hooks

import (
	"os"
	"path/filepath"

	"github.com/glorpus-work/addonctl/pkg/errors"
)

// HookFileExtension is the extension of hook scripts.
const HookFileExtension = ".tengo"

// LoadScriptFile registers the script at path for hookType. An empty path
// is a no-op.
func LoadScriptFile(executor *TengoExecutor, hookType HookType, path string) error {
	if path == "" {
		return nil
	}
	if filepath.Ext(path) != HookFileExtension {
		return errors.Wrapf(ErrHookLoad, "%s: hook scripts must end in %s", path, HookFileExtension)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(ErrHookLoad, "reading %s: %v", path, err)
	}
	executor.AddScript(hookType, string(content))
	return nil
}
