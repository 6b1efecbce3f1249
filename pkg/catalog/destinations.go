package catalog

import "fmt"

// Names of the add-on lists that have an install destination.
const (
	ListThemes     = "Themes"
	ListApps       = "Apps"
	ListExtensions = "Extensions"
	ListExpPacks   = "ExpPacks"
	ListLanguages  = "Languages"
)

// Destinations are the install roots per list kind.
type Destinations struct {
	Themes     string
	Apps       string
	Extensions string
	ExpPacks   string
	Languages  string
}

// For returns the root directory for add-ons of the named list.
func (d Destinations) For(listName string) (string, error) {
	var root string
	switch listName {
	case ListThemes:
		root = d.Themes
	case ListApps:
		root = d.Apps
	case ListExtensions:
		root = d.Extensions
	case ListExpPacks:
		root = d.ExpPacks
	case ListLanguages:
		root = d.Languages
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownListKind, listName)
	}
	if root == "" {
		return "", fmt.Errorf("%w: %s", ErrNoDestination, listName)
	}
	return root, nil
}
