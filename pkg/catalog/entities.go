package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/glorpus-work/addonctl/pkg/transfer"
)

const (
	// UncategorisedCodeName is the category every list starts with.
	UncategorisedCodeName = "uncategorised"
	UncategorisedName     = "Uncategorised"

	// PathToken in a list's RemoteIndexURL is replaced by a relative path.
	PathToken = "{path}"

	listIndexPath = "index"
	infoSuffix    = "/info"

	// NotInstalled is the InstalledVersion of an addon that was never installed.
	NotInstalled = -1
)

// Repository is a remote source of add-on lists.
type Repository struct {
	CodeName        string
	DisplayName     string
	Description     string
	BaseURL         string
	TTL             time.Duration
	LastRefreshedAt time.Time
	Enabled         bool
	Lists           []*AddonList
}

// List returns the list with the given display name, or nil.
func (r *Repository) List(name string) *AddonList {
	for _, l := range r.Lists {
		if l.DisplayName == name {
			return l
		}
	}
	return nil
}

// Due reports whether the repository's TTL has elapsed at now.
func (r *Repository) Due(now time.Time) bool {
	return r.LastRefreshedAt.IsZero() || !now.Before(r.LastRefreshedAt.Add(r.TTL))
}

// AddonList is a named group of categories within a repository.
type AddonList struct {
	DisplayName    string
	Description    string
	RemoteIndexURL string
	Categories     []*Category
}

func newAddonList(name, url, description string) *AddonList {
	return &AddonList{
		DisplayName:    name,
		Description:    description,
		RemoteIndexURL: url,
		Categories: []*Category{{
			CodeName:    UncategorisedCodeName,
			DisplayName: UncategorisedName,
		}},
	}
}

// Category returns the category with the given code name, or nil.
func (l *AddonList) Category(codeName string) *Category {
	for _, c := range l.Categories {
		if c.CodeName == codeName {
			return c
		}
	}
	return nil
}

// ResolveURL substitutes rel for the path token of the list's index URL.
func (l *AddonList) ResolveURL(rel string) string {
	return strings.ReplaceAll(l.RemoteIndexURL, PathToken, rel)
}

// Category groups add-ons inside a list.
type Category struct {
	DisplayName string
	CodeName    string
	Description string
	Addons      []*Addon
}

// Addon returns the first add-on whose code name matches, ignoring case.
func (c *Category) Addon(codeName string) *Addon {
	for _, a := range c.Addons {
		if strings.EqualFold(a.CodeName, codeName) {
			return a
		}
	}
	return nil
}

// Addon is one installable package.
type Addon struct {
	DisplayName         string
	CodeName            string
	Description         string
	RelativeURL         string
	IsRestrictedContent bool
	InstalledVersion    int
	InstalledMarker     string
	IsInstalled         bool

	session transfer.Session
}

// Bound reports whether a transfer session is attached to the add-on.
func (a *Addon) Bound() bool { return a.session != nil }

// AddonRef addresses an add-on by the code names of its owners. Category
// may be empty, in which case every category of the list is searched.
type AddonRef struct {
	Repository string
	List       string
	Category   string
	Addon      string
}

func (r AddonRef) String() string {
	if r.Category == "" {
		return fmt.Sprintf("%s/%s/%s", r.Repository, r.List, r.Addon)
	}
	return fmt.Sprintf("%s/%s/%s/%s", r.Repository, r.List, r.Category, r.Addon)
}

// ParseAddonRef parses "repo/list/addon" or "repo/list/category/addon".
func ParseAddonRef(s string) (AddonRef, error) {
	parts := strings.Split(s, "/")
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return AddonRef{}, fmt.Errorf("%w: %q has an empty segment", ErrInvalidRef, s)
		}
	}
	switch len(parts) {
	case 3:
		return AddonRef{Repository: parts[0], List: parts[1], Addon: parts[2]}, nil
	case 4:
		return AddonRef{Repository: parts[0], List: parts[1], Category: parts[2], Addon: parts[3]}, nil
	default:
		return AddonRef{}, fmt.Errorf("%w: %q, want repo/list[/category]/addon", ErrInvalidRef, s)
	}
}

// InstalledAddon records a completed install. Records loaded from state
// stay pending until a refresh produces the add-on they point at.
//
// Marker is the session's version marker as reported. InstalledVersion is
// its major release number, 0 when the marker is not a release version
// (a git revision, for one).
type InstalledAddon struct {
	Ref              AddonRef
	InstalledVersion int
	Marker           string

	addon *Addon
}

// Pending reports whether the record has not been matched to a catalog entry yet.
func (ia *InstalledAddon) Pending() bool { return ia.addon == nil }

// UpgradeListItem is an add-on whose session reports it stale.
type UpgradeListItem struct {
	CodeName      string
	EstimatedSize int64
	// Addon is nil when the session's add-on is no longer in the catalog.
	Addon *AddonRef
}

// Progress reports refresh progress for one repository.
type Progress struct {
	Repository    string
	TotalUnits    int
	ReceivedUnits int
}
