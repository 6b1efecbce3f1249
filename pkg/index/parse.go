package index

import (
	"fmt"
	"strconv"
	"time"

	"github.com/glorpus-work/addonctl/pkg/docstore"
)

// Element and attribute names of the remote formats.
const (
	elemRepository  = "repository"
	elemPackages    = "packages"
	elemPackage     = "package"
	elemList        = "list"
	elemCategory    = "category"
	elemName        = "name"
	elemCodeName    = "codename"
	elemDescription = "description"
	elemTTL         = "ttl"

	attrName        = "name"
	attrURL         = "url"
	attrDescription = "description"
	attrCodeName    = "codename"
	attrCategory    = "category"
	attrRestricted  = "restricted"
)

// scalars tracks which scalar fields of one element were already taken.
type scalars struct {
	scope string
	seen  map[string]bool
	warn  Warn
}

func newScalars(scope string, warn Warn) *scalars {
	return &scalars{scope: scope, seen: map[string]bool{}, warn: warn}
}

// take stores value into dst if field was not seen before.
func (s *scalars) take(field string, dst *string, value string) {
	if s.claim(field) {
		*dst = value
	}
}

func (s *scalars) claim(field string) bool {
	if s.seen[field] {
		report(s.warn, "%s: duplicate <%s> ignored, keeping the first value", s.scope, field)
		return false
	}
	s.seen[field] = true
	return true
}

func report(warn Warn, format string, args ...interface{}) {
	if warn != nil {
		warn(fmt.Sprintf(format, args...))
	}
}

func rootNamed(doc *docstore.Node, want string) (*docstore.Node, error) {
	root := docstore.Root(doc)
	if root == nil {
		return nil, fmt.Errorf("%w: want <%s>, document is empty", ErrUnexpectedRoot, want)
	}
	if docstore.Name(root) != want {
		return nil, fmt.Errorf("%w: want <%s>, got <%s>", ErrUnexpectedRoot, want, docstore.Name(root))
	}
	return root, nil
}

// ParseRepoIndex reads a <repository> document.
func ParseRepoIndex(doc *docstore.Node, warn Warn) (*RepoIndexDoc, error) {
	root, err := rootNamed(doc, elemRepository)
	if err != nil {
		return nil, err
	}

	out := &RepoIndexDoc{}
	fields := newScalars(elemRepository, warn)
	for _, el := range docstore.Elements(root) {
		switch name := docstore.Name(el); name {
		case elemName:
			fields.take(name, &out.Name, docstore.Text(el))
		case elemCodeName:
			fields.take(name, &out.CodeName, docstore.Text(el))
		case elemDescription:
			fields.take(name, &out.Description, docstore.Text(el))
		case elemTTL:
			if !fields.claim(name) {
				continue
			}
			secs, err := strconv.ParseInt(docstore.Text(el), 10, 64)
			if err != nil || secs < 0 {
				report(warn, "repository: invalid <ttl> %q ignored", docstore.Text(el))
				continue
			}
			out.TTL = time.Duration(secs) * time.Second
			out.HasTTL = true
		case elemList:
			if list, ok := parseList(el, warn); ok {
				out.Lists = append(out.Lists, list)
			}
		default:
			report(warn, "repository: unknown element <%s> ignored", name)
		}
	}
	return out, nil
}

func parseList(el *docstore.Node, warn Warn) (ListRef, bool) {
	name, hasName := docstore.Attr(el, attrName)
	url, hasURL := docstore.Attr(el, attrURL)
	if !hasName || name == "" || !hasURL || url == "" {
		report(warn, "repository: <list> without name or url discarded")
		return ListRef{}, false
	}
	list := ListRef{Name: name, URL: url}
	list.Description, _ = docstore.Attr(el, attrDescription)

	for _, child := range docstore.Elements(el) {
		if docstore.Name(child) != elemCategory {
			report(warn, "list %q: unknown element <%s> ignored", name, docstore.Name(child))
			continue
		}
		code, ok := docstore.Attr(child, attrCodeName)
		if !ok || code == "" {
			report(warn, "list %q: <category> without codename discarded", name)
			continue
		}
		cat := CategoryRef{CodeName: code}
		cat.Name, _ = docstore.Attr(child, attrName)
		cat.Description, _ = docstore.Attr(child, attrDescription)
		list.Categories = append(list.Categories, cat)
	}
	return list, true
}

// ParseListIndex reads a <packages> document.
func ParseListIndex(doc *docstore.Node, warn Warn) (*ListIndexDoc, error) {
	root, err := rootNamed(doc, elemPackages)
	if err != nil {
		return nil, err
	}

	out := &ListIndexDoc{}
	for _, el := range docstore.Elements(root) {
		if docstore.Name(el) != elemPackage {
			report(warn, "packages: unknown element <%s> ignored", docstore.Name(el))
			continue
		}
		url, ok := docstore.Attr(el, attrURL)
		if !ok || url == "" {
			report(warn, "packages: <package> without url discarded")
			continue
		}
		ref := PackageRef{URL: url}
		ref.Category, _ = docstore.Attr(el, attrCategory)
		if raw, ok := docstore.Attr(el, attrRestricted); ok && raw != "" {
			restricted, err := strconv.ParseBool(raw)
			if err != nil {
				report(warn, "package %q: invalid restricted flag %q, assuming false", url, raw)
			}
			ref.Restricted = restricted
		}
		out.Packages = append(out.Packages, ref)
	}
	return out, nil
}

// ParsePackageInfo reads a <package> descriptor.
func ParsePackageInfo(doc *docstore.Node, warn Warn) (*PackageInfoDoc, error) {
	root, err := rootNamed(doc, elemPackage)
	if err != nil {
		return nil, err
	}

	out := &PackageInfoDoc{}
	fields := newScalars(elemPackage, warn)
	for _, el := range docstore.Elements(root) {
		switch name := docstore.Name(el); name {
		case elemName:
			fields.take(name, &out.Name, docstore.Text(el))
		case elemCodeName:
			fields.take(name, &out.CodeName, docstore.Text(el))
		case elemDescription:
			fields.take(name, &out.Description, docstore.Text(el))
		default:
			report(warn, "package: unknown element <%s> ignored", name)
		}
	}
	return out, nil
}
