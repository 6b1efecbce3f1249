// Package index turns fetched repository documents into typed values.
//
// Three documents make up a repository: the root index (<repository>), one
// package list per add-on list (<packages>) and one descriptor per package
// (<package>). Scalar fields follow a first-occurrence-wins rule: repeats
// are reported through Warn and dropped. Unknown elements and malformed
// nodes are reported and skipped as well; only a wrong root element fails
// the parse.
package index

import "time"

// Warn receives non-fatal diagnostics produced while parsing.
type Warn func(msg string)

// RepoIndexDoc is the root index of a repository.
type RepoIndexDoc struct {
	Name        string
	CodeName    string
	Description string
	// TTL is only meaningful when HasTTL is set.
	TTL    time.Duration
	HasTTL bool
	Lists  []ListRef
}

// ListRef announces an add-on list and the categories it uses.
type ListRef struct {
	Name        string
	URL         string
	Description string
	Categories  []CategoryRef
}

// CategoryRef declares a category inside a list.
type CategoryRef struct {
	CodeName    string
	Name        string
	Description string
}

// ListIndexDoc is the package list of one add-on list.
type ListIndexDoc struct {
	Packages []PackageRef
}

// PackageRef points at a package descriptor, relative to the list URL.
type PackageRef struct {
	URL        string
	Category   string
	Restricted bool
}

// PackageInfoDoc is a package descriptor.
type PackageInfoDoc struct {
	Name        string
	CodeName    string
	Description string
}
