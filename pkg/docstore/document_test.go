package docstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToleratesComments(t *testing.T) {
	doc, err := ParseString(`<?xml version="1.0"?>
<!-- leading comment -->
<repository>
  <!-- inner comment -->
  <name>Official</name>
  <list name="Themes" url="https://x/{path}"/>
</repository>`)
	require.NoError(t, err)

	root := Root(doc)
	require.NotNil(t, root)
	assert.Equal(t, "repository", Name(root))

	children := Elements(root)
	require.Len(t, children, 2)
	assert.Equal(t, "name", Name(children[0]))
	assert.Equal(t, "Official", Text(children[0]))

	url, ok := Attr(children[1], "url")
	assert.True(t, ok)
	assert.Equal(t, "https://x/{path}", url)

	_, ok = Attr(children[1], "description")
	assert.False(t, ok)
}

func TestParseErrors(t *testing.T) {
	_, err := ParseString(`<repository><name>`)
	assert.Error(t, err)

	_, err = ParseString(`<!-- only a comment -->`)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestBuildSerializeParse(t *testing.T) {
	doc, root := NewDocument("catalog")
	repos := AddElement(root, "repos")
	AddElement(repos, "repo", "codename", "official", "name", "Fish & Chips", "ttl", "60")
	AddText(root, "note", "a < b")

	text := Serialize(doc)
	assert.Contains(t, text, `<?xml version="1.0" encoding="UTF-8"?>`)

	parsed, err := ParseString(text)
	require.NoError(t, err)

	r := Root(parsed)
	require.Equal(t, "catalog", Name(r))
	kids := Elements(r)
	require.Len(t, kids, 2)

	repo := Elements(kids[0])[0]
	name, _ := Attr(repo, "name")
	assert.Equal(t, "Fish & Chips", name)
	assert.Equal(t, "a < b", Text(kids[1]))
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "catalog.xml")
	doc, root := NewDocument("catalog")
	AddElement(root, "repos")

	require.NoError(t, SaveFile(path, doc))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "catalog", Name(Root(loaded)))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.xml"))
	assert.Error(t, err)
}
