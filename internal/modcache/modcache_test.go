package modcache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoot(t *testing.T) {
	t.Run("GOMODCACHE wins", func(t *testing.T) {
		t.Setenv("GOMODCACHE", "/cache")
		t.Setenv("GOPATH", "/gopath")
		assert.Equal(t, "/cache", Root())
	})

	t.Run("first GOPATH entry", func(t *testing.T) {
		t.Setenv("GOMODCACHE", "")
		t.Setenv("GOPATH", "/one"+string(filepath.ListSeparator)+"/two")
		assert.Equal(t, filepath.Join("/one", "pkg", "mod"), Root())
		assert.Equal(t, []string{"/one", "/two"}, GOPATH())
	})

	t.Run("home fallback", func(t *testing.T) {
		t.Setenv("GOMODCACHE", "")
		t.Setenv("GOPATH", "")
		t.Setenv("HOME", "/home/gopher")
		assert.Equal(t, filepath.Join("/home/gopher", "go", "pkg", "mod"), Root())
	})
}

func TestDir(t *testing.T) {
	t.Setenv("GOMODCACHE", "/cache")

	assert.Equal(t,
		filepath.Join("/cache", "github.com", "!burnt!sushi", "toml@v1.4.0"),
		Dir("github.com/BurntSushi/toml", "v1.4.0"))
	assert.Equal(t,
		filepath.Join("/cache", "github.com", "rs", "zerolog@v1.34.0"),
		Dir("github.com/rs/zerolog", "v1.34.0"))
	assert.Empty(t, Dir("github.com/rs/zerolog", ""))
	assert.Empty(t, Dir("bad path with spaces", "v1.0.0"))
}

func TestSearchPath(t *testing.T) {
	t.Setenv("GOMODCACHE", "/gopath/pkg/mod")
	t.Setenv("GOPATH", "/gopath")

	assert.Equal(t, []string{"/src", "/gopath/pkg/mod", "/gopath"}, SearchPath("/src"))
	assert.Equal(t, []string{"/gopath/pkg/mod", "/gopath"}, SearchPath(""))
}
