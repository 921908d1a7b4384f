// Package resources embeds the tomato artwork.
package resources

import (
	"embed"
	"fmt"
	"path"
	"sync"

	"fyne.io/fyne/v2"
)

// Sprite file names.
const (
	Tomato           = "tomato.svg"
	TomatoSquish     = "tomato_squish.svg"
	TomatoRest       = "tomato_rest.svg"
	TomatoRestSquish = "tomato_rest_squish.svg"
)

const iconPath = "logo/tomato.svg"

//go:embed sprites/*.svg logo/*.svg
var artwork embed.FS

var (
	mu    sync.Mutex
	cache = map[string]fyne.Resource{}
)

// Sprite returns the named sprite as a fyne resource.
func Sprite(name string) (fyne.Resource, error) {
	return load(path.Join("sprites", name))
}

// MustSprite is Sprite for names known to be embedded.
func MustSprite(name string) fyne.Resource {
	resource, err := Sprite(name)
	if err != nil {
		panic(err)
	}
	return resource
}

// Logo returns the application and tray icon.
func Logo() (fyne.Resource, error) {
	return load(iconPath)
}

// MustLogo is Logo that panics when the icon is missing from the build.
func MustLogo() fyne.Resource {
	resource, err := Logo()
	if err != nil {
		panic(err)
	}
	return resource
}

// load reads an embedded file once; later calls share the same resource so
// fyne can cache the rasterised image.
func load(name string) (fyne.Resource, error) {
	mu.Lock()
	defer mu.Unlock()
	if resource, ok := cache[name]; ok {
		return resource, nil
	}

	data, err := artwork.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("load artwork %s: %w", name, err)
	}
	resource := fyne.NewStaticResource(path.Base(name), data)
	cache[name] = resource
	return resource, nil
}
