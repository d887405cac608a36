package tap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rig-run/rig/internal/config"
	"github.com/rig-run/rig/internal/logging"
	"github.com/rig-run/rig/internal/prompt"
	"github.com/rig-run/rig/pkg/types"
)

// ErrOverwriteDeclined reports that the operator kept an existing link.
// Registration distinguishes this from "no link existed": the latter is
// simply the success path.
var ErrOverwriteDeclined = errors.New("tap link overwrite declined")

const (
	tasksDirName  = "tasks"
	taskEntryFile = "index.js"
)

// AddLink writes the link into the config document under its name, creating
// the tap-links container if absent, and persists the document.
func AddLink(store *config.Store, link *types.TapLink) error {
	doc, err := store.Load()
	if err != nil {
		return err
	}

	if doc.TapLinks == nil {
		doc.TapLinks = make(map[string]*types.TapLink)
	}
	doc.TapLinks[link.Name] = link

	return store.Save()
}

// RemoveLink deletes the named link and persists the document. Removing a
// link that does not exist is not an error.
func RemoveLink(store *config.Store, name string) error {
	doc, err := store.Load()
	if err != nil {
		return err
	}

	if _, ok := doc.TapLinks[name]; !ok {
		return nil
	}
	delete(doc.TapLinks, name)

	return store.Save()
}

// EnsureOverwrite decides whether an existing link may be replaced by a new
// location. With no existing link it always allows. Silent mode never
// auto-overwrites: the prompt is treated as declined.
func EnsureOverwrite(existing *types.TapLink, name, newPath string, silent bool, confirm prompt.ConfirmFunc) bool {
	if existing == nil || newPath == "" {
		return true
	}
	if silent {
		return false
	}
	return confirm(fmt.Sprintf("tap %q is already linked to %s; relink to %s?", name, existing.Path, newPath))
}

// ReconcilePath updates the link's path in place when it differs from the
// newly supplied location, and returns the link.
func ReconcilePath(link *types.TapLink, newLocation string) *types.TapLink {
	if newLocation != "" && link.Path != newLocation {
		link.Path = newLocation
	}
	return link
}

// LocateCustomTaskEntry searches the tap repository tree for a directory
// named "tasks" holding an index file. A tap without one is fine; a tasks
// directory without an index file is logged and treated the same way.
func LocateCustomTaskEntry(tapRootPath string) (string, bool) {
	matches, err := doublestar.Glob(os.DirFS(tapRootPath), "**/"+tasksDirName)
	if err != nil || len(matches) == 0 {
		return "", false
	}
	sort.Strings(matches)

	for _, match := range matches {
		dir := filepath.Join(tapRootPath, filepath.FromSlash(match))
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}

		entry := filepath.Join(dir, taskEntryFile)
		if _, err := os.Stat(entry); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logging.Warn().
					Str("dir", dir).
					Str("index", taskEntryFile).
					Msg("tasks directory has no index file; linking tap without custom tasks")
			}
			continue
		}
		return entry, true
	}
	return "", false
}

// Register orchestrates tap registration: look up any existing link, confirm
// an overwrite, reconcile the stored path, and attach the custom task entry
// when the repository contributes one. It composes the link but does not
// persist it; that is AddLink's job. A declined overwrite yields
// ErrOverwriteDeclined and leaves the stored link untouched.
func Register(store *config.Store, silent bool, name, location string, confirm prompt.ConfirmFunc) (*types.TapLink, error) {
	doc, err := store.Load()
	if err != nil {
		return nil, err
	}

	existing := doc.TapLinks[name]
	if !EnsureOverwrite(existing, name, location, silent, confirm) {
		return nil, ErrOverwriteDeclined
	}

	link := existing
	if link == nil {
		link = &types.TapLink{Name: name}
	}
	link = ReconcilePath(link, location)

	link.Tasks = ""
	if entry, ok := LocateCustomTaskEntry(link.Path); ok {
		link.Tasks = entry
	}

	manifest, err := ReadManifest(link.Path)
	if err != nil {
		logging.Warn().Str("tap", name).Err(err).Msg("unreadable tap manifest")
	} else if manifest != nil {
		link.Description = manifest.Description
	}

	return link, nil
}
