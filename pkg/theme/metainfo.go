package theme

import (
	"os"

	"github.com/beevik/etree"

	"github.com/nocturne-theme/nocturne-hook/pkg/errors"
)

// Metadata describes the packaged theme, read from its AppStream metainfo.
// Purely informational: the hook runs fine without it.
type Metadata struct {
	ID      string
	Name    string
	Version string
	Summary string
}

// ReadMetainfo parses an AppStream metainfo.xml. A missing file returns
// zero-value metadata with no error.
func ReadMetainfo(path string) (*Metadata, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Metadata{}, nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse metainfo %s", path)
	}

	root := doc.SelectElement("component")
	if root == nil {
		return nil, errors.Newf(errors.ErrConfigParse, "metainfo %s has no component element", path)
	}

	meta := &Metadata{}
	if el := root.SelectElement("id"); el != nil {
		meta.ID = el.Text()
	}
	if el := root.SelectElement("name"); el != nil {
		meta.Name = el.Text()
	}
	if el := root.SelectElement("summary"); el != nil {
		meta.Summary = el.Text()
	}
	if releases := root.SelectElement("releases"); releases != nil {
		if release := releases.SelectElement("release"); release != nil {
			meta.Version = release.SelectAttrValue("version", "")
		}
	}
	return meta, nil
}
