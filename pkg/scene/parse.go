package scene

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/user/sceneshow/pkg/rendererr"
)

// Parse reads a JSON scene document.
func Parse(data []byte) (*Document, error) {
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", rendererr.ErrInvalidDocument, err)
	}
	return FromMap(root)
}

// ParseYAML reads a YAML scene document with the same fields as JSON.
func ParseYAML(data []byte) (*Document, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", rendererr.ErrInvalidDocument, err)
	}
	return FromMap(root)
}

// FromMap builds a document from decoded JSON or YAML. Missing pages and
// unreadable dimensions are structural failures.
func FromMap(root map[string]any) (*Document, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: empty document", rendererr.ErrInvalidDocument)
	}

	doc := &Document{Background: ParseBackground(root["background"])}
	var err error
	if doc.Width, err = ParseDimension(root["width"]); err != nil {
		return nil, fmt.Errorf("%w: root width: %v", rendererr.ErrInvalidDocument, err)
	}
	if doc.Height, err = ParseDimension(root["height"]); err != nil {
		return nil, fmt.Errorf("%w: root height: %v", rendererr.ErrInvalidDocument, err)
	}

	rawPages, _ := root["pages"].([]any)
	if len(rawPages) == 0 {
		return nil, fmt.Errorf("%w: document has no pages", rendererr.ErrInvalidDocument)
	}

	for i, rp := range rawPages {
		pm, ok := rp.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: page %d is not an object", rendererr.ErrInvalidDocument, i)
		}
		page, err := parsePage(pm, i)
		if err != nil {
			return nil, err
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

func parsePage(m map[string]any, index int) (Page, error) {
	page := Page{
		ID:         str(m, "id", fmt.Sprintf("page-%d", index+1)),
		Background: ParseBackground(m["background"]),
	}
	var err error
	if page.Width, err = ParseDimension(m["width"]); err != nil {
		return Page{}, fmt.Errorf("%w: page %d width: %v", rendererr.ErrInvalidDocument, index, err)
	}
	if page.Height, err = ParseDimension(m["height"]); err != nil {
		return Page{}, fmt.Errorf("%w: page %d height: %v", rendererr.ErrInvalidDocument, index, err)
	}

	children, _ := m["children"].([]any)
	for j, c := range children {
		cm, ok := c.(map[string]any)
		if !ok {
			page.Children = append(page.Children, Element{
				ID:      fmt.Sprintf("element-%d", j),
				Index:   j,
				Kind:    KindUnknown,
				RawType: fmt.Sprintf("%T", c),
				Visible: true,
				Opacity: 1,
			})
			continue
		}
		page.Children = append(page.Children, ParseElement(cm, j))
	}
	return page, nil
}
