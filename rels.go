package xlsx

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// relationshipMap maps a relationship id ("rId2") to its archive-relative
// target ("worksheets/sheet2.xml"). Every sheet lookup goes through it; the
// declared sheet order and the relationship target are independent.
type relationshipMap map[string]string

type xmlRelationships struct {
	XMLName      xml.Name `xml:"Relationships"`
	Relationship []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

func readRelationships(reader io.Reader) (relationshipMap, error) {
	decoder := xml.NewDecoder(reader)
	data := &xmlRelationships{}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("parse xl/_rels/workbook.xml.rels: %v: %w", err, ErrMalformed)
	}

	rels := make(relationshipMap, len(data.Relationship))
	for _, rel := range data.Relationship {
		rels[rel.ID] = rel.Target
	}
	return rels, nil
}

// partPath normalizes a relationship target to an archive path. Targets are
// relative to xl/ unless they are absolute, in which case the leading slash
// is stripped.
func partPath(target string) string {
	if strings.HasPrefix(target, "/") {
		return target[1:]
	}
	return "xl/" + target
}
