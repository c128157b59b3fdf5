package feed

import (
	"encoding/xml"
	"fmt"
	"time"
)

// ContentTypeAtom is the Content-Type header for rendered Atom documents.
const ContentTypeAtom = "application/atom+xml; charset=utf-8"

type atomXML struct {
	XMLName xml.Name   `xml:"feed"`
	XMLNS   string     `xml:"xmlns,attr"`
	Title   string     `xml:"title"`
	ID      string     `xml:"id"`
	Link    atomLink   `xml:"link"`
	Updated string     `xml:"updated"`
	Entries []entryXML `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
}

type entryXML struct {
	Title   string      `xml:"title"`
	ID      string      `xml:"id"`
	Link    *atomLink   `xml:"link,omitempty"`
	Updated string      `xml:"updated"`
	Author  *atomPerson `xml:"author,omitempty"`
}

type atomPerson struct {
	Name string `xml:"name"`
}

// RenderAtom renders the feed as an Atom 1.0 document.
func RenderAtom(f Feed) ([]byte, error) {
	entries := make([]entryXML, 0, len(f.Items))
	for _, it := range f.Items {
		entry := entryXML{
			Title:   it.Title,
			ID:      it.ID,
			Updated: it.Created.UTC().Format(time.RFC3339),
		}
		if it.Link != "" {
			entry.Link = &atomLink{Href: it.Link}
		}
		if it.Author != "" {
			entry.Author = &atomPerson{Name: it.Author}
		}
		entries = append(entries, entry)
	}

	updated := time.Time{}
	if f.Updated != nil {
		updated = *f.Updated
	}

	out := atomXML{
		XMLNS:   "http://www.w3.org/2005/Atom",
		Title:   f.Title,
		ID:      f.SiteURL,
		Link:    atomLink{Href: channelLink(f)},
		Updated: updated.UTC().Format(time.RFC3339),
		Entries: entries,
	}

	data, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal atom: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}
