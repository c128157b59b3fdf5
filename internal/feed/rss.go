package feed

import (
	"encoding/xml"
	"fmt"
	"time"
)

// ContentTypeRSS is the Content-Type header for rendered RSS documents.
const ContentTypeRSS = "application/rss+xml; charset=utf-8"

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel channelXML `xml:"channel"`
}

type channelXML struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []itemXML `xml:"item"`
}

type itemXML struct {
	Title    string `xml:"title"`
	Link     string `xml:"link,omitempty"`
	GUID     string `xml:"guid"`
	PubDate  string `xml:"pubDate"`
	Author   string `xml:"author,omitempty"`
	Category string `xml:"category,omitempty"`
}

// RenderRSS renders the feed as an RSS 2.0 document.
func RenderRSS(f Feed) ([]byte, error) {
	items := make([]itemXML, 0, len(f.Items))
	for _, it := range f.Items {
		items = append(items, itemXML{
			Title:    it.Title,
			Link:     it.Link,
			GUID:     it.ID,
			PubDate:  it.Created.UTC().Format(time.RFC1123Z),
			Author:   it.Author,
			Category: it.Connector,
		})
	}

	channel := channelXML{
		Title:       f.Title,
		Link:        channelLink(f),
		Description: f.Description,
		Items:       items,
	}
	if f.Updated != nil {
		channel.LastBuildDate = f.Updated.UTC().Format(time.RFC1123Z)
	}

	out := rssXML{Version: "2.0", Channel: channel}

	data, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal rss: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}

func channelLink(f Feed) string {
	if f.Link != "" {
		return f.Link
	}
	return f.SiteURL
}
