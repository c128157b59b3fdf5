package feed

import (
	"encoding/json"
	"fmt"
	"time"
)

// ContentTypeJSON is the Content-Type header for rendered JSON feeds.
const ContentTypeJSON = "application/json; charset=utf-8"

type jsonFeed struct {
	Title   string     `json:"title"`
	Link    string     `json:"link,omitempty"`
	Updated *time.Time `json:"updated,omitempty"`
	Items   []jsonItem `json:"items"`
}

type jsonItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Link      string    `json:"link,omitempty"`
	Author    string    `json:"author,omitempty"`
	Connector string    `json:"connector,omitempty"`
	Context   string    `json:"context,omitempty"`
	Action    string    `json:"action,omitempty"`
	Created   time.Time `json:"created"`
}

// RenderJSON renders the feed as a JSON document.
func RenderJSON(f Feed) ([]byte, error) {
	items := make([]jsonItem, 0, len(f.Items))
	for _, it := range f.Items {
		items = append(items, jsonItem{
			ID:        it.ID,
			Title:     it.Title,
			Link:      it.Link,
			Author:    it.Author,
			Connector: it.Connector,
			Context:   it.Context,
			Action:    it.Action,
			Created:   it.Created,
		})
	}

	out := jsonFeed{
		Title:   f.Title,
		Link:    channelLink(f),
		Updated: f.Updated,
		Items:   items,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json feed: %w", err)
	}
	return data, nil
}
