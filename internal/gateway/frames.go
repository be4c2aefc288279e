package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/akiii/botforge/internal/chat"
)

// Frame is the JSON wire format exchanged with the browser client.
// Inbound frames carry type "message"; outbound frames are "text",
// "embed" or "file".
type Frame struct {
	Type    string      `json:"type"`
	Content string      `json:"content,omitempty"`
	Embed   *embedFrame `json:"embed,omitempty"`
	File    *fileFrame  `json:"file,omitempty"`
}

type embedFrame struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []fieldFrame `json:"fields,omitempty"`
}

type fieldFrame struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type fileFrame struct {
	Name string `json:"name"`
	// Data is base64-encoded on the wire by encoding/json.
	Data []byte `json:"data"`
}

const frameTypeMessage = "message"

// encodeOutbound converts send options into one wire frame.
func encodeOutbound(opts chat.SendOptions) (Frame, error) {
	switch {
	case opts.File != nil:
		return Frame{
			Type:    "file",
			Content: opts.Content,
			File:    &fileFrame{Name: opts.File.Name, Data: opts.File.Data},
		}, nil
	case opts.Embed != nil:
		ef := &embedFrame{
			Title:       opts.Embed.Title,
			Description: opts.Embed.Description,
			Color:       opts.Embed.Color,
		}
		for _, f := range opts.Embed.Fields {
			ef.Fields = append(ef.Fields, fieldFrame{Name: f.Name, Value: f.Value, Inline: f.Inline})
		}
		return Frame{Type: "embed", Embed: ef}, nil
	case opts.Content != "":
		return Frame{Type: "text", Content: opts.Content}, nil
	}
	return Frame{}, fmt.Errorf("empty send options")
}

// decodeInbound parses one client frame; only "message" frames are
// meaningful, everything else is ignored by returning ok=false.
func decodeInbound(data []byte) (content string, ok bool, err error) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return "", false, fmt.Errorf("malformed frame: %w", err)
	}
	if frame.Type != frameTypeMessage {
		return "", false, nil
	}
	return frame.Content, true, nil
}
