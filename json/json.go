// Package json persists [critic.Session] snapshots as human-readable JSON.
//
// The snapshot holds three fields: the visible messages, the provider
// history and the style guide. The files have no version field. A snapshot
// that does not decode is treated as absent state by [LoadOrEmpty].
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fwojciec/critic"
)

// snapshot is the on-disk shape of a session.
type snapshot struct {
	Messages    []messageDTO `json:"messages"`
	ChatHistory []turnDTO    `json:"chat_history"`
	StyleGuide  string       `json:"style_guide"`
}

// export is the manual backup shape. History is omitted.
type export struct {
	Messages   []messageDTO `json:"messages"`
	StyleGuide string       `json:"style_guide"`
}

type messageDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type turnDTO struct {
	Role  string   `json:"role"`
	Parts []string `json:"parts"`
}

// MarshalSession serializes a Session with two-space indentation. Non-ASCII
// and HTML characters are written as-is and empty lists encode as [].
func MarshalSession(s critic.Session) ([]byte, error) {
	return encode(snapshot{
		Messages:    marshalMessages(s.Messages),
		ChatHistory: marshalTurns(s.History),
		StyleGuide:  s.StyleGuide,
	})
}

// UnmarshalSession deserializes a Session. Missing fields decode to their
// zero values; fields of the wrong type are an error.
func UnmarshalSession(data []byte) (critic.Session, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return critic.Session{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	msgs, err := unmarshalMessages(snap.Messages)
	if err != nil {
		return critic.Session{}, err
	}
	turns, err := unmarshalTurns(snap.ChatHistory)
	if err != nil {
		return critic.Session{}, err
	}
	return critic.Session{
		Messages:   msgs,
		History:    turns,
		StyleGuide: snap.StyleGuide,
	}, nil
}

// MarshalExport serializes the messages and style guide of a Session.
func MarshalExport(s critic.Session) ([]byte, error) {
	return encode(export{
		Messages:   marshalMessages(s.Messages),
		StyleGuide: s.StyleGuide,
	})
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalMessages(msgs []critic.Message) []messageDTO {
	result := make([]messageDTO, len(msgs))
	for i, m := range msgs {
		result[i] = messageDTO{Role: string(m.Role), Content: m.Content}
	}
	return result
}

func marshalTurns(turns []critic.Turn) []turnDTO {
	result := make([]turnDTO, len(turns))
	for i, t := range turns {
		parts := t.Parts
		if parts == nil {
			parts = []string{}
		}
		result[i] = turnDTO{Role: t.Role, Parts: parts}
	}
	return result
}

var errEmptyRole = errors.New("empty role")

func unmarshalMessages(dtos []messageDTO) ([]critic.Message, error) {
	if len(dtos) == 0 {
		return nil, nil
	}
	result := make([]critic.Message, len(dtos))
	for i, dto := range dtos {
		if dto.Role == "" {
			return nil, fmt.Errorf("message %d: %w", i, errEmptyRole)
		}
		result[i] = critic.Message{Role: critic.Role(dto.Role), Content: dto.Content}
	}
	return result, nil
}

func unmarshalTurns(dtos []turnDTO) ([]critic.Turn, error) {
	if len(dtos) == 0 {
		return nil, nil
	}
	result := make([]critic.Turn, len(dtos))
	for i, dto := range dtos {
		if dto.Role == "" {
			return nil, fmt.Errorf("chat_history %d: %w", i, errEmptyRole)
		}
		result[i] = critic.Turn{Role: dto.Role, Parts: dto.Parts}
	}
	return result, nil
}
