package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	apperrors "bakai-assistant/errors"
)

// FileSource loads knowledge from a JSON file of the form
// [{"content": "...", "metadata": {...}}, ...].
type FileSource struct {
	Path string
}

type fileEntry struct {
	ID       string                     `json:"id"`
	Content  string                     `json:"content"`
	Question string                     `json:"question"`
	Answer   string                     `json:"answer"`
	Metadata map[string]json.RawMessage `json:"metadata"`
}

// NewFileSource returns a KnowledgeSource reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Load reads and decodes the file, flattening metadata values to strings.
func (s *FileSource) Load(ctx context.Context) ([]KnowledgeEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge file %s: %w", s.Path, err)
	}
	return DecodeEntries(data)
}

// DecodeEntries parses the JSON knowledge format.
func DecodeEntries(data []byte) ([]KnowledgeEntry, error) {
	var raw []fileEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, fmt.Sprintf("decode knowledge json: %v", err))
	}

	entries := make([]KnowledgeEntry, 0, len(raw))
	for _, item := range raw {
		if strings.TrimSpace(item.Content) == "" && strings.TrimSpace(item.Question) == "" {
			continue
		}
		entry := KnowledgeEntry{
			ID:                 item.ID,
			RawText:            item.Content,
			StructuredQuestion: item.Question,
			StructuredAnswer:   item.Answer,
		}
		if len(item.Metadata) > 0 {
			entry.Attributes = make(map[string]string, len(item.Metadata))
			for k, v := range item.Metadata {
				entry.Attributes[k] = flattenValue(v)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// flattenValue renders a metadata value as a plain string: null becomes empty,
// strings are unquoted, numbers and booleans keep their literal form, and
// arrays/objects stay compact JSON.
func flattenValue(v json.RawMessage) string {
	trimmed := bytes.TrimSpace(v)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	if trimmed[0] == '[' || trimmed[0] == '{' {
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err == nil {
			return buf.String()
		}
	}
	return string(trimmed)
}
