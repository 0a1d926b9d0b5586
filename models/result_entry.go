package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// EntryKind tags a per-URL result as either keyword findings or a fetch failure.
type EntryKind string

const (
	EntryKindSuccess EntryKind = "success"
	EntryKindError   EntryKind = "error"
)

// KeywordFinding records whether one keyword was found on a visited URL.
type KeywordFinding struct {
	Keyword string
	Found   bool
}

// Findings is an ordered keyword -> found mapping. It is encoded as a JSON object
// whose key order follows the slice order.
type Findings []KeywordFinding

// Lookup reports the found flag for keyword and whether the keyword is present at all.
func (f Findings) Lookup(keyword string) (found bool, ok bool) {
	for _, kf := range f {
		if kf.Keyword == keyword {
			return kf.Found, true
		}
	}
	return false, false
}

// Keywords returns the keywords in stored order.
func (f Findings) Keywords() []string {
	keywords := make([]string, 0, len(f))
	for _, kf := range f {
		keywords = append(keywords, kf.Keyword)
	}
	return keywords
}

// MarshalJSON writes the findings as an object, preserving order.
func (f Findings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kf := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(kf.Keyword)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		if kf.Found {
			buf.WriteString(":true")
		} else {
			buf.WriteString(":false")
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a keyword -> bool object, preserving order.
// Values that are not booleans are read as "not found".
func (f *Findings) UnmarshalJSON(data []byte) error {
	var out Findings
	err := decodeOrderedObject(data, func(key string, raw json.RawMessage) error {
		var found bool
		if err := json.Unmarshal(raw, &found); err != nil {
			found = false
		}
		out = append(out, KeywordFinding{Keyword: key, Found: found})
		return nil
	})
	if err != nil {
		return err
	}
	*f = out
	return nil
}

// ResultEntry is one visited URL of a job: either keyword findings (success) or
// the error message recorded when the URL could not be fetched.
type ResultEntry struct {
	URL      string    `json:"url"`
	Kind     EntryKind `json:"kind"`
	Keywords Findings  `json:"keywords,omitempty"`
	Message  string    `json:"message,omitempty"`
}

// NewSuccessEntry builds a success entry.
func NewSuccessEntry(url string, findings Findings) ResultEntry {
	return ResultEntry{URL: url, Kind: EntryKindSuccess, Keywords: findings}
}

// NewErrorEntry builds an error entry.
func NewErrorEntry(url, message string) ResultEntry {
	return ResultEntry{URL: url, Kind: EntryKindError, Message: message}
}

func (e ResultEntry) IsError() bool {
	return e.Kind == EntryKindError
}

// Found reports whether keyword was found. Keywords missing from a legacy entry read as false.
func (e ResultEntry) Found(keyword string) bool {
	found, _ := e.Keywords.Lookup(keyword)
	return found
}

// MatchCount is the number of keywords found on this URL.
func (e ResultEntry) MatchCount() int {
	count := 0
	for _, kf := range e.Keywords {
		if kf.Found {
			count++
		}
	}
	return count
}

// ResultSet holds the per-URL entries of a job in source order.
//
// Stored documents use an untagged map: url -> {keyword: bool} or url -> {error: string}.
// ResultSet decodes that shape as well as its own tagged list encoding.
type ResultSet []ResultEntry

// UnmarshalJSON accepts either the stored url-keyed object or a list of tagged entries.
func (rs *ResultSet) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*rs = nil
		return nil
	}

	switch trimmed[0] {
	case '[':
		var entries []ResultEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return fmt.Errorf("decode tagged results: %w", err)
		}
		for i := range entries {
			if entries[i].Kind == "" {
				if entries[i].Message != "" {
					entries[i].Kind = EntryKindError
				} else {
					entries[i].Kind = EntryKindSuccess
				}
			}
		}
		*rs = entries
		return nil
	case '{':
		var entries ResultSet
		err := decodeOrderedObject(trimmed, func(url string, raw json.RawMessage) error {
			entry, err := decodeStoredEntry(url, raw)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
			return nil
		})
		if err != nil {
			return fmt.Errorf("decode stored results: %w", err)
		}
		*rs = entries
		return nil
	default:
		return fmt.Errorf("results: unexpected JSON value %q", truncate(string(trimmed), 32))
	}
}

// decodeStoredEntry converts one value of the stored untagged map. The presence of an
// "error" key is the only thing that marks a failed URL.
func decodeStoredEntry(url string, raw json.RawMessage) (ResultEntry, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return ResultEntry{}, fmt.Errorf("entry %s: %w", url, err)
	}

	if msgRaw, ok := keys["error"]; ok {
		var message string
		if err := json.Unmarshal(msgRaw, &message); err != nil {
			message = strings.TrimSpace(string(msgRaw))
		}
		return NewErrorEntry(url, message), nil
	}

	var findings Findings
	if err := findings.UnmarshalJSON(raw); err != nil {
		return ResultEntry{}, fmt.Errorf("entry %s: %w", url, err)
	}
	return NewSuccessEntry(url, findings), nil
}

// decodeOrderedObject walks the members of a JSON object in document order.
func decodeOrderedObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}

	_, err = dec.Token()
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
