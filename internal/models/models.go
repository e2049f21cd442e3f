package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// BookQuery is one input row: a best-seller identified by title and author,
// optionally with a plot summary and a promotional description.
type BookQuery struct {
	Title       string `json:"Title"`
	Author      string `json:"Author"`
	Summary     string `json:"Summary,omitempty"`
	Description string `json:"Description,omitempty"`
}

// Key returns the identity of the book.
func (q BookQuery) Key() Key {
	return Key{Title: q.Title, Author: q.Author}
}

// Key identifies a book across input and output tables.
type Key struct {
	Title  string
	Author string
}

func (k Key) String() string {
	return fmt.Sprintf("%s by %s", k.Title, k.Author)
}

// SourceResult is the structured answer of one knowledge-source call.
// Professions and Codes are aligned with Protagonists; each protagonist has
// its professions in chronological order and one code per profession.
type SourceResult struct {
	Genre                   string    `json:"Genre"`
	Protagonists            []string  `json:"Protagonists"`
	Professions             []Careers `json:"Professions"`
	Codes                   []Codes   `json:"ISCO"`
	LoveInterest            *string   `json:"Love Interest"`
	LoveInterestProfessions Careers   `json:"Love Interest Profession"`
	LoveInterestCodes       Codes     `json:"Love Interest's ISCO"`
}

// CodeCounts returns how many of the codes in r are the unknown and the
// uncertain sentinel.
func (r SourceResult) CodeCounts() (unknown, uncertain int) {
	count := func(codes Codes) {
		for _, c := range codes {
			switch {
			case c.IsUnknown():
				unknown++
			case c.IsUncertain():
				uncertain++
			}
		}
	}
	for _, codes := range r.Codes {
		count(codes)
	}
	count(r.LoveInterestCodes)
	return unknown, uncertain
}

// MergedRecord is what gets persisted for a book.
type MergedRecord struct {
	Query  BookQuery
	Result SourceResult
}

// Careers lists a single character's professions in the order they held them.
// Models occasionally answer with a bare string instead of a list, so both
// shapes decode; a bare blank string such as "None" decodes to no careers.
type Careers []string

func (c *Careers) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if IsBlankString(s) {
			*c = nil
			return nil
		}
		*c = Careers{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("professions must be a string or list of strings: %w", err)
	}
	*c = list
	return nil
}

// Code is an ISCO occupation code as reported by the model.
type Code string

const (
	// CodeUnknown marks a profession the model explicitly does not know.
	CodeUnknown Code = "0"
	// CodeUncertain marks a low-confidence or ambiguous mapping.
	CodeUncertain Code = "9"
)

// UnmarshalJSON accepts numbers, strings and null.
func (c *Code) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Code(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("ISCO code must be a number or string: %w", err)
		}
		if i, err := n.Int64(); err == nil {
			*c = Code(strconv.FormatInt(i, 10))
		} else {
			*c = Code(n.String())
		}
	}
	return nil
}

// Codes holds the occupation codes of one character, aligned with its
// Careers. A bare code decodes as a one-element list and a bare blank string
// as no codes.
type Codes []Code

func (c *Codes) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = nil
		return nil
	case len(data) > 0 && data[0] == '[':
		var list []Code
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*c = list
		return nil
	}

	var code Code
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	if IsBlankString(string(code)) {
		*c = nil
		return nil
	}
	*c = Codes{code}
	return nil
}

func (c Code) IsUnknown() bool {
	return c == CodeUnknown
}

func (c Code) IsUncertain() bool {
	return c == CodeUncertain
}
