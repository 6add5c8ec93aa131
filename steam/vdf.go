package steam

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"gridsetter/models"
)

// Binary VDF type tags
const (
	typeMap     byte = 0x00
	typeString  byte = 0x01
	typeInt32   byte = 0x02
	typeFloat32 byte = 0x03
	typePointer byte = 0x04
	typeColor   byte = 0x06
	typeUint64  byte = 0x07
	typeEnd     byte = 0x08
	typeInt64   byte = 0x0A
)

// ErrMalformedContainer is returned when shortcuts.vdf cannot be decoded.
// Nothing decoded before the break point is returned.
var ErrMalformedContainer = errors.New("malformed shortcuts container")

// SkippedRecord describes a shortcut entry that was dropped during decoding
type SkippedRecord struct {
	Index   int    `json:"index"`
	Key     string `json:"key"`
	AppName string `json:"app_name,omitempty"`
	Reason  string `json:"reason"`
}

func (r SkippedRecord) String() string {
	if r.AppName != "" {
		return fmt.Sprintf("entry %s (%s): %s", r.Key, r.AppName, r.Reason)
	}
	return fmt.Sprintf("entry %s: %s", r.Key, r.Reason)
}

// node is a single decoded key/value pair
type node struct {
	kind     byte
	key      string
	str      string
	num      uint32
	children []node
}

type decoder struct {
	reader *bytes.Reader
}

// DecodeShortcuts parses the contents of a shortcuts.vdf file. Shortcuts are
// returned in numeric key order; entries missing a name or executable are
// reported as skipped instead of failing the whole file.
func DecodeShortcuts(data []byte) ([]models.Shortcut, []SkippedRecord, error) {
	nodes, err := parseDocument(data)
	if err != nil {
		return nil, nil, err
	}

	list := findMap(nodes, "shortcuts")
	if list == nil {
		return nil, nil, nil
	}

	type entry struct {
		shortcut models.Shortcut
		skipped  *SkippedRecord
	}

	// Keys are logically a mapping, so a repeated index replaces the earlier entry
	entries := make(map[uint64]entry)
	for _, child := range list.children {
		if child.kind != typeMap {
			continue
		}
		index, err := strconv.ParseUint(child.key, 10, 32)
		if err != nil {
			continue
		}

		shortcut, reason := shortcutFromNode(int(index), child)
		if reason != "" {
			entries[index] = entry{skipped: &SkippedRecord{
				Index:   int(index),
				Key:     child.key,
				AppName: shortcut.AppName,
				Reason:  reason,
			}}
			continue
		}
		entries[index] = entry{shortcut: shortcut}
	}

	keys := make([]uint64, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var shortcuts []models.Shortcut
	var skipped []SkippedRecord
	for _, k := range keys {
		e := entries[k]
		if e.skipped != nil {
			skipped = append(skipped, *e.skipped)
			continue
		}
		shortcuts = append(shortcuts, e.shortcut)
	}

	return shortcuts, skipped, nil
}

// parseDocument reads top-level nodes until EOF or a closing end marker
func parseDocument(data []byte) ([]node, error) {
	d := &decoder{reader: bytes.NewReader(data)}

	var nodes []node
	for {
		kind, err := d.reader.ReadByte()
		if err == io.EOF {
			return nodes, nil
		}
		if err != nil {
			return nil, err
		}
		if kind == typeEnd {
			return nodes, nil
		}

		key, err := d.readNullTerminatedString("key")
		if err != nil {
			return nil, err
		}
		n, err := d.readValue(kind, key)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
}

// readMap reads child nodes until the end marker of the map named name
func (d *decoder) readMap(name string) ([]node, error) {
	var children []node
	for {
		kind, err := d.reader.ReadByte()
		if err != nil {
			return nil, d.malformed("map %q is not terminated", name)
		}
		if kind == typeEnd {
			return children, nil
		}

		key, err := d.readNullTerminatedString("key")
		if err != nil {
			return nil, err
		}
		n, err := d.readValue(kind, key)
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
}

func (d *decoder) readValue(kind byte, key string) (node, error) {
	n := node{kind: kind, key: key}

	switch kind {
	case typeMap:
		children, err := d.readMap(key)
		if err != nil {
			return n, err
		}
		n.children = children
	case typeString:
		value, err := d.readNullTerminatedString(fmt.Sprintf("value of %q", key))
		if err != nil {
			return n, err
		}
		n.str = value
	case typeInt32:
		if err := binary.Read(d.reader, binary.LittleEndian, &n.num); err != nil {
			return n, d.malformed("truncated int32 %q", key)
		}
	case typeFloat32, typePointer, typeColor:
		if err := d.skip(4, key); err != nil {
			return n, err
		}
	case typeUint64, typeInt64:
		if err := d.skip(8, key); err != nil {
			return n, err
		}
	default:
		return n, d.malformed("unknown type tag 0x%02x for key %q", kind, key)
	}

	return n, nil
}

// skip advances over a fixed width value that the shortcut model ignores
func (d *decoder) skip(width int, key string) error {
	if d.reader.Len() < width {
		return d.malformed("truncated value %q", key)
	}
	_, err := d.reader.Seek(int64(width), io.SeekCurrent)
	return err
}

// readNullTerminatedString reads a null-terminated string from the reader
func (d *decoder) readNullTerminatedString(what string) (string, error) {
	var result []byte
	for {
		b, err := d.reader.ReadByte()
		if err != nil {
			return "", d.malformed("unterminated %s", what)
		}
		if b == 0 {
			return string(result), nil
		}
		result = append(result, b)
	}
}

func (d *decoder) offset() int64 {
	return d.reader.Size() - int64(d.reader.Len())
}

func (d *decoder) malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d", ErrMalformedContainer, fmt.Sprintf(format, args...), d.offset())
}

// findMap returns the last map node named key, compared case-insensitively
func findMap(nodes []node, key string) *node {
	var found *node
	for i := range nodes {
		if nodes[i].kind == typeMap && strings.EqualFold(nodes[i].key, key) {
			found = &nodes[i]
		}
	}
	return found
}

// shortcutFromNode builds a shortcut from a decoded entry. A non-empty reason
// means the entry lacks a required field.
func shortcutFromNode(index int, n node) (models.Shortcut, string) {
	shortcut := models.Shortcut{Index: index}

	for _, field := range n.children {
		switch field.kind {
		case typeString:
			assignStringField(&shortcut, field.key, field.str)
		case typeInt32:
			assignIntField(&shortcut, field.key, field.num)
		case typeMap:
			if strings.EqualFold(field.key, "tags") {
				shortcut.Tags = tagValues(field)
			}
		}
	}

	switch {
	case shortcut.AppName == "":
		return shortcut, "missing app name"
	case shortcut.Exe == "":
		return shortcut, "missing executable path"
	}

	shortcut.AppID = ShortcutAppID(shortcut.Exe, shortcut.AppName)
	return shortcut, ""
}

// assignStringField assigns a string value to the matching shortcut field
func assignStringField(shortcut *models.Shortcut, fieldName, value string) {
	switch strings.ToLower(fieldName) {
	case "appname":
		shortcut.AppName = value
	case "exe":
		shortcut.Exe = value
	case "startdir":
		shortcut.StartDir = value
	case "icon":
		shortcut.Icon = value
	case "launchoptions":
		shortcut.LaunchOptions = value
	}
}

// assignIntField assigns an integer value to the matching shortcut field
func assignIntField(shortcut *models.Shortcut, fieldName string, value uint32) {
	switch strings.ToLower(fieldName) {
	case "appid":
		shortcut.StoredAppID = value
	case "ishidden":
		shortcut.IsHidden = value != 0
	case "lastplaytime":
		shortcut.LastPlayTime = value
	}
}

func tagValues(tags node) []string {
	var values []string
	for _, tag := range tags.children {
		if tag.kind == typeString {
			values = append(values, tag.str)
		}
	}
	return values
}
