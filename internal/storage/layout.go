package storage

import (
	"encoding/base64"
	"mime"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/cast"

	"docgateway/internal/model"
)

// Metadata keys written alongside every object.
const (
	MetaTitle            = "title"
	MetaResourceClass    = "resource-class"
	MetaCreatedAt        = "created-at"
	MetaOriginalFilename = "original-filename"
	MetaWidth            = "width"
	MetaHeight           = "height"
)

// Objects live at "<class>/<folder>/<publicID>". The leading class segment is the
// record's declared resource type, so it survives even when metadata is missing.

func objectPath(class model.ResourceClass, key string) string {
	return string(class) + "/" + key
}

func joinKey(folder, publicID string) string {
	return folder + "/" + publicID
}

func classPrefix(class model.ResourceClass, folder string) string {
	return string(class) + "/" + folder + "/"
}

// parseObjectPath splits a stored object path back into its class and key.
func parseObjectPath(p string) (model.ResourceClass, string, bool) {
	class, key, ok := strings.Cut(p, "/")
	if !ok || key == "" {
		return "", "", false
	}
	c := model.ResourceClass(class)
	if !c.Valid() {
		return "", "", false
	}
	return c, key, true
}

// publicURL joins base with the escaped object path.
func publicURL(base, objPath string) string {
	segs := strings.Split(objPath, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segs, "/")
}

// encodeMetadata turns plain metadata into header-safe values. Non-ASCII text is
// RFC 2047 encoded because object metadata travels as HTTP headers.
func encodeMetadata(p WriteParams, createdAt time.Time) map[string]string {
	out := make(map[string]string, len(p.Metadata)+2)
	for k, v := range p.Metadata {
		out[strings.ToLower(k)] = encodeHeaderValue(v)
	}
	out[MetaResourceClass] = string(p.Class)
	out[MetaCreatedAt] = strconv.FormatInt(createdAt.UnixMilli(), 10)
	return out
}

// decodeMetadata normalizes keys from any backend ("X-Amz-Meta-Title", "Title", "title")
// to lower case without the amz prefix, and decodes RFC 2047 values.
func decodeMetadata(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	dec := new(mime.WordDecoder)
	for k, v := range in {
		key := strings.ToLower(k)
		if !strings.HasPrefix(key, "x-amz-meta-") && strings.HasPrefix(key, "x-") {
			continue
		}
		key = strings.TrimPrefix(key, "x-amz-meta-")
		if d, err := dec.DecodeHeader(v); err == nil {
			v = d
		}
		out[key] = v
	}
	return out
}

// encodeHeaderValue leaves plain printable ASCII as is. Values that a reader
// would otherwise decode ("=?" sequences) or that a transport would trim
// (surrounding spaces) are always wrapped in encoded-words.
func encodeHeaderValue(v string) string {
	if strings.Contains(v, "=?") || strings.TrimSpace(v) != v {
		return encodeWords(v)
	}
	for _, r := range v {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return mime.QEncoding.Encode("utf-8", v)
		}
	}
	return v
}

// encodeWords B-encodes v unconditionally. mime.WordEncoder returns printable
// ASCII untouched, so it cannot be used here.
func encodeWords(v string) string {
	const chunk = 45 // 60 base64 chars keeps each word under 75

	var words []string
	for len(v) > 0 {
		n := len(v)
		if n > chunk {
			n = chunk
			for !utf8.RuneStart(v[n]) {
				n--
			}
		}
		words = append(words, "=?utf-8?b?"+base64.StdEncoding.EncodeToString([]byte(v[:n]))+"?=")
		v = v[n:]
	}
	return strings.Join(words, " ")
}

// createdAtFromKey reads the epoch-millisecond prefix of the id at the end of
// key, as in "403notes/1700000000000_algo_notes".
func createdAtFromKey(key string) (time.Time, bool) {
	id := key[strings.LastIndex(key, "/")+1:]
	digits, _, ok := strings.Cut(id, "_")
	if !ok || digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

// createdAtFrom reads the creation instant recorded at write time. Older objects
// may carry it as epoch milliseconds, as a date string, or not at all, in which
// case the backend's modification time is the best available answer.
func createdAtFrom(meta map[string]string, fallback time.Time) time.Time {
	raw := strings.TrimSpace(meta[MetaCreatedAt])
	if raw == "" {
		return fallback.UTC()
	}
	if ms, err := cast.ToInt64E(raw); err == nil && ms > 0 {
		return time.UnixMilli(ms).UTC()
	}
	if t, err := cast.ToTimeE(raw); err == nil {
		return t.UTC()
	}
	return fallback.UTC()
}

// contentDisposition builds the delivery header for an object.
func contentDisposition(p WriteParams) string {
	if !p.Inline {
		return ""
	}
	if p.FileName == "" {
		return "inline"
	}
	return mime.FormatMediaType("inline", map[string]string{"filename": p.FileName})
}

// sortAndTrim orders records newest first and keeps at most max of them.
func sortAndTrim(recs []Record, max int) []Record {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].Key > recs[j].Key
		}
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	if len(recs) > max {
		recs = recs[:max]
	}
	return recs
}
