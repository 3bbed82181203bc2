// Package classifier decides how an inbound file is stored and how it is named.
// Everything here is pure: no I/O, no failure modes.
package classifier

import (
	"mime"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"docgateway/internal/model"
)

const pdfMime = "application/pdf"

// Result is the outcome of classifying a file.
type Result struct {
	Class     model.ResourceClass
	TitleSeed string
}

// Classify picks the resource class for a file and a title seed derived from its name.
// A PDF is recognised by its declared MIME type or, failing that, by a .pdf suffix,
// since browsers sometimes send an empty or generic type for PDFs. Anything else is an image.
func Classify(fileName, declaredMime string) Result {
	class := model.ResourceImage
	if isPDFMime(declaredMime) || strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		class = model.ResourceRaw
	}
	return Result{Class: class, TitleSeed: titleSeed(fileName)}
}

func isPDFMime(declared string) bool {
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		mt = strings.TrimSpace(declared)
	}
	return strings.EqualFold(mt, pdfMime)
}

func titleSeed(fileName string) string {
	base := filepath.Base(fileName)
	if base == "." || base == "/" {
		base = fileName
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return fileName
	}
	return stem
}

// Slugify lowercases s and replaces every rune outside [a-z0-9] with '_'.
// The result has exactly as many runes as s.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		r = toLowerASCII(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}

func toLowerASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// NewID builds the storage key for a document created at createdAt with the given title.
func NewID(createdAt time.Time, title string) string {
	return strconv.FormatInt(createdAt.UnixMilli(), 10) + "_" + Slugify(title)
}

var (
	timestampPrefix = regexp.MustCompile(`^\d+_`)
	idPattern       = regexp.MustCompile(`^\d+_[a-z0-9_]*$`)
)

// ValidID reports whether id has the shape produced by NewID.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// TitleFromKey recovers a display title from a stored key for records written
// without a title tag. "403notes/1700000000000_algo_notes" becomes "Algo Notes".
func TitleFromKey(key, folder string) (string, bool) {
	rest := strings.TrimPrefix(key, folder+"/")
	rest = timestampPrefix.ReplaceAllString(rest, "")
	rest = strings.Join(strings.FieldsFunc(rest, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	}), " ")
	if rest == "" {
		return "", false
	}
	return cases.Title(language.English).String(rest), true
}
