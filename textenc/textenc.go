// Package textenc detects the character encoding of input files and
// transcodes them to UTF-8. Output is always UTF-8.
package textenc

import (
	"bytes"
	"os"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// UTF8 is the label returned when nothing better is known.
const UTF8 = "utf-8"

// fallback is used for non-UTF-8 data the statistical detector cannot place.
const fallback = "windows-1252"

// minConfidence is the lowest chardet score (0-100) that is trusted.
const minConfidence = 50

// minSingleByteSample is the shortest input for which a single-byte guess is
// trusted. Byte n-gram scores on a few words are noise.
const minSingleByteSample = 256

// multiByte lists the canonical labels of multi-byte encodings.
var multiByte = map[string]bool{
	"shift_jis":   true,
	"euc-jp":      true,
	"iso-2022-jp": true,
	"euc-kr":      true,
	"gb18030":     true,
	"gbk":         true,
	"big5":        true,
	"utf-16le":    true,
	"utf-16be":    true,
}

// chardet labels that are not WHATWG encoding labels.
var chardetAliases = map[string]string{
	"GB-18030": "gb18030",
}

var boms = []struct {
	bom   []byte
	label string
}{
	{[]byte{0xEF, 0xBB, 0xBF}, "utf-8"},
	{[]byte{0xFF, 0xFE}, "utf-16le"},
	{[]byte{0xFE, 0xFF}, "utf-16be"},
}

// Detect returns the encoding label of the file at path. It never fails:
// unreadable files are reported as UTF-8.
func Detect(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return UTF8
	}
	return DetectBytes(data)
}

// DetectBytes returns the best-guess encoding label for data.
func DetectBytes(data []byte) string {
	return detect(data, "text/plain")
}

// DetectHTML is DetectBytes honouring <meta charset> declarations.
func DetectHTML(data []byte) string {
	return detect(data, "text/html")
}

func detect(data []byte, contentType string) string {
	for _, b := range boms {
		if bytes.HasPrefix(data, b.bom) {
			return b.label
		}
	}
	// DetermineEncoding only samples the first 1024 bytes.
	if utf8.Valid(data) {
		if contentType == "text/html" {
			if _, name, certain := charset.DetermineEncoding(data, ""); certain || name != fallback {
				return name
			}
		}
		return UTF8
	}
	if contentType == "text/html" {
		// A <meta> declaration wins over guessing.
		if _, name, _ := charset.DetermineEncoding(data, contentType); name != "" && name != UTF8 && name != fallback {
			return name
		}
	}
	if name, ok := guess(data); ok {
		return name
	}
	return fallback
}

// guess runs the statistical detector and returns the canonical label of
// its best match when it is confident and decodable.
func guess(data []byte) (string, bool) {
	res, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || res == nil || res.Confidence < minConfidence {
		return "", false
	}
	label := res.Charset
	if alias, ok := chardetAliases[label]; ok {
		label = alias
	}
	enc, name := charset.Lookup(label)
	// The data is not valid UTF-8, so a UTF-8 guess is wrong.
	if enc == nil || name == UTF8 {
		return "", false
	}
	if !multiByte[name] && len(data) < minSingleByteSample {
		return "", false
	}
	return name, true
}

// Decode transcodes data from the encoding named by label to UTF-8 and
// strips a leading byte order mark. Unknown labels pass data through.
func Decode(data []byte, label string) ([]byte, error) {
	if enc, _ := charset.Lookup(label); enc != nil {
		out, _, err := transform.Bytes(enc.NewDecoder(), data)
		if err != nil {
			return nil, err
		}
		data = out
	}
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}), nil
}

// DecodeAuto detects the encoding of data and transcodes it to UTF-8.
func DecodeAuto(data []byte) ([]byte, string, error) {
	label := DetectBytes(data)
	out, err := Decode(data, label)
	return out, label, err
}

// Known reports whether label names an encoding Decode understands.
func Known(label string) bool {
	enc, _ := charset.Lookup(label)
	return enc != nil
}
